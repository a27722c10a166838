package snapshot

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func toDecimal(raw *uint256.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw.ToBig(), -int32(decimals))
}

// Scale converts a raw amount into a float display value. The result must
// not feed back into on-chain arithmetic.
func Scale(raw *uint256.Int, decimals uint8) float64 {
	return toDecimal(raw, decimals).InexactFloat64()
}

// FormatAmount renders raw with exactly decimals fractional digits.
func FormatAmount(raw *uint256.Int, decimals uint8) string {
	return toDecimal(raw, decimals).StringFixed(int32(decimals))
}

// ParseAmount converts a UI amount such as "1.5" into raw units. Amounts with
// more fractional digits than the mint supports are rejected rather than
// rounded.
func ParseAmount(input string, decimals uint8) (uint64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("amount is required")
	}

	value, err := decimal.NewFromString(input)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", input, err)
	}
	if value.Sign() <= 0 {
		return 0, fmt.Errorf("amount must be greater than 0")
	}

	shifted := value.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimals", input, decimals)
	}

	raw := shifted.BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows u64", input)
	}
	return raw.Uint64(), nil
}
