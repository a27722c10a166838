package program

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Error is a custom error raised by the program.
type Error struct {
	Code  int
	Name  string
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("program error %d %s: %s", e.Code, e.Name, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two program errors by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

var (
	ErrInsufficientStake = &Error{Code: 6000, Name: "InsufficientStake", Msg: "Insufficient stake"}
	ErrNoStake           = &Error{Code: 6001, Name: "NoStake", Msg: "No stake found"}
	ErrStillLocked       = &Error{Code: 6002, Name: "StillLocked", Msg: "Locking period not yet over"}
	ErrAmountTooSmall    = &Error{Code: 6003, Name: "AmountTooSmall", Msg: "Amount too small for operation"}
	ErrNoRewards         = &Error{Code: 6004, Name: "NoRewards", Msg: "No rewards yet to claim"}
	ErrUnauthorized      = &Error{Code: 6005, Name: "Unauthorized", Msg: "Unauthorized to perform this action"}
	ErrInvalidStakeIndex = &Error{Code: 6006, Name: "InvalidStakeIndex", Msg: "Invalid stake index"}
)

var programErrors = []*Error{
	ErrInsufficientStake,
	ErrNoStake,
	ErrStillLocked,
	ErrAmountTooSmall,
	ErrNoRewards,
	ErrUnauthorized,
	ErrInvalidStakeIndex,
}

// ErrUserRejected means the wallet declined to sign.
var ErrUserRejected = errors.New("transaction cancelled by user")

// ErrSeedsMismatch is Anchor's ConstraintSeeds: the lot changed under us.
var ErrSeedsMismatch = errors.New("lot changed or index mismatch, refresh and retry")

// ErrorFromCode returns the program error for code, or nil.
func ErrorFromCode(code int) *Error {
	for _, e := range programErrors {
		if e.Code == code {
			return e
		}
	}
	return nil
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"Custom":\s*"?(\d+)"?`),
	regexp.MustCompile(`Custom\((\d+)\)`),
	regexp.MustCompile(`Error Number:\s*(\d+)`),
	regexp.MustCompile(`error code:\s*(\d+)`),
}

var hexCodePattern = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)

// ExtractErrorCode finds a custom program error code in RPC error text.
func ExtractErrorCode(text string) (int, bool) {
	for _, p := range codePatterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			if code, err := strconv.Atoi(m[1]); err == nil {
				return code, true
			}
		}
	}
	if m := hexCodePattern.FindStringSubmatch(text); len(m) > 1 {
		if code, err := strconv.ParseInt(m[1], 16, 64); err == nil {
			return int(code), true
		}
	}
	return 0, false
}

// ParseError classifies an RPC or wallet failure. Known program errors come
// back as *Error wrapping err; unknown failures are returned unchanged.
func ParseError(err error) error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}

	text := err.Error()
	if strings.Contains(text, "User rejected") {
		return fmt.Errorf("%w: %w", ErrUserRejected, err)
	}
	if strings.Contains(text, "ConstraintSeeds") {
		return fmt.Errorf("%w: %w", ErrSeedsMismatch, err)
	}

	if code, ok := ExtractErrorCode(text); ok {
		if known := ErrorFromCode(code); known != nil {
			return known.with(err)
		}
	}
	for _, known := range programErrors {
		if strings.Contains(text, known.Name) {
			return known.with(err)
		}
	}
	return err
}

func (e *Error) with(cause error) *Error {
	out := *e
	out.Cause = cause
	return &out
}

// Message renders err the way the dapp shows it to the user.
func Message(err error) string {
	err = ParseError(err)
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUserRejected):
		return "Transaction cancelled by user"
	case errors.Is(err, ErrSeedsMismatch):
		return "Lot changed or index mismatch. Refresh and retry."
	case errors.Is(err, ErrStillLocked):
		return "Tokens are still locked - withdrawal not allowed yet"
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Msg
	}
	text := err.Error()
	if strings.Contains(text, "insufficient funds") {
		return "Insufficient SOL for transaction fees"
	}
	if len(text) > 300 {
		return text[:300] + "..."
	}
	return text
}
