package farm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCost(t *testing.T) {
	s := NewState()
	cost, err := s.NextCost(UpgradeFarm)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), cost)

	s.Levels[UpgradeFarm] = 1
	cost, _ = s.NextCost(UpgradeFarm)
	assert.Equal(t, uint64(80), cost)

	s.Levels[UpgradeFarm] = 2
	cost, _ = s.NextCost(UpgradeFarm)
	assert.Equal(t, uint64(128), cost) // 50 * 2.56

	s.Levels[UpgradeGetHired] = 3
	cost, _ = s.NextCost(UpgradeGetHired)
	assert.Equal(t, uint64(6400), cost)

	_, err = s.NextCost(UpgradeID(9))
	assert.Error(t, err)
}

func TestBuyAppliesEffects(t *testing.T) {
	s := NewState()
	s.Points = 49
	assert.False(t, s.CanBuy(UpgradeFarm))
	assert.ErrorIs(t, s.Buy(UpgradeFarm), ErrInsufficientPoints)
	assert.Equal(t, uint64(49), s.Points)

	s.Points = 50
	require.NoError(t, s.Buy(UpgradeFarm))
	assert.Zero(t, s.Points)
	assert.Equal(t, uint64(2), s.PerTap)
	assert.Equal(t, uint32(1), s.Levels[UpgradeFarm])

	s.Points = 1200
	require.NoError(t, s.Buy(UpgradeGoldenDeepFryer))
	assert.Equal(t, uint64(5), s.PerTap)
}

func TestTap(t *testing.T) {
	s := NewState()
	assert.Equal(t, uint64(1), s.Tap())
	s.PerTap = 14
	s.Tap()
	assert.Equal(t, uint64(15), s.Points)
}

func TestAutoFarming(t *testing.T) {
	s := NewState()
	assert.False(t, s.AutoEnabled())
	assert.Zero(t, s.AutoTick(10))

	s.Points = 800
	require.NoError(t, s.Buy(UpgradeGetHired))
	assert.True(t, s.AutoEnabled())
	assert.True(t, s.Auto)
	assert.InDelta(t, 0.6, s.AutoMultiplier(), 1e-9)

	// floor(1 * 0.6) = 0, floored up to 1
	assert.Equal(t, uint64(1), s.AutoGain())

	s.PerTap = 10
	assert.Equal(t, uint64(6), s.AutoGain())

	s.Levels[UpgradeGetHired] = 3
	assert.InDelta(t, 1.2, s.AutoMultiplier(), 1e-9)
	assert.Equal(t, uint64(12), s.AutoGain())

	before := s.Points
	assert.Equal(t, uint64(36), s.AutoTick(3))
	assert.Equal(t, before+36, s.Points)
}

func TestLegacyAutoFlag(t *testing.T) {
	s := NewState()
	s.Auto = true
	assert.True(t, s.AutoEnabled())
	assert.Zero(t, s.AutoMultiplier())
	assert.Equal(t, uint64(1), s.AutoGain())
}

func TestTicks(t *testing.T) {
	assert.Equal(t, 0, Ticks(699*time.Millisecond))
	assert.Equal(t, 1, Ticks(700*time.Millisecond))
	assert.Equal(t, 85, Ticks(time.Minute))
	assert.Equal(t, 0, Ticks(-time.Second))
}

func TestParseUpgrade(t *testing.T) {
	id, err := ParseUpgrade("2")
	require.NoError(t, err)
	assert.Equal(t, UpgradeGoldenDeepFryer, id)

	id, err = ParseUpgrade("get hired")
	require.NoError(t, err)
	assert.Equal(t, UpgradeGetHired, id)

	_, err = ParseUpgrade("tractor")
	assert.Error(t, err)
}

func TestFileStateStore(t *testing.T) {
	ctx := context.Background()
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "farm", "state.json")}

	st, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, NewState(), st)

	st.Points = 1234
	st.Levels[UpgradeMoneyPrinter] = 2
	require.NoError(t, store.Save(ctx, st))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, st, got)
}
