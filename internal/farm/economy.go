// Package farm is the Fry Station clicker economy.
package farm

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// AutoInterval is how often auto farming pays out.
const AutoInterval = 700 * time.Millisecond

// ErrInsufficientPoints is returned by Buy when the upgrade costs more than
// the current balance.
var ErrInsufficientPoints = errors.New("not enough points")

// UpgradeID indexes Upgrades.
type UpgradeID int

const (
	UpgradeFarm UpgradeID = iota
	UpgradeGetHired
	UpgradeGoldenDeepFryer
	UpgradeMoneyPrinter
)

// Upgrade is one purchasable level track.
type Upgrade struct {
	Name        string
	Description string
	BaseCost    float64
	CostMult    float64
	AddPerTap   uint64
	AutoBonus   float64
}

var Upgrades = [...]Upgrade{
	UpgradeFarm:            {Name: "Farm", Description: "+1 per tap each level", BaseCost: 50, CostMult: 1.6, AddPerTap: 1},
	UpgradeGetHired:        {Name: "get hired", Description: "Enable auto; extra levels boost auto yield", BaseCost: 800, CostMult: 2.0, AutoBonus: 0.3},
	UpgradeGoldenDeepFryer: {Name: "Golden Deep Fryer", Description: "+3 per tap each level", BaseCost: 1200, CostMult: 1.7, AddPerTap: 3},
	UpgradeMoneyPrinter:    {Name: "$FRIES Money Printer", Description: "+10 per tap each level", BaseCost: 20000, CostMult: 1.75, AddPerTap: 10},
}

// ParseUpgrade accepts an index or a case-sensitive name.
func ParseUpgrade(input string) (UpgradeID, error) {
	for i, u := range Upgrades {
		if input == u.Name || input == fmt.Sprint(i) {
			return UpgradeID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown upgrade: %q", input)
}

func (id UpgradeID) valid() bool {
	return id >= 0 && int(id) < len(Upgrades)
}

// State is the persisted game state.
type State struct {
	Points uint64                `json:"points"`
	PerTap uint64                `json:"per_tap"`
	Levels [len(Upgrades)]uint32 `json:"levels"`
	// Auto is the legacy switch kept for saves made before auto was tied
	// to the get hired level.
	Auto bool `json:"auto"`
}

// NewState is a fresh game.
func NewState() State {
	return State{PerTap: 1}
}

// NextCost is floor(base * mult^level).
func (s State) NextCost(id UpgradeID) (uint64, error) {
	if !id.valid() {
		return 0, fmt.Errorf("unknown upgrade: %d", id)
	}
	u := Upgrades[id]
	return uint64(math.Floor(u.BaseCost * math.Pow(u.CostMult, float64(s.Levels[id])))), nil
}

// CanBuy reports whether points cover the next level of id.
func (s State) CanBuy(id UpgradeID) bool {
	cost, err := s.NextCost(id)
	return err == nil && s.Points >= cost
}

// Buy levels up id and applies its effect.
func (s *State) Buy(id UpgradeID) error {
	cost, err := s.NextCost(id)
	if err != nil {
		return err
	}
	if s.Points < cost {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, s.Points, cost)
	}
	s.Points -= cost
	s.Levels[id]++
	s.PerTap += Upgrades[id].AddPerTap
	if id == UpgradeGetHired {
		s.Auto = true
	}
	return nil
}

// Tap adds one tap's worth of points.
func (s *State) Tap() uint64 {
	s.Points += s.PerTap
	return s.PerTap
}

// AutoEnabled reports whether auto farming pays out.
func (s State) AutoEnabled() bool {
	return s.Levels[UpgradeGetHired] > 0 || s.Auto
}

// AutoMultiplier is 0.6 at the first get hired level plus 0.3 per extra
// level, and zero before hiring.
func (s State) AutoMultiplier() float64 {
	lvl := s.Levels[UpgradeGetHired]
	if lvl == 0 {
		return 0
	}
	return 0.6 + Upgrades[UpgradeGetHired].AutoBonus*float64(lvl-1)
}

// AutoGain is the payout of one auto tick, at least 1.
func (s State) AutoGain() uint64 {
	gain := uint64(math.Floor(float64(s.PerTap) * s.AutoMultiplier()))
	if gain < 1 {
		gain = 1
	}
	return gain
}

// AutoTick pays out n auto ticks and returns the points gained.
func (s *State) AutoTick(n int) uint64 {
	if !s.AutoEnabled() || n <= 0 {
		return 0
	}
	gain := s.AutoGain() * uint64(n)
	s.Points += gain
	return gain
}

// Ticks is the number of whole auto intervals in d.
func Ticks(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / AutoInterval)
}
