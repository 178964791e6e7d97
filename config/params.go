package config

import (
	"fmt"

	"github.com/mezonai/stakeledger/types"
)

// Params holds the process-wide constants. It is built once at startup and
// passed by value; nothing mutates it afterwards.
type Params struct {
	ProgramID           types.Address
	PointsPerUnitPerDay uint64
	AssetUnitScale      uint64
	SecondsPerDay       uint64
	MaxSupportedAssets  int
}

// NewParams returns Params for programID with the default scaling constants.
func NewParams(programID types.Address) Params {
	return Params{
		ProgramID:           programID,
		PointsPerUnitPerDay: PointsPerUnitPerDay,
		AssetUnitScale:      AssetUnitScale,
		SecondsPerDay:       SecondsPerDay,
		MaxSupportedAssets:  MaxSupportedAssets,
	}
}

// DefaultParams uses DefaultProgramID.
func DefaultParams() Params {
	return NewParams(types.MustParseAddress(DefaultProgramID))
}

func (p Params) Validate() error {
	if p.ProgramID.IsZero() {
		return fmt.Errorf("program id cannot be empty")
	}
	if p.PointsPerUnitPerDay == 0 || p.AssetUnitScale == 0 || p.SecondsPerDay == 0 {
		return fmt.Errorf("scaling constants must be non-zero")
	}
	if p.MaxSupportedAssets <= 0 {
		return fmt.Errorf("max supported assets must be positive")
	}
	return nil
}
