package config

const (
	// DefaultProgramID is the identity mixed into every derived capability
	// address.
	DefaultProgramID = "HqPFKnfyYcEVkPkfg883mhu2YgPMKWt7sZQTFmZRXAC9"

	// PointsPerUnitPerDay is expressed in micro-points.
	PointsPerUnitPerDay uint64 = 1_000_000
	AssetUnitScale      uint64 = 1_000_000_000
	SecondsPerDay       uint64 = 86_400

	// MaxSupportedAssets bounds the pool's asset registry.
	MaxSupportedAssets = 8
)

// Capability seed labels.
const (
	LabelPool     = "pool"
	LabelTreasury = "treasury"
	LabelVault    = "vault"
	LabelStake    = "stake"
)
