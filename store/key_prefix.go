package store

// Declare database key prefix for objects
const (
	PrefixPool    = "pool:"
	PrefixStake   = "stake:"
	PrefixBalance = "balance:"
)
