// Package constants holds the default proof parameters.
package constants

// Graph defaults.
const (
	// DefaultBaseDegree is the number of base graph parents per node.
	DefaultBaseDegree = 5
	// DefaultExpansionDegree is the number of expansion parents per node.
	DefaultExpansionDegree = 8
	// DefaultLayers is the number of layers of a layered replica.
	DefaultLayers = 4
)

// Proof defaults.
const (
	DefaultChallengesCount = 2
	DefaultHasher          = "poseidon"
	DefaultSectorSize      = "2KiB"
)

// ParamsVersion is bumped whenever circuit shapes change, invalidating
// parameters generated for earlier blank circuits.
const ParamsVersion = "v1"
