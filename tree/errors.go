package tree

import (
	"errors"
	"fmt"
)

// Sentinel errors for fatal tree conditions: the caller must abort the
// round and, depending on the condition, reset or perturb the particle
// set before retrying.
var (
	// ErrPartOutsideRoot is returned when a particle's position does not
	// lie within the tree's root cell.
	ErrPartOutsideRoot = errors.New("tree: particle position lies outside the root cell")

	// ErrPartsTooClose is returned when Insert or pushDownOrphans cannot
	// find a free octant slot because two particles coincide within
	// MinSeparation of the root size.
	ErrPartsTooClose = errors.New("tree: two particles coincide within floating-point precision")

	// ErrTooDeep is returned when a promotion would exceed the hard
	// depth limit (128).
	ErrTooDeep = errors.New("tree: maximum tree depth exceeded")

	// ErrNegativeTheta is an input error: the MAC opening angle must be
	// non-negative.
	ErrNegativeTheta = errors.New("tree: theta must not be negative")

	// ErrBadCostBand is an input error: cost marks must be positive and
	// costMarkLow must be less than costMarkHigh.
	ErrBadCostBand = errors.New("tree: cost band marks are not well-formed")
)

// TooManyNeighborsError is returned by Tree.Neighbors when the result
// buffer overflows. It is recoverable: the caller may enlarge maxResults
// and retry.
type TooManyNeighborsError struct {
	ParticleID uint64
	Found      int
	Max        int
}

func (e *TooManyNeighborsError) Error() string {
	return fmt.Sprintf("tree: neighbor search for particle %d exceeded the buffer (found > %d)", e.ParticleID, e.Max)
}

// MaxDepth is the hard recursion limit on octree depth.
const MaxDepth = 128

// MinSeparation is the minimum coordinate separation, relative to the
// root cell size, below which two particles are considered coincident
// in Insert and pushDownOrphans.
const MinSeparation = 1.0 / (1 << 52) // practical float64 resolution stand-in for 2^-128
