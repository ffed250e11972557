package weakhash

import "errors"

var (
	// ErrInvalidBucketCount is returned for a non-positive or oversized
	// bucket count.
	ErrInvalidBucketCount = errors.New("weakhash: invalid bucket count")
	// ErrInvalidLoadFactor is returned for a maximum load factor that is not
	// a positive finite number.
	ErrInvalidLoadFactor = errors.New("weakhash: invalid max load factor")
	// ErrInvalidCapacity is returned for a negative capacity.
	ErrInvalidCapacity = errors.New("weakhash: invalid capacity")
	// ErrNilLiveness is returned when a weak field has no liveness trait.
	ErrNilLiveness = errors.New("weakhash: nil liveness")
	// ErrNilHasher is returned when a table is built without a hasher.
	ErrNilHasher = errors.New("weakhash: nil hasher")
	// ErrMutatedDuringIteration is the panic value raised when a table is
	// structurally modified while one of its iterators is running.
	ErrMutatedDuringIteration = errors.New("weakhash: table mutated during iteration")
)
