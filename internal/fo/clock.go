package fo

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so date bucketing and age cutoffs are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
// The FileManager uses one generated ID per instance as the batch tag
// stamped into journal entry metadata.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
