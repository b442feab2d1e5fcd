// Package schedule persists callback schedules. Two backends implement
// Store: a JSON array file rewritten on every mutation, and SQLite.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"support-intake-go/internal/triage"
	"support-intake-go/internal/types"
)

// ErrStorage wraps every failure to read or write the persisted collection.
var ErrStorage = errors.New("schedule storage error")

const idAttempts = 5

// Patch holds the fields an update may overwrite. Nil fields are untouched.
type Patch struct {
	Status    *string
	Notes     *string
	UpdatedAt *string
}

// Apply merges p into s.
func (p Patch) Apply(s *types.Schedule) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.UpdatedAt != nil {
		s.UpdatedAt = *p.UpdatedAt
	}
}

// Store is an append-only ordered collection of schedules with in-place
// status updates.
type Store interface {
	// Append assigns a unique ID to s, persists it at the end of the
	// collection and returns the stored record.
	Append(ctx context.Context, s types.Schedule) (types.Schedule, error)
	// Update merges p into the first record with id. It returns false and
	// writes nothing when id is unknown.
	Update(ctx context.Context, id string, p Patch) (bool, error)
	// List returns every record in append order.
	List(ctx context.Context) ([]types.Schedule, error)
	Get(ctx context.Context, id string) (types.Schedule, bool, error)
	Close() error
}

// New builds a pending schedule for query. Priority and callback date are
// derived from the sentiment label once, here.
func New(query, sentimentLabel string, now time.Time) types.Schedule {
	priority, _ := triage.Assess(sentimentLabel)
	return types.Schedule{
		Query:     query,
		Date:      triage.CallbackDate(now, sentimentLabel),
		Time:      types.CallbackTime,
		Priority:  priority,
		Status:    types.StatusPending,
		CreatedAt: now.Format(types.TimestampLayout),
		Sentiment: sentimentLabel,
	}
}

// NewID returns an 8-character random token.
func NewID() string {
	return uuid.NewString()[:8]
}

// uniqueID draws IDs until taken reports false.
func uniqueID(taken func(string) (bool, error)) (string, error) {
	for i := 0; i < idAttempts; i++ {
		id := NewID()
		used, err := taken(id)
		if err != nil {
			return "", err
		}
		if !used {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique id after %d attempts", ErrStorage, idAttempts)
}

// Open returns the backend named by backend ("json" or "sqlite") rooted at
// dataDir. Pass ":memory:" as dataDir with the sqlite backend for tests.
func Open(backend, dataDir string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case "", "json":
		s, err = OpenJSON(dataDir)
	case "sqlite":
		s, err = OpenSQLite(dataDir)
	default:
		return nil, fmt.Errorf("unknown schedule backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
