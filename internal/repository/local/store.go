package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gocomet/rider-roster/internal/domain/rider"
)

const storeName = "local"

// Store keeps the roster in process memory. It is seeded from a JSON
// snapshot file; writes are never persisted back to that file.
type Store struct {
	mu     sync.RWMutex
	riders []*rider.Rider
	now    func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// LoadFile creates a store holding the riders of the snapshot at path
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var riders []*rider.Rider
	if err := json.Unmarshal(data, &riders); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}

	s := New()
	for _, r := range riders {
		if r == nil {
			continue
		}
		if r.ID == "" {
			r.ID = primitive.NewObjectID().Hex()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.now()
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = r.CreatedAt
		}
		s.riders = append(s.riders, r)
	}
	return s, nil
}

func (s *Store) Name() string { return storeName }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(ctx context.Context) error { return nil }

// List filters, orders and pages the in-memory roster
func (s *Store) List(ctx context.Context, q rider.ListQuery) (*rider.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q = q.Normalize()

	s.mu.RLock()
	matched := make([]*rider.Rider, 0, len(s.riders))
	for _, r := range s.riders {
		if q.Matches(r) {
			matched = append(matched, r.Clone())
		}
	}
	s.mu.RUnlock()

	rider.SortNewestFirst(matched)
	return &rider.ListResult{
		Riders: q.Paginate(matched),
		Total:  int64(len(matched)),
	}, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*rider.Rider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.riders[i].Clone(), nil
	}
	return nil, rider.ErrRiderNotFound
}

func (s *Store) HasConflict(ctx context.Context, email, nric, excludeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.conflicts(email, nric, excludeID), nil
}

func (s *Store) Create(ctx context.Context, r *rider.Rider) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(r.Email, r.NRIC, "") {
		return rider.ErrDuplicateRider
	}

	now := s.now()
	r.ID = primitive.NewObjectID().Hex()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.riders = append(s.riders, r.Clone())
	return nil
}

func (s *Store) Update(ctx context.Context, r *rider.Rider) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(r.ID)
	if i < 0 {
		return rider.ErrRiderNotFound
	}
	if s.conflicts(r.Email, r.NRIC, r.ID) {
		return rider.ErrDuplicateRider
	}

	r.CreatedAt = s.riders[i].CreatedAt
	r.UpdatedAt = s.now()
	s.riders[i] = r.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return rider.ErrRiderNotFound
	}
	s.riders = append(s.riders[:i], s.riders[i+1:]...)
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.riders)), nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.riders = nil
	s.mu.Unlock()
	return nil
}

// indexOf must be called with the lock held
func (s *Store) indexOf(id string) int {
	for i, r := range s.riders {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// conflicts must be called with the lock held
func (s *Store) conflicts(email, nric, excludeID string) bool {
	for _, r := range s.riders {
		if r.ID == excludeID {
			continue
		}
		if strings.EqualFold(r.Email, email) || r.NRIC == nric {
			return true
		}
	}
	return false
}
