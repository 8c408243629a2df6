package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/observable"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// Rules adapt ScopedStore to one collection type.
type Rules[C any] struct {
	// Prefix is the storage key prefix; records live at "<Prefix>.<owner id>".
	Prefix string

	// New returns an empty collection owned by ownerID.
	New func(ownerID int64, now time.Time) *C

	// Clone returns a deep copy. Transforms always run on a clone.
	Clone func(*C) *C

	// Validate rejects a decoded record that is not a well-formed collection
	// of ownerID.
	Validate func(c *C, ownerID int64) error

	// Recompute refreshes derived aggregates. Optional.
	Recompute func(*C)

	// Touch stamps the modification time.
	Touch func(c *C, now time.Time)

	// Count is the value of the count projection.
	Count func(*C) int
}

// Transform edits a cloned collection in place. A returned error aborts the
// mutation with nothing persisted or published.
type Transform[C any] func(c *C, now time.Time) error

// ScopedStore keeps one collection per identity and publishes the collection
// of the current identity.
//
// Mutations capture the owner when invoked, wait their simulated delay, then
// commit under the store lock: read the latest value, transform, recompute,
// persist, publish. Commits are therefore serialized and never lose each
// other's effects. A commit whose owner is no longer current is applied to
// that owner's persisted record and is not published.
//
// When the owner's record could not be read, an empty placeholder is
// published and marked unloaded. Reads and commits load the record again
// before using it and fail with the storage error instead of overwriting it.
//
// Collections returned by Read and mutations are copies. Published values
// are shared and must not be modified.
//
// The store lock is held while publishing, so subscribers must not call
// mutating store methods synchronously.
type ScopedStore[C any] struct {
	rules Rules[C]
	repo  kvstore.Repository
	sim   *simulate.Simulator
	log   logging.Logger
	now   func() time.Time

	mu     sync.Mutex
	owner  *models.Identity
	loaded bool // the published collection is the owner's stored record

	cell  *observable.Cell[*C]
	count *observable.Derived[int]
	reads singleflight.Group
}

func NewScopedStore[C any](rules Rules[C], repo kvstore.Repository, sim *simulate.Simulator, log logging.Logger, now func() time.Time) *ScopedStore[C] {
	if log == nil {
		log = logging.Nop()
	}
	if now == nil {
		now = time.Now
	}
	s := &ScopedStore[C]{
		rules: rules,
		repo:  repo,
		sim:   sim,
		log:   log.With("store", rules.Prefix),
		now:   now,
		cell:  observable.NewCell[*C](nil),
	}
	s.count = observable.Map[*C](s.cell, func(c *C) int {
		if c == nil {
			return 0
		}
		return rules.Count(c)
	})
	return s
}

func (s *ScopedStore[C]) key(ownerID int64) string {
	return s.rules.Prefix + "." + strconv.FormatInt(ownerID, 10)
}

// OnIdentityChange swaps the published collection for the one persisted for
// id. A nil id publishes none and writes nothing. A missing or corrupt record
// is replaced by an empty collection, which is persisted.
func (s *ScopedStore[C]) OnIdentityChange(ctx context.Context, id *models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == nil {
		s.owner, s.loaded = nil, false
		s.cell.Set(nil)
		return
	}

	cp := *id
	s.owner = &cp

	c, err := s.load(ctx, id.ID)
	s.loaded = err == nil
	if err != nil {
		// Unreadable storage: serve an empty placeholder, keep the record.
		s.log.Error(ctx, "failed to load collection", "owner", id.ID, "error", err)
		c = s.fresh(id.ID)
	}
	s.cell.Set(c)
}

// load returns the persisted collection of ownerID, creating and persisting
// an empty one when the record is missing or corrupt. Only storage read
// errors are returned.
func (s *ScopedStore[C]) load(ctx context.Context, ownerID int64) (*C, error) {
	raw, err := s.repo.Get(ctx, s.key(ownerID))
	if err != nil {
		return nil, err
	}

	if raw != nil {
		c, derr := s.decode(raw, ownerID)
		if derr == nil {
			return c, nil
		}
		s.log.Warn(ctx, "resetting collection", "owner", ownerID, "error", derr)
	}

	c := s.fresh(ownerID)
	if err := s.save(ctx, ownerID, c); err != nil {
		s.log.Error(ctx, "failed to persist empty collection", "owner", ownerID, "error", err)
	}
	return c, nil
}

func (s *ScopedStore[C]) decode(raw []byte, ownerID int64) (*C, error) {
	c := new(C)
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptPersistedState, err)
	}
	if err := s.rules.Validate(c, ownerID); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptPersistedState, err)
	}
	if s.rules.Recompute != nil {
		s.rules.Recompute(c)
	}
	return c, nil
}

func (s *ScopedStore[C]) fresh(ownerID int64) *C {
	return s.rules.New(ownerID, s.now().UTC())
}

func (s *ScopedStore[C]) save(ctx context.Context, ownerID int64, c *C) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key(ownerID), err)
	}
	if err := s.repo.Set(ctx, s.key(ownerID), b); err != nil {
		return fmt.Errorf("persist %s: %w", s.key(ownerID), err)
	}
	return nil
}

// currentOwner is the owner stamp taken when a mutation is invoked.
func (s *ScopedStore[C]) currentOwner() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == nil {
		return nil
	}
	cp := *s.owner
	return &cp
}

// isCurrent must be called with s.mu held.
func (s *ScopedStore[C]) isCurrent(ownerID int64) bool {
	return s.owner != nil && s.owner.ID == ownerID
}

// Read returns a copy of the current collection after the simulated read
// delay, loading it first if none is published or the published one is a
// placeholder. Concurrent reads for the same owner share one call.
func (s *ScopedStore[C]) Read(ctx context.Context) (*C, error) {
	owner := s.currentOwner()
	if owner == nil {
		return nil, common.ErrNotAuthenticated
	}

	wctx := context.WithoutCancel(ctx)
	ch := s.reads.DoChan(s.key(owner.ID), func() (any, error) {
		return simulate.Do(wctx, s.sim, s.rules.Prefix+".read", s.sim.Latency().Read, func() (*C, error) {
			s.mu.Lock()
			defer s.mu.Unlock()

			if !s.isCurrent(owner.ID) {
				return s.load(wctx, owner.ID)
			}
			if c := s.cell.Get(); c != nil && s.loaded {
				return c, nil
			}
			c, err := s.load(wctx, owner.ID)
			if err != nil {
				return nil, err
			}
			s.loaded = true
			s.cell.Set(c)
			return c, nil
		})
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return s.rules.Clone(res.Val.(*C)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// mutate runs fn against owner's collection after delay. See ScopedStore for
// the commit protocol.
func (s *ScopedStore[C]) mutate(ctx context.Context, owner *models.Identity, op string, delay time.Duration, fn Transform[C]) (*C, error) {
	if owner == nil {
		return nil, common.ErrNotAuthenticated
	}
	wctx := context.WithoutCancel(ctx)
	return simulate.Do(ctx, s.sim, op, delay, func() (*C, error) {
		return s.commit(wctx, owner.ID, op, fn)
	})
}

func (s *ScopedStore[C]) commit(ctx context.Context, ownerID int64, op string, fn Transform[C]) (*C, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.isCurrent(ownerID)

	var cur *C
	if active && s.loaded {
		cur = s.cell.Get()
	}
	if cur == nil {
		c, err := s.load(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cur = c
	}

	now := s.now().UTC()
	next := s.rules.Clone(cur)
	if err := fn(next, now); err != nil {
		return nil, err
	}
	if s.rules.Recompute != nil {
		s.rules.Recompute(next)
	}
	s.rules.Touch(next, now)

	if err := s.save(ctx, ownerID, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !active {
		s.log.Info(ctx, "owner changed during mutation, stored without publishing", "op", op, "owner", ownerID)
		return next, nil
	}

	s.log.Debug(ctx, "committed", "op", op, "owner", ownerID)
	s.loaded = true
	s.cell.Set(next)
	return s.rules.Clone(next), nil
}

// Clear replaces the current collection with an empty one, without delay.
// When anonymous it publishes none and returns (nil, nil).
func (s *ScopedStore[C]) Clear(ctx context.Context) (*C, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == nil {
		s.cell.Set(nil)
		return nil, nil
	}

	c := s.fresh(s.owner.ID)
	if err := s.save(ctx, s.owner.ID, c); err != nil {
		return nil, fmt.Errorf("clear: %w", err)
	}
	s.loaded = true
	s.cell.Set(c)
	return s.rules.Clone(c), nil
}

// Collection replays the published collection (nil when anonymous) and every
// later one.
func (s *ScopedStore[C]) Collection() observable.Observable[*C] {
	return s.cell
}

// Count publishes the count of the current collection, 0 for none.
func (s *ScopedStore[C]) Count() observable.Observable[int] {
	return s.count
}

// Snapshot returns the published collection without delay. It is shared and
// must not be modified.
func (s *ScopedStore[C]) Snapshot() *C {
	return s.cell.Get()
}

// Close detaches derived projections.
func (s *ScopedStore[C]) Close() {
	s.count.Close()
}
