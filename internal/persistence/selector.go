package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/pkg/logger"
)

// State is the selector's progress in choosing a store
type State int32

const (
	StateConnecting State = iota
	StatePrimary
	StateFallback
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePrimary:
		return "primary"
	case StateFallback:
		return "fallback"
	case StateUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// ErrUnavailable is returned by every repository call made while no store is selected
var ErrUnavailable = errors.New("no rider store is available")

// Connector opens the primary store
type Connector func(ctx context.Context) (rider.Store, error)

// Loader opens the local snapshot store used when the primary cannot be reached
type Loader func() (rider.Store, error)

// Options configures a Selector
type Options struct {
	Primary Connector
	// Fallback is nil when no snapshot is configured
	Fallback       Loader
	ConnectTimeout time.Duration
	// Production makes a failed primary without fallback fatal
	Production bool
	Logger     *logger.Logger
	// OnSelected runs once after a store has been published
	OnSelected func(state State, store rider.Store, elapsed time.Duration)
}

// Selector chooses the storage implementation once, in the background, and
// serves the rider repository by delegating to whichever store it selected.
type Selector struct {
	opts  Options
	log   *logger.Logger
	state atomic.Int32
	store atomic.Pointer[storeRef]
	once  sync.Once
	ready chan struct{}
	fatal chan error
}

type storeRef struct {
	rider.Store
}

// New creates a selector in the connecting state
func New(opts Options) *Selector {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Selector{
		opts:  opts,
		log:   log,
		ready: make(chan struct{}),
		fatal: make(chan error, 1),
	}
}

// Start connects to the primary store in a background goroutine. It returns immediately.
func (s *Selector) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.run(ctx)
	})
}

func (s *Selector) run(ctx context.Context) {
	defer close(s.ready)
	started := time.Now()

	connectCtx := ctx
	if s.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, s.opts.ConnectTimeout)
		defer cancel()
	}

	primary, err := s.opts.Primary(connectCtx)
	if err == nil {
		s.publish(StatePrimary, primary, time.Since(started))
		return
	}
	s.log.Error("Failed to connect to primary store", logger.Err(err))

	if s.opts.Fallback != nil {
		fallback, loadErr := s.opts.Fallback()
		if loadErr == nil {
			s.log.Warn("Serving riders from local snapshot; changes are kept in memory only")
			s.publish(StateFallback, fallback, time.Since(started))
			return
		}
		s.log.Error("Failed to load local snapshot", logger.Err(loadErr))
		err = fmt.Errorf("%w; fallback: %v", err, loadErr)
	}

	s.state.Store(int32(StateUnavailable))
	if s.opts.Production {
		s.fatal <- fmt.Errorf("no rider store available: %w", err)
		return
	}
	s.log.Warn("No rider store available; API requests will be rejected until restart")
}

func (s *Selector) publish(state State, store rider.Store, elapsed time.Duration) {
	s.store.Store(&storeRef{store})
	s.state.Store(int32(state))
	s.log.Info("Rider store selected",
		logger.String("mode", state.String()),
		logger.String("store", store.Name()),
		logger.Duration("elapsed", elapsed),
	)
	if s.opts.OnSelected != nil {
		s.opts.OnSelected(state, store, elapsed)
	}
}

// State reports the current selection state
func (s *Selector) State() State {
	return State(s.state.Load())
}

// Available reports whether a store has been selected
func (s *Selector) Available() bool {
	st := s.State()
	return st == StatePrimary || st == StateFallback
}

// Ready is closed once selection has finished, successfully or not
func (s *Selector) Ready() <-chan struct{} {
	return s.ready
}

// Fatal delivers the selection failure in production when no store could be opened
func (s *Selector) Fatal() <-chan error {
	return s.fatal
}

// StoreName names the selected store, or "none"
func (s *Selector) StoreName() string {
	if ref := s.store.Load(); ref != nil {
		return ref.Name()
	}
	return "none"
}

func (s *Selector) current() (rider.Store, error) {
	ref := s.store.Load()
	if ref == nil {
		return nil, ErrUnavailable
	}
	return ref.Store, nil
}

func (s *Selector) List(ctx context.Context, q rider.ListQuery) (*rider.ListResult, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.List(ctx, q)
}

func (s *Selector) GetByID(ctx context.Context, id string) (*rider.Rider, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.GetByID(ctx, id)
}

func (s *Selector) HasConflict(ctx context.Context, email, nric, excludeID string) (bool, error) {
	st, err := s.current()
	if err != nil {
		return false, err
	}
	return st.HasConflict(ctx, email, nric, excludeID)
}

func (s *Selector) Create(ctx context.Context, r *rider.Rider) error {
	st, err := s.current()
	if err != nil {
		return err
	}
	return st.Create(ctx, r)
}

func (s *Selector) Update(ctx context.Context, r *rider.Rider) error {
	st, err := s.current()
	if err != nil {
		return err
	}
	return st.Update(ctx, r)
}

func (s *Selector) Delete(ctx context.Context, id string) error {
	st, err := s.current()
	if err != nil {
		return err
	}
	return st.Delete(ctx, id)
}

func (s *Selector) Count(ctx context.Context) (int64, error) {
	st, err := s.current()
	if err != nil {
		return 0, err
	}
	return st.Count(ctx)
}

func (s *Selector) DeleteAll(ctx context.Context) error {
	st, err := s.current()
	if err != nil {
		return err
	}
	return st.DeleteAll(ctx)
}

// Ping checks the selected store
func (s *Selector) Ping(ctx context.Context) error {
	st, err := s.current()
	if err != nil {
		return err
	}
	return st.Ping(ctx)
}

// Close releases the selected store, if any
func (s *Selector) Close(ctx context.Context) error {
	st, err := s.current()
	if err != nil {
		return nil
	}
	return st.Close(ctx)
}
