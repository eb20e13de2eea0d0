package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/dfryer1193/camroll/gallery/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Subscription is a live view of the record list opened by RecordStore.Subscribe.
//
// Snapshots are delivered one at a time on Updates. Inserts that happen while
// the receiver is busy coalesce into a single fresh snapshot, so the receiver
// always catches up to the latest state without blocking writers.
type Subscription struct {
	id    uuid.UUID
	store *RecordStore

	ctx    context.Context
	cancel context.CancelFunc

	pending chan struct{}
	updates chan []domain.ImageRecord
	stopped chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription(store *RecordStore, parent context.Context) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{
		id:      uuid.New(),
		store:   store,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(chan struct{}, 1),
		updates: make(chan []domain.ImageRecord),
		stopped: make(chan struct{}),
	}
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Updates yields successive snapshots. It is closed when the subscription ends.
func (s *Subscription) Updates() <-chan []domain.ImageRecord {
	return s.updates
}

// Err reports why the subscription ended. It is nil while the subscription is
// active and after a cancellation; it matches domain.ErrStorageFailure when
// reading the records failed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the subscription. Once Close returns nothing more is delivered.
func (s *Subscription) Close() {
	s.cancel()
	<-s.stopped
}

// signal marks a snapshot as pending without blocking.
func (s *Subscription) signal() {
	select {
	case s.pending <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	stop := context.AfterFunc(s.store.ctx, s.cancel)

	defer func() {
		stop()
		s.cancel()
		s.store.remove(s.id)
		close(s.updates)
		close(s.stopped)
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.pending:
		}

		records, err := s.store.repo.ListAll(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.fail(err)
			return
		}

		select {
		case s.updates <- records:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Subscription) fail(err error) {
	log.Error().Err(err).Str("subscription", s.id.String()).Msg("Record subscription terminated")

	s.mu.Lock()
	s.err = fmt.Errorf("record subscription failed: %w", err)
	s.mu.Unlock()
}
