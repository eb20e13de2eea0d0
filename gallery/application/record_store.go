package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dfryer1193/camroll/gallery/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrStoreClosed is returned by Subscribe after Close.
var ErrStoreClosed = errors.New("record store is closed")

// RecordStore appends image records and publishes a live, ordered view of them.
// All methods are safe for concurrent use.
type RecordStore struct {
	repo domain.RecordRepository

	// Store lifecycle context - cancelled when Close() is called
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	closed bool
}

func NewRecordStore(repo domain.RecordRepository) *RecordStore {
	ctx, cancel := context.WithCancel(context.Background())
	return &RecordStore{
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[uuid.UUID]*Subscription),
	}
}

// Insert durably appends a record and returns its id. Subscribers observe the
// record no later than their next snapshot.
func (s *RecordStore) Insert(ctx context.Context, locator string, capturedAt int64) (domain.RecordID, error) {
	if locator == "" {
		return 0, domain.ErrEmptyLocator
	}

	id, err := s.repo.Insert(ctx, locator, capturedAt)
	if err != nil {
		return 0, fmt.Errorf("could not insert image record: %w", err)
	}

	s.notify()
	return id, nil
}

// InsertBatch appends every locator in one transaction. Subscribers are
// notified once, after the whole batch is durable.
func (s *RecordStore) InsertBatch(ctx context.Context, locators []string, capturedAt int64) ([]domain.RecordID, error) {
	ids, err := s.repo.InsertMany(ctx, locators, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("could not insert image batch: %w", err)
	}

	if len(ids) > 0 {
		s.notify()
	}
	return ids, nil
}

// ListAll returns a snapshot of all records, most recent capture first.
func (s *RecordStore) ListAll(ctx context.Context) ([]domain.ImageRecord, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list image records: %w", err)
	}
	return records, nil
}

// Subscribe opens a live view of the record list. The subscription first
// delivers the current snapshot, then a new one after every insert.
// It ends when ctx is cancelled, Close is called on it or on the store, or
// reading the records fails.
func (s *RecordStore) Subscribe(ctx context.Context) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	sub := newSubscription(s, ctx)
	s.subs[sub.id] = sub
	// The initial snapshot is just a pending notification.
	sub.signal()

	s.wg.Go(sub.run)

	log.Debug().Str("subscription", sub.id.String()).Msg("Opened record subscription")
	return sub, nil
}

// Close terminates every subscription and waits for their delivery goroutines.
func (s *RecordStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	return nil
}

func (s *RecordStore) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		sub.signal()
	}
}

func (s *RecordStore) remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// subscriberCount is used by tests to check that finished subscriptions are released.
func (s *RecordStore) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
