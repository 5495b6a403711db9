package match

import (
	"context"
	"sync"
	"time"

	"github.com/lvu/firemerge/internal/model"
)

// MinQueryLength is the shortest description query that triggers a
// search request. Anything shorter restores the initial candidates.
const MinQueryLength = 3

// DefaultDebounce is how long the searcher waits for the query text
// to settle before issuing a request.
const DefaultDebounce = 500 * time.Millisecond

// SearchFunc performs one description search against the ledger.
type SearchFunc func(ctx context.Context, query string) ([]model.TransactionCandidate, error)

// Searcher coalesces description queries for a single transaction
// record. Only the result of the most recent query is ever applied;
// an in-flight search whose query has since changed is discarded at
// completion time via a monotonic sequence token.
type Searcher struct {
	search  SearchFunc
	apply   func([]model.TransactionCandidate)
	onError func(error)
	initial []model.TransactionCandidate
	delay   time.Duration

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithDebounce overrides the debounce delay.
func WithDebounce(d time.Duration) SearcherOption {
	return func(s *Searcher) { s.delay = d }
}

// WithErrorHandler installs a callback for failed searches. Failed
// searches never change the candidate list.
func WithErrorHandler(f func(error)) SearcherOption {
	return func(s *Searcher) { s.onError = f }
}

// NewSearcher creates a Searcher for one transaction record. initial
// is the candidate list restored when the query drops below
// MinQueryLength; apply receives every accepted candidate list.
func NewSearcher(search SearchFunc, initial []model.TransactionCandidate, apply func([]model.TransactionCandidate), opts ...SearcherOption) *Searcher {
	s := &Searcher{
		search:  search,
		apply:   apply,
		initial: initial,
		delay:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query reports the latest query text. Short queries invalidate any
// pending or in-flight search and restore the initial candidates
// immediately; longer ones (re)start the debounce timer.
func (s *Searcher) Query(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.stopPendingLocked()

	if len([]rune(text)) < MinQueryLength {
		s.apply(s.initial)
		return
	}

	token := s.seq
	s.timer = time.AfterFunc(s.delay, func() { s.run(token, text) })
}

// Close cancels any pending or in-flight search.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.stopPendingLocked()
}

func (s *Searcher) run(token uint64, text string) {
	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	candidates, err := s.search(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq {
		// A newer query superseded this one while it was in flight.
		return
	}
	if err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	s.apply(candidates)
}

func (s *Searcher) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
