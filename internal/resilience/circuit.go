// Package resilience guards upstream model calls. A Breaker fails fast after
// repeated upstream failures so a dead provider does not add its timeout to
// every extraction request. It never retries.
package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is the position of a breaker.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the cool-down elapses.
	Open
	// HalfOpen lets probe calls through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON health output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrOpen is returned without calling upstream while a breaker is open.
var ErrOpen = eris.New("resilience: circuit open")

// Config controls a Breaker.
type Config struct {
	// Threshold is the number of consecutive counted failures that opens
	// the breaker. Default 5.
	Threshold int
	// CoolDown is how long an open breaker rejects calls. Default 30s.
	CoolDown time.Duration
	// Probes is the number of successful half-open calls needed to close.
	// Default 1.
	Probes int
	// Counts decides whether an error counts as an upstream failure. Errors
	// it rejects reset nothing and count nothing. Nil counts every error.
	Counts func(err error) bool
}

// DefaultConfig returns the breaker defaults.
func DefaultConfig() Config {
	return Config{Threshold: 5, CoolDown: 30 * time.Second, Probes: 1}
}

// Breaker is a consecutive-failure circuit breaker for one upstream model.
type Breaker struct {
	name string
	cfg  Config

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	successes int

	now func() time.Time
}

// NewBreaker creates a closed breaker. name only labels log lines.
func NewBreaker(name string, cfg Config) *Breaker {
	def := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = def.CoolDown
	}
	if cfg.Probes <= 0 {
		cfg.Probes = def.Probes
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// Do runs fn unless the breaker is open, and records its outcome.
func Do[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.admit(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.record(err)
	return v, err
}

// State returns the current state, reporting HalfOpen once the cool-down of
// an open breaker has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		return HalfOpen
	}
	return b.state
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.successes = 0
	if b.state != Closed {
		b.moveTo(Closed)
	}
}

// Snapshot is a point-in-time view of a breaker.
type Snapshot struct {
	State    State `json:"state"`
	Failures int   `json:"consecutiveFailures"`
}

// Snapshot returns state and consecutive failure count.
func (b *Breaker) Snapshot() Snapshot {
	st := b.State()
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{State: st, Failures: b.failures}
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != Open {
		return nil
	}
	if b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		b.moveTo(HalfOpen)
		return nil
	}
	return eris.Wrapf(ErrOpen, "model %s", b.name)
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counted := err != nil
	if counted && b.cfg.Counts != nil {
		counted = b.cfg.Counts(err)
	}

	if !counted {
		switch b.state {
		case HalfOpen:
			b.successes++
			if b.successes >= b.cfg.Probes {
				b.failures = 0
				b.successes = 0
				b.moveTo(Closed)
			}
		case Closed:
			b.failures = 0
		}
		return
	}

	b.failures++
	switch b.state {
	case Closed:
		if b.failures >= b.cfg.Threshold {
			b.openedAt = b.now()
			b.moveTo(Open)
		}
	case HalfOpen:
		b.successes = 0
		b.openedAt = b.now()
		b.moveTo(Open)
	}
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(to State) {
	from := b.state
	b.state = to
	zap.L().Info("resilience: breaker state change",
		zap.String("model", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("consecutive_failures", b.failures),
	)
}

// Breakers hands out one Breaker per model name, all sharing a Config.
type Breakers struct {
	cfg Config

	mu  sync.RWMutex
	set map[string]*Breaker
}

// NewBreakers creates an empty set.
func NewBreakers(cfg Config) *Breakers {
	return &Breakers{cfg: cfg, set: make(map[string]*Breaker)}
}

// For returns the breaker for model, creating it on first use.
func (s *Breakers) For(model string) *Breaker {
	s.mu.RLock()
	b, ok := s.set[model]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.set[model]; ok {
		return b
	}
	b = NewBreaker(model, s.cfg)
	s.set[model] = b
	return b
}

// Models returns the known model names, sorted.
func (s *Breakers) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.set))
	for name := range s.set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshots returns a snapshot of every breaker keyed by model.
func (s *Breakers) Snapshots() map[string]Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Snapshot, len(s.set))
	for name, b := range s.set {
		out[name] = b.Snapshot()
	}
	return out
}
