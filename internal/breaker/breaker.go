// Package breaker guards calls to a remote dependency. After enough
// consecutive failures it fails fast until a cool-down passes, then lets
// probe calls through until they succeed often enough to close again.
package breaker

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
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

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

type Breaker struct {
	mu          sync.Mutex
	cfg         Config
	state       State
	failures    int
	successes   int
	lastFailure time.Time
	now         func() time.Time
}

func New(cfg Config) *Breaker {
	def := DefaultConfig()

	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}

	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}

	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	return &Breaker{cfg: cfg, now: time.Now}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currentState()
}

// must be called with mu held
func (b *Breaker) currentState() State {
	if b.state == Open && b.now().Sub(b.lastFailure) >= b.cfg.OpenTimeout {
		b.state = HalfOpen
		b.successes = 0
	}

	return b.state
}

// Execute runs fn unless the breaker is open. A non-nil return from fn counts
// as a failure; callers that get an answer they do not like (a rejected
// credential, say) should return nil from fn and report it separately.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	state := b.currentState()
	b.mu.Unlock()

	if state == Open {
		return ErrOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.onFailure()
		return err
	}

	b.onSuccess()

	return nil
}

func (b *Breaker) onFailure() {
	b.failures++
	b.lastFailure = b.now()

	switch b.state {
	case Closed:
		if b.failures >= b.cfg.FailureThreshold {
			b.state = Open
			b.successes = 0
		}
	case HalfOpen:
		b.state = Open
		b.failures = 0
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = Closed
			b.failures = 0
			b.successes = 0
		}
	}
}
