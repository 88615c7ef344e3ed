package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CBState is the state of a CircuitBreaker.
//
//   - Closed:   calls pass through
//   - Open:     calls fail fast with ErrCircuitOpen
//   - HalfOpen: calls pass through on trial until enough succeed
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	// Nombre identifies the protected dependency in logs.
	Nombre           string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig suits the SMTP relay: five straight failures open the
// breaker for a minute.
func DefaultCBConfig(nombre string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Nombre:           nombre,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
	}
}

// CircuitBreaker guards calls to an unreliable dependency. Safe for
// concurrent use.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	fallos    int
	exitos    int
	abiertoEn time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// State reports the current state, moving Open to HalfOpen once OpenTimeout
// has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estado()
}

// Execute runs fn unless the breaker is open and records its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.estado() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.registrarFallo()
	} else {
		cb.registrarExito()
	}
	return err
}

// estado must be called under lock.
func (cb *CircuitBreaker) estado() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.abiertoEn) >= cb.cfg.OpenTimeout {
		cb.cambiar(CBHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) registrarFallo() {
	cb.fallos++
	switch cb.state {
	case CBClosed:
		if cb.fallos >= cb.cfg.FailureThreshold {
			cb.abrir()
		}
	case CBHalfOpen:
		cb.abrir()
	}
}

func (cb *CircuitBreaker) registrarExito() {
	switch cb.state {
	case CBClosed:
		cb.fallos = 0
	case CBHalfOpen:
		cb.exitos++
		if cb.exitos >= cb.cfg.SuccessThreshold {
			cb.cambiar(CBClosed)
		}
	}
}

func (cb *CircuitBreaker) abrir() {
	cb.abiertoEn = cb.now()
	cb.cambiar(CBOpen)
}

func (cb *CircuitBreaker) cambiar(s CBState) {
	if cb.state == s {
		return
	}
	log.Warn().Str("breaker", cb.cfg.Nombre).Str("from", cb.state.String()).Str("to", s.String()).
		Msg("circuit breaker: state change")
	cb.state = s
	cb.fallos, cb.exitos = 0, 0
}
