package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func nuevoBreaker(reloj *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Nombre: "test", FailureThreshold: 2, SuccessThreshold: 2, OpenTimeout: time.Minute,
	})
	cb.now = func() time.Time { return *reloj }
	return cb
}

func TestCircuitBreaker_AbreTrasFallos(t *testing.T) {
	reloj := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := nuevoBreaker(&reloj)
	boom := errors.New("smtp: connection refused")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)
}

func TestCircuitBreaker_SemiAbiertoCierraConExitos(t *testing.T) {
	reloj := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := nuevoBreaker(&reloj)
	boom := errors.New("timeout")
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return boom })

	reloj = reloj.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SondaFallidaReabre(t *testing.T) {
	reloj := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := nuevoBreaker(&reloj)
	boom := errors.New("timeout")
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return boom })

	reloj = reloj.Add(2 * time.Minute)
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	reloj = reloj.Add(30 * time.Second)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_ExitoReiniciaConteo(t *testing.T) {
	reloj := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := nuevoBreaker(&reloj)
	boom := errors.New("timeout")

	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, CBClosed, cb.State())
}
