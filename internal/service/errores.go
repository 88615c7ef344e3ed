package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies domain errors so the HTTP layer can map them to status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	// KindTransient marks storage round-trip failures: the whole operation is
	// safe to retry.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by every service operation.
type Error struct {
	Kind    Kind
	Mensaje string
	Causa   error
}

func (e *Error) Error() string {
	if e.Causa != nil {
		return e.Mensaje + ": " + e.Causa.Error()
	}
	return e.Mensaje
}

func (e *Error) Unwrap() error { return e.Causa }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Mensaje: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Mensaje: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Mensaje: fmt.Sprintf(format, args...)}
}

func Transient(causa error) error {
	return &Error{Kind: KindTransient, Mensaje: "servicio de datos no disponible, reintente", Causa: causa}
}

// KindOf returns the Kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// dbErr classifies a storage error. Record-not-found becomes NotFound with the
// given message; deadline, connection and serialization failures become
// Transient. Typed errors pass through untouched.
func dbErr(err error, notFound string, args ...any) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(notFound, args...)
	}
	if esTransitorio(err) {
		return Transient(err)
	}
	return err
}

func esTransitorio(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception, 40001: serialization, 40P01: deadlock,
		// 57014: statement timeout, 53: insufficient resources
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "53") ||
			pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "57014"
	}
	return false
}
