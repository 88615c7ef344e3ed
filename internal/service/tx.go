package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx runs fn inside a DB transaction. With a nil db (unit tests with
// in-memory fakes) fn runs directly with a nil tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// conTimeout bounds one operation's storage round trips. A non-positive d
// leaves the parent deadline alone.
func conTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// fechaUTC truncates t to midnight UTC of its calendar day.
func fechaUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseFecha(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, Validation("fecha inválida %q, use AAAA-MM-DD", s)
	}
	return t, nil
}

func parseUUID(campo, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, Validation("%s inválido", campo)
	}
	return id, nil
}

func uuidStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func fechaStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
