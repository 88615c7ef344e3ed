package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"casitas/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job body pushed to QueueEmail.
type EmailJobPayload struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	AdjuntoPath string   `json:"adjunto_path,omitempty"`
}

// Sender delivers one email. *infra.Mailer is the production Sender.
type Sender interface {
	Send(to []string, subject, body, adjuntoPath string) error
}

// EmailWorker sends notification emails through the SMTP circuit breaker.
type EmailWorker struct {
	sender Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(sender Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p EmailJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: invalid email payload: %v", ErrPermanente, err)
	}
	if len(p.To) == 0 {
		log.Warn().Str("subject", p.Subject).Msg("email_worker: no recipients, skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.sender.Send(p.To, p.Subject, p.Body, p.AdjuntoPath)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send: %w", err)
	}
	log.Info().Strs("to", p.To).Str("subject", p.Subject).Msg("email_worker: sent")
	return nil
}
