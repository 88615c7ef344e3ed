package service

//go:generate mockgen -source=notificador.go -destination=mocks/mock_notificador.go -package=mocks

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notificacion is one e-mail to residents. AdjuntoPath is optional.
type Notificacion struct {
	Destinatarios []string
	Asunto        string
	Cuerpo        string
	AdjuntoPath   string
}

// Notificador delivers notifications outside the request path.
type Notificador interface {
	Enviar(ctx context.Context, n Notificacion) error
}

// notificar is best-effort: a delivery failure never fails the operation
// that produced the notification.
func notificar(ctx context.Context, n Notificador, msg Notificacion) bool {
	if n == nil || len(msg.Destinatarios) == 0 {
		return false
	}
	if err := n.Enviar(ctx, msg); err != nil {
		log.Warn().Err(err).Strs("to", msg.Destinatarios).Str("asunto", msg.Asunto).
			Msg("notificacion: envío fallido")
		return false
	}
	return true
}
