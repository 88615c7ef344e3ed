package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ReservaFilter is bound from query string of GET /v1/reservas.
type ReservaFilter struct {
	ResidenteID    string `form:"residente_id"     validate:"omitempty,uuid"`
	EspacioComunID string `form:"espacio_comun_id" validate:"omitempty,uuid"`
	Estado         string `form:"estado"           validate:"omitempty,oneof=PENDIENTE_PAGO CONFIRMADA CANCELADA COMPLETADA"`
	Fecha          string `form:"fecha"            validate:"omitempty,datetime=2006-01-02"`
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ReservaListResponse struct {
	Data  []ReservaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearReservaRequest struct {
	EspacioComunID string  `json:"espacio_comun_id" validate:"required,uuid"`
	ResidenteID    string  `json:"residente_id"     validate:"required,uuid"`
	FechaReserva   string  `json:"fecha_reserva"    validate:"required,datetime=2006-01-02"`
	HoraInicio     string  `json:"hora_inicio"      validate:"required,datetime=15:04"`
	HoraFin        string  `json:"hora_fin"         validate:"required,datetime=15:04"`
	Observaciones  *string `json:"observaciones"    validate:"omitempty,max=500"`
}

type CancelarReservaRequest struct {
	Motivo *string `json:"motivo" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReservaResponse struct {
	ID             string `json:"id"`
	EspacioComunID string `json:"espacio_comun_id"`
	// CondominioID is the space's condominium; only filled by Obtener.
	CondominioID  string          `json:"condominio_id,omitempty"`
	ResidenteID   string          `json:"residente_id"`
	FechaReserva  string          `json:"fecha_reserva"`
	HoraInicio    string          `json:"hora_inicio"`
	HoraFin       string          `json:"hora_fin"`
	Estado        string          `json:"estado"`
	MontoPago     decimal.Decimal `json:"monto_pago"`
	PagoID        *string         `json:"pago_id"`
	GastoComunID  *string         `json:"gasto_comun_id"`
	Observaciones *string         `json:"observaciones"`
}
