package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PagoFilter is bound from query string of GET /v1/pagos.
type PagoFilter struct {
	ResidenteID  string `form:"residente_id"  validate:"omitempty,uuid"`
	CondominioID string `form:"condominio_id" validate:"omitempty,uuid"`
	Tipo         string `form:"tipo"          validate:"omitempty,oneof=GASTO_COMUN MULTA RESERVA"`
	Estado       string `form:"estado"        validate:"omitempty,oneof=PENDIENTE APROBADO RECHAZADO REVERSADO"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PagoListResponse struct {
	Data  []PagoResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPagoRequest struct {
	ResidenteID       string          `json:"residente_id"  validate:"required,uuid"`
	Tipo              string          `json:"tipo"          validate:"required,oneof=GASTO_COMUN MULTA RESERVA"`
	ReferenciaID      string          `json:"referencia_id" validate:"required,uuid"`
	Monto             decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	MetodoPago        string          `json:"metodo_pago"   validate:"required,oneof=TRANSFERENCIA TARJETA EFECTIVO WEBPAY KHIPU"`
	NumeroTransaccion *string         `json:"numero_transaccion" validate:"omitempty,max=64"`
	ComprobanteURL    *string         `json:"comprobante_url"    validate:"omitempty,url"`
}

// ActualizarPagoRequest only applies while the payment is PENDIENTE.
type ActualizarPagoRequest struct {
	Monto             *decimal.Decimal `json:"monto"`
	MetodoPago        *string          `json:"metodo_pago"        validate:"omitempty,oneof=TRANSFERENCIA TARJETA EFECTIVO WEBPAY KHIPU"`
	NumeroTransaccion *string          `json:"numero_transaccion" validate:"omitempty,max=64"`
	ComprobanteURL    *string          `json:"comprobante_url"    validate:"omitempty,url"`
}

type PrepararOrdenRequest struct {
	ResidenteID string   `json:"residente_id" validate:"required,uuid"`
	PagoIDs     []string `json:"pago_ids"     validate:"required,min=1,dive,uuid"`
}

// ConfirmacionPasarelaRequest is the gateway webhook body. Only a status of
// AUTHORIZED with response_code 0 (or absent) approves the order.
type ConfirmacionPasarelaRequest struct {
	BuyOrder     string          `json:"buy_order"     validate:"required,max=64"`
	Status       string          `json:"status"        validate:"required"`
	Amount       decimal.Decimal `json:"amount"        validate:"gt=0"`
	ResponseCode *int            `json:"response_code"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID                string          `json:"id"`
	CondominioID      string          `json:"condominio_id"`
	ResidenteID       string          `json:"residente_id"`
	Tipo              string          `json:"tipo"`
	ReferenciaID      string          `json:"referencia_id"`
	Monto             decimal.Decimal `json:"monto"`
	MetodoPago        string          `json:"metodo_pago"`
	EstadoPago        string          `json:"estado_pago"`
	NumeroTransaccion *string         `json:"numero_transaccion"`
	FechaPago         string          `json:"fecha_pago"`
	ComprobanteURL    *string         `json:"comprobante_url"`
}

type OrdenPagoResponse struct {
	BuyOrder string          `json:"buy_order"`
	Monto    decimal.Decimal `json:"monto"`
	PagoIDs  []string        `json:"pago_ids"`
}

type ConfirmacionPasarelaResponse struct {
	BuyOrder          string `json:"buy_order"`
	Aprobado          bool   `json:"aprobado"`
	PagosActualizados int    `json:"pagos_actualizados"`
}

type SincronizarPendientesResponse struct {
	Creados   int            `json:"creados"`
	Pendiente []PagoResponse `json:"pendientes"`
}
