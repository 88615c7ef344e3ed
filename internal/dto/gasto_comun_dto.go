package dto

import (
	"casitas/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// GastoComunFilter is bound from query string of GET /v1/gastos-comunes.
type GastoComunFilter struct {
	ResidenteID  string `form:"residente_id"  validate:"omitempty,uuid"`
	CondominioID string `form:"condominio_id" validate:"omitempty,uuid"`
	Estado       string `form:"estado"        validate:"omitempty,oneof=PENDIENTE PAGADO VENCIDO MOROSO"`
	Mes          int    `form:"mes"           validate:"omitempty,min=1,max=12"`
	Anio         int    `form:"anio"          validate:"omitempty,min=2000,max=2100"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type GastoComunListResponse struct {
	Data  []GastoComunResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearGastoComunRequest struct {
	ResidenteID     string          `json:"residente_id"     validate:"required,uuid"`
	Mes             int             `json:"mes"              validate:"required,min=1,max=12"`
	Anio            int             `json:"anio"             validate:"required,min=2000,max=2100"`
	MontoBase       decimal.Decimal `json:"monto_base"       validate:"min=0"`
	CuotaMantencion decimal.Decimal `json:"cuota_mantencion" validate:"min=0"`
	Servicios       decimal.Decimal `json:"servicios"        validate:"min=0"`
	Multas          decimal.Decimal `json:"multas"           validate:"min=0"`
	// FechaVencimiento defaults to the configured day of the following month.
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

// AjusteMontoRequest is the body of POST /v1/{gastos-comunes|multas}/:id/ajustes.
type AjusteMontoRequest struct {
	MontoNuevo    decimal.Decimal `json:"monto_nuevo"    validate:"min=0"`
	Motivo        string          `json:"motivo"         validate:"required,min=3,max=500"`
	EsCondonacion bool            `json:"es_condonacion"`
}

type RevertirAjusteRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GastoComunResponse struct {
	ID               string              `json:"id"`
	ResidenteID      string              `json:"residente_id"`
	CondominioID     string              `json:"condominio_id"`
	Mes              int                 `json:"mes"`
	Anio             int                 `json:"anio"`
	MontoBase        decimal.Decimal     `json:"monto_base"`
	CuotaMantencion  decimal.Decimal     `json:"cuota_mantencion"`
	Servicios        decimal.Decimal     `json:"servicios"`
	Multas           decimal.Decimal     `json:"multas"`
	MontoTotal       decimal.Decimal     `json:"monto_total"`
	Estado           string              `json:"estado"`
	FechaEmision     string              `json:"fecha_emision"`
	FechaVencimiento string              `json:"fecha_vencimiento"`
	FechaPago        *string             `json:"fecha_pago"`
	Observaciones    []model.Observacion `json:"observaciones"`
}

type NotificacionResponse struct {
	Enviada      bool   `json:"enviada"`
	Destinatario string `json:"destinatario,omitempty"`
	Motivo       string `json:"motivo,omitempty"`
}
