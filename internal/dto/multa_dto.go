package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// MultaFilter is bound from query string of GET /v1/multas.
type MultaFilter struct {
	ResidenteID  string `form:"residente_id"  validate:"omitempty,uuid"`
	CondominioID string `form:"condominio_id" validate:"omitempty,uuid"`
	Estado       string `form:"estado"        validate:"omitempty,oneof=PENDIENTE PAGADA CONDONADA"`
	Tipo         string `form:"tipo"          validate:"omitempty,oneof=RETRASO_PAGO INFRAESTRUCTURA RUIDO MASCOTA OTRO"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MultaListResponse struct {
	Data  []MultaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearMultaRequest struct {
	ResidenteID string          `json:"residente_id" validate:"required,uuid"`
	Tipo        string          `json:"tipo"         validate:"required,oneof=RETRASO_PAGO INFRAESTRUCTURA RUIDO MASCOTA OTRO"`
	Descripcion string          `json:"descripcion"  validate:"required,min=3,max=500"`
	Monto       decimal.Decimal `json:"monto"        validate:"required,gt=0"`
	// CargarEnGastoComun adds the amount to the resident's ledger entry of the
	// current month in the same transaction.
	CargarEnGastoComun bool `json:"cargar_en_gasto_comun"`
}

// ProcesarAtrasosRequest optionally pins the reference date of the arrears batch.
type ProcesarAtrasosRequest struct {
	Fecha *string `form:"fecha" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MultaResponse struct {
	ID                string          `json:"id"`
	ResidenteID       string          `json:"residente_id"`
	CondominioID      string          `json:"condominio_id"`
	Tipo              string          `json:"tipo"`
	Descripcion       string          `json:"descripcion"`
	Monto             decimal.Decimal `json:"monto"`
	Estado            string          `json:"estado"`
	FechaEmision      string          `json:"fecha_emision"`
	FechaPago         *string         `json:"fecha_pago"`
	MotivoCondonacion *string         `json:"motivo_condonacion"`
	CreadoPor         *string         `json:"creado_por"`
	GastoComunID      *string         `json:"gasto_comun_id"`
}

type ProcesarAtrasosResponse struct {
	Fecha         string `json:"fecha"`
	Revisados     int    `json:"revisados"`
	MultasCreadas int    `json:"multas_creadas"`
}
