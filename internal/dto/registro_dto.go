package dto

import (
	"casitas/internal/model"

	"github.com/shopspring/decimal"
)

// RegistroFilter is bound from query string of GET /v1/registros.
type RegistroFilter struct {
	TipoEvento   string `form:"tipo_evento"   validate:"omitempty,oneof=RESERVA MULTA PAGO EDICION ELIMINACION CREACION OTRO"`
	CondominioID string `form:"condominio_id" validate:"omitempty,uuid"`
	ObjetoTipo   string `form:"objeto_tipo"   validate:"omitempty,oneof=GASTO_COMUN MULTA"`
	ObjetoID     string `form:"objeto_id"     validate:"omitempty,uuid"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type RegistroListResponse struct {
	Data  []RegistroResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type RegistroResponse struct {
	ID                 string              `json:"id"`
	UsuarioID          *string             `json:"usuario_id"`
	TipoEvento         string              `json:"tipo_evento"`
	Detalle            string              `json:"detalle"`
	Monto              *decimal.Decimal    `json:"monto"`
	CondominioID       *string             `json:"condominio_id"`
	ObjetoTipo         *string             `json:"objeto_tipo"`
	ObjetoID           *string             `json:"objeto_id"`
	DatosAdicionales   model.DatosRegistro `json:"datos_adicionales"`
	RegistroOriginalID *string             `json:"registro_original_id"`
	// RevertidoPorID is the reversal record of this one, if any.
	RevertidoPorID *string `json:"revertido_por_id"`
	CreatedAt      string  `json:"created_at"`
}
