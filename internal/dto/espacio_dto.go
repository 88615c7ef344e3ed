package dto

import "github.com/shopspring/decimal"

// CrearEspacioRequest registers a bookable common space. A nil or zero
// costo_por_hora makes bookings of it free.
type CrearEspacioRequest struct {
	CondominioID string           `json:"condominio_id"  validate:"required,uuid"`
	Nombre       string           `json:"nombre"         validate:"required,min=2,max=100"`
	Tipo         string           `json:"tipo"           validate:"required,oneof=ESTACIONAMIENTO QUINCHO MULTICANCHA SALA_EVENTOS"`
	Capacidad    *int             `json:"capacidad"      validate:"omitempty,min=1"`
	CostoPorHora *decimal.Decimal `json:"costo_por_hora" validate:"omitempty"`
	RequierePago bool             `json:"requiere_pago"`
}

type EspacioResponse struct {
	ID           string           `json:"id"`
	CondominioID string           `json:"condominio_id"`
	Nombre       string           `json:"nombre"`
	Tipo         string           `json:"tipo"`
	Capacidad    *int             `json:"capacidad"`
	CostoPorHora *decimal.Decimal `json:"costo_por_hora"`
	RequierePago bool             `json:"requiere_pago"`
}
