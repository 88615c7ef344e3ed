package service

import (
	"casitas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// nuevoEvento builds a plain audit record with no adjustment payload.
func nuevoEvento(tipo, detalle string, monto *decimal.Decimal, condominioID uuid.UUID, actorID *uuid.UUID) *model.Registro {
	return &model.Registro{
		UsuarioID:        actorID,
		TipoEvento:       tipo,
		Detalle:          detalle,
		Monto:            monto,
		CondominioID:     &condominioID,
		DatosAdicionales: datatypes.NewJSONType(model.DatosRegistro{}),
	}
}
