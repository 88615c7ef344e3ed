package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tipos de evento de Registro.
const (
	EventoReserva     = "RESERVA"
	EventoMulta       = "MULTA"
	EventoPago        = "PAGO"
	EventoEdicion     = "EDICION"
	EventoEliminacion = "ELIMINACION"
	EventoCreacion    = "CREACION"
	EventoOtro        = "OTRO"
)

// Acciones of an adjustment payload.
const (
	AccionAjuste    = "AJUSTE"
	AccionReversion = "REVERSION"
)

// Object types an adjustment can target.
const (
	ObjetoGastoComun = "GASTO_COMUN"
	ObjetoMulta      = "MULTA"
)

// Registro is an immutable audit log entry. Reversals never touch the original
// row: they append a new Registro whose RegistroOriginalID points back to it.
// The unique index on RegistroOriginalID makes a reversal happen at most once.
type Registro struct {
	ID                 uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	UsuarioID          *uuid.UUID                        `gorm:"type:uuid;index"`
	TipoEvento         string                            `gorm:"type:varchar(20);not null;index"`
	Detalle            string                            `gorm:"not null"`
	Monto              *decimal.Decimal                  `gorm:"type:decimal(12,2)"`
	CondominioID       *uuid.UUID                        `gorm:"type:uuid;index"`
	ObjetoTipo         *string                           `gorm:"type:varchar(20);index:idx_registro_objeto,priority:1"`
	ObjetoID           *uuid.UUID                        `gorm:"type:uuid;index:idx_registro_objeto,priority:2"`
	DatosAdicionales   datatypes.JSONType[DatosRegistro] `gorm:"not null"`
	RegistroOriginalID *uuid.UUID                        `gorm:"type:uuid;uniqueIndex"`
	CreatedAt          time.Time                         `gorm:"index"`
}

func (Registro) TableName() string { return "registros" }

func (r *Registro) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Ajuste returns the adjustment payload, or nil for plain event records.
func (r *Registro) Ajuste() AjustePayload {
	return r.DatosAdicionales.Data().Ajuste
}

// ── Adjustment payloads ──────────────────────────────────────────────────────

// AjustePayload is the closed set of adjustment payloads: AjusteGastoComun and
// AjusteMulta. The unexported method keeps other packages from adding variants.
type AjustePayload interface {
	TipoObjeto() string
	IDObjeto() uuid.UUID
	Base() AjusteBase
	ajuste()
}

// AjusteBase holds the fields shared by every payload variant.
type AjusteBase struct {
	Accion     string `json:"accion"`
	Revertible bool   `json:"revertible"`
	// MontoOriginal is required for a payload to be revertible.
	MontoOriginal *decimal.Decimal `json:"monto_original,omitempty"`
	MontoNuevo    decimal.Decimal  `json:"monto_nuevo"`
	Motivo        string           `json:"motivo"`
	Timestamp     time.Time        `json:"timestamp"`
}

// AjusteGastoComun records a manual change of a ledger entry total.
type AjusteGastoComun struct {
	GastoComunID uuid.UUID `json:"object_id"`
	AjusteBase
	// MontoBaseAnterior lets a reversal restore the exact component split.
	// MontoBaseNuevo detects a later change to the base before reverting.
	MontoBaseAnterior decimal.Decimal `json:"monto_base_anterior"`
	MontoBaseNuevo    decimal.Decimal `json:"monto_base_nuevo"`
}

func (a AjusteGastoComun) TipoObjeto() string  { return ObjetoGastoComun }
func (a AjusteGastoComun) IDObjeto() uuid.UUID { return a.GastoComunID }
func (a AjusteGastoComun) Base() AjusteBase    { return a.AjusteBase }
func (AjusteGastoComun) ajuste()               {}

// AjusteMulta records a manual change of a fine amount, optionally a waiver.
type AjusteMulta struct {
	MultaID uuid.UUID `json:"object_id"`
	AjusteBase
	EsCondonacion  bool   `json:"es_condonacion"`
	EstadoAnterior string `json:"estado_anterior"`
	EstadoNuevo    string `json:"estado_nuevo"`
}

func (a AjusteMulta) TipoObjeto() string  { return ObjetoMulta }
func (a AjusteMulta) IDObjeto() uuid.UUID { return a.MultaID }
func (a AjusteMulta) Base() AjusteBase    { return a.AjusteBase }
func (AjusteMulta) ajuste()               {}

// DatosRegistro is the JSON document stored in registros.datos_adicionales.
// It is encoded with an "object_type" discriminator; a record without an
// adjustment encodes as {}.
type DatosRegistro struct {
	Ajuste AjustePayload
}

type datosGastoComunJSON struct {
	ObjectType string `json:"object_type"`
	AjusteGastoComun
}

type datosMultaJSON struct {
	ObjectType string `json:"object_type"`
	AjusteMulta
}

func (d DatosRegistro) MarshalJSON() ([]byte, error) {
	switch a := d.Ajuste.(type) {
	case nil:
		return []byte("{}"), nil
	case AjusteGastoComun:
		return json.Marshal(datosGastoComunJSON{ObjectType: ObjetoGastoComun, AjusteGastoComun: a})
	case AjusteMulta:
		return json.Marshal(datosMultaJSON{ObjectType: ObjetoMulta, AjusteMulta: a})
	default:
		return nil, fmt.Errorf("registro: payload de ajuste desconocido %T", a)
	}
}

func (d *DatosRegistro) UnmarshalJSON(data []byte) error {
	var head struct {
		ObjectType string `json:"object_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.ObjectType {
	case "":
		d.Ajuste = nil
	case ObjetoGastoComun:
		var v datosGastoComunJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		d.Ajuste = v.AjusteGastoComun
	case ObjetoMulta:
		var v datosMultaJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		d.Ajuste = v.AjusteMulta
	default:
		return fmt.Errorf("registro: object_type desconocido %q", head.ObjectType)
	}
	return nil
}
