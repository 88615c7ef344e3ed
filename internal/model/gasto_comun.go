package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Estados de GastoComun.
const (
	GastoPendiente = "PENDIENTE"
	GastoPagado    = "PAGADO"
	GastoVencido   = "VENCIDO"
	GastoMoroso    = "MOROSO"
)

// Tipos de Observacion.
const (
	ObsCargoReserva    = "CARGO_RESERVA"
	ObsReversaReserva  = "REVERSA_RESERVA"
	ObsCargoMulta      = "CARGO_MULTA"
	ObsReversaMulta    = "REVERSA_MULTA"
	ObsReapertura      = "REAPERTURA"
	ObsAjusteManual    = "AJUSTE_MANUAL"
	ObsReversionAjuste = "REVERSION_AJUSTE"
)

// Observacion is one entry in the ordered note list of a GastoComun.
// Notes are only appended, never edited.
type Observacion struct {
	Fecha        time.Time       `json:"fecha"`
	Tipo         string          `json:"tipo"`
	Descripcion  string          `json:"descripcion"`
	Monto        decimal.Decimal `json:"monto"`
	ReferenciaID *uuid.UUID      `json:"referencia_id,omitempty"`
}

// GastoComun is the monthly expense ledger of one resident.
// Unique per (residente_id, mes, anio).
// Estado: "PENDIENTE" | "PAGADO" | "VENCIDO" | "MOROSO"
// Invariant: MontoTotal = MontoBase + CuotaMantencion + Servicios + Multas.
type GastoComun struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ResidenteID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_gasto_residente_periodo,priority:1"`
	CondominioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Mes             int             `gorm:"not null;uniqueIndex:idx_gasto_residente_periodo,priority:3"`
	Anio            int             `gorm:"not null;uniqueIndex:idx_gasto_residente_periodo,priority:2"`
	MontoBase       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CuotaMantencion decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Servicios       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Multas          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'PENDIENTE';index"`
	FechaEmision    time.Time       `gorm:"not null"`
	// FechaVencimiento drives the arrears batch (vencimiento < hoy AND PENDIENTE).
	FechaVencimiento time.Time `gorm:"not null;index"`
	FechaPago        *time.Time
	Observaciones    datatypes.JSONSlice[Observacion]
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (GastoComun) TableName() string { return "gastos_comunes" }

func (g *GastoComun) BeforeCreate(_ *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// SumaComponentes is the only valid value for MontoTotal.
func (g *GastoComun) SumaComponentes() decimal.Decimal {
	return g.MontoBase.Add(g.CuotaMantencion).Add(g.Servicios).Add(g.Multas)
}

// RecalcularTotal rewrites MontoTotal from the components.
func (g *GastoComun) RecalcularTotal() {
	g.MontoTotal = g.SumaComponentes()
}

// AgregarObservacion appends a note stamped with the current UTC time.
func (g *GastoComun) AgregarObservacion(tipo, descripcion string, monto decimal.Decimal, ref *uuid.UUID) {
	g.Observaciones = append(g.Observaciones, Observacion{
		Fecha:        time.Now().UTC(),
		Tipo:         tipo,
		Descripcion:  descripcion,
		Monto:        monto,
		ReferenciaID: ref,
	})
}
