package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipos de Multa.
const (
	MultaRetrasoPago     = "RETRASO_PAGO"
	MultaInfraestructura = "INFRAESTRUCTURA"
	MultaRuido           = "RUIDO"
	MultaMascota         = "MASCOTA"
	MultaOtro            = "OTRO"
)

// Estados de Multa.
const (
	MultaPendiente = "PENDIENTE"
	MultaPagada    = "PAGADA"
	MultaCondonada = "CONDONADA"
)

// Multa is a fine against one resident.
// Tipo: "RETRASO_PAGO" | "INFRAESTRUCTURA" | "RUIDO" | "MASCOTA" | "OTRO"
// Estado: "PENDIENTE" | "PAGADA" | "CONDONADA"
//
// ClaveDedup is set only on fines generated by the arrears batch; together with
// residente_id and tipo it is unique, so a period can be fined at most once.
type Multa struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ResidenteID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_multa_dedup,priority:1"`
	CondominioID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo              string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_multa_dedup,priority:2"`
	Descripcion       string          `gorm:"not null"`
	Monto             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado            string          `gorm:"type:varchar(20);not null;default:'PENDIENTE';index"`
	FechaEmision      time.Time       `gorm:"not null"`
	FechaPago         *time.Time
	MotivoCondonacion *string
	// CreadoPor is nil for fines issued by the system.
	CreadoPor  *uuid.UUID `gorm:"type:uuid"`
	ClaveDedup *string    `gorm:"type:varchar(120);uniqueIndex:idx_multa_dedup,priority:3"`
	// GastoComunID links a fine whose amount was charged into a ledger entry.
	GastoComunID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Multa) TableName() string { return "multas" }

func (m *Multa) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ClaveRetraso is the deterministic dedup key of the late-payment fine for one
// resident and ledger period.
func ClaveRetraso(residenteID uuid.UUID, anio, mes int) string {
	return fmt.Sprintf("%s:%s:%04d-%02d", MultaRetrasoPago, residenteID, anio, mes)
}
