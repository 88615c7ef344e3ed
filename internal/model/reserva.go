package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de Reserva.
const (
	ReservaPendientePago = "PENDIENTE_PAGO"
	ReservaConfirmada    = "CONFIRMADA"
	ReservaCancelada     = "CANCELADA"
	ReservaCompletada    = "COMPLETADA"
)

// Reserva is a booking of a common space.
// Estado: "PENDIENTE_PAGO" | "CONFIRMADA" | "CANCELADA" | "COMPLETADA"
// HoraInicio / HoraFin are "HH:MM" clock times on FechaReserva.
type Reserva struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EspacioComunID uuid.UUID       `gorm:"type:uuid;not null;index:idx_reserva_espacio_fecha,priority:1"`
	ResidenteID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	FechaReserva   time.Time       `gorm:"not null;index:idx_reserva_espacio_fecha,priority:2"`
	HoraInicio     string          `gorm:"type:varchar(5);not null"`
	HoraFin        string          `gorm:"type:varchar(5);not null"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'PENDIENTE_PAGO'"`
	MontoPago      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PagoID         *uuid.UUID      `gorm:"type:uuid"`
	// GastoComunID is the ledger entry charged with MontoPago, used to reverse it.
	GastoComunID  *uuid.UUID `gorm:"type:uuid;index"`
	Observaciones *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Reserva) TableName() string { return "reservas" }

func (r *Reserva) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Activa reports whether the reservation still holds its slot.
func (r *Reserva) Activa() bool {
	return r.Estado == ReservaPendientePago || r.Estado == ReservaConfirmada
}
