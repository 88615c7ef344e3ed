package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipos de Pago.
const (
	PagoGastoComun = "GASTO_COMUN"
	PagoMulta      = "MULTA"
	PagoReserva    = "RESERVA"
)

// Metodos de pago.
const (
	MetodoTransferencia = "TRANSFERENCIA"
	MetodoTarjeta       = "TARJETA"
	MetodoEfectivo      = "EFECTIVO"
	MetodoWebpay        = "WEBPAY"
	MetodoKhipu         = "KHIPU"
)

// Estados de Pago.
const (
	PagoPendiente = "PENDIENTE"
	PagoAprobado  = "APROBADO"
	PagoRechazado = "RECHAZADO"
	PagoReversado = "REVERSADO"
)

// Pago records a movement of money tied to exactly one GastoComun, Multa or
// Reserva through (Tipo, ReferenciaID).
// EstadoPago: "PENDIENTE" | "APROBADO" | "RECHAZADO" | "REVERSADO"
type Pago struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CondominioID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ResidenteID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo         string          `gorm:"type:varchar(20);not null;index:idx_pago_referencia,priority:1"`
	ReferenciaID uuid.UUID       `gorm:"type:uuid;not null;index:idx_pago_referencia,priority:2"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	EstadoPago   string          `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	// NumeroTransaccion holds the gateway buy order once an order is prepared.
	NumeroTransaccion *string   `gorm:"type:varchar(64);index"`
	FechaPago         time.Time `gorm:"not null"`
	ComprobanteURL    *string
	RegistradoPor     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Pago) TableName() string { return "pagos" }

func (p *Pago) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.FechaPago.IsZero() {
		p.FechaPago = time.Now().UTC()
	}
	return nil
}
