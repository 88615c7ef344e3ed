package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Residente is the billing subject. UsuarioID is unique so that a login maps to
// at most one profile.
type Residente struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UsuarioID              *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CondominioID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	ViviendaNumero         string     `gorm:"type:varchar(20);not null;index"`
	Nombre                 string     `gorm:"not null"`
	Apellido               string
	Rut                    *string `gorm:"type:varchar(12);uniqueIndex"`
	Email                  string  `gorm:"not null;index"`
	SuscritoNotificaciones bool    `gorm:"not null"`
	UltimoCorreoEnviado    *time.Time
	EsPropietario          bool `gorm:"not null;default:false"`
	Activo                 bool `gorm:"not null"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (Residente) TableName() string { return "residentes" }

func (r *Residente) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Notificable reports whether best-effort emails may be sent to the resident.
func (r *Residente) Notificable() bool {
	return r.Activo && r.SuscritoNotificaciones && r.Email != ""
}

// EspacioComun is a bookable common space. CostoPorHora nil means free.
// Tipo: "ESTACIONAMIENTO" | "QUINCHO" | "MULTICANCHA" | "SALA_EVENTOS"
type EspacioComun struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CondominioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre       string    `gorm:"not null"`
	Tipo         string    `gorm:"type:varchar(20);not null"`
	Capacidad    *int
	CostoPorHora *decimal.Decimal `gorm:"type:decimal(12,2)"`
	RequierePago bool             `gorm:"not null;default:false"`
	Activo       bool             `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (EspacioComun) TableName() string { return "espacios_comunes" }

func (e *EspacioComun) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
