package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles de Usuario.
const (
	RolSuperAdministrador = "super_administrador"
	RolAdministrador      = "administrador"
	RolResidente          = "residente"
)

// Usuario stores system users with role-based access.
// Rol: "super_administrador" | "administrador" | "residente"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Apellido     string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	// CondominioID scopes administrators and residents; nil for super administrators.
	CondominioID *uuid.UUID `gorm:"type:uuid"`
	// ViviendaNumero is used to provision the resident profile on first login.
	ViviendaNumero *string `gorm:"type:varchar(20)"`
	Activo         bool    `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
