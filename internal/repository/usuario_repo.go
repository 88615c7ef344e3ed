package repository

import (
	"context"

	"casitas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	// List returns the users of a condominium, or every user when condominioID is nil.
	List(ctx context.Context, condominioID *uuid.UUID) ([]model.Usuario, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	// case-insensitive, active users only
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND activo = ?", email, true).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *usuarioRepo) List(ctx context.Context, condominioID *uuid.UUID) ([]model.Usuario, error) {
	var users []model.Usuario
	q := r.db.WithContext(ctx).Order("email ASC")
	if condominioID != nil {
		q = q.Where("condominio_id = ?", *condominioID)
	}
	err := q.Find(&users).Error
	return users, err
}
