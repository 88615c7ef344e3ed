package repository

import (
	"context"

	"casitas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResidenteRepository interface {
	Create(ctx context.Context, r *model.Residente) error
	// CreateIfAbsent inserts r unless a profile already exists for its usuario_id.
	CreateIfAbsent(ctx context.Context, r *model.Residente) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Residente, error)
	FindByUsuarioID(ctx context.Context, usuarioID uuid.UUID) (*model.Residente, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Residente, error)
	Update(ctx context.Context, r *model.Residente) error
	WithTx(tx *gorm.DB) ResidenteRepository
}

type residenteRepo struct{ db *gorm.DB }

func NewResidenteRepository(db *gorm.DB) ResidenteRepository { return &residenteRepo{db: db} }

func (r *residenteRepo) WithTx(tx *gorm.DB) ResidenteRepository {
	if tx == nil {
		return r
	}
	return &residenteRepo{db: tx}
}

func (r *residenteRepo) Create(ctx context.Context, res *model.Residente) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *residenteRepo) CreateIfAbsent(ctx context.Context, res *model.Residente) (bool, error) {
	out := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "usuario_id"}}, DoNothing: true}).
		Create(res)
	return out.RowsAffected == 1, out.Error
}

func (r *residenteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Residente, error) {
	var res model.Residente
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	return &res, err
}

func (r *residenteRepo) FindByUsuarioID(ctx context.Context, usuarioID uuid.UUID) (*model.Residente, error) {
	var res model.Residente
	err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).First(&res).Error
	return &res, err
}

func (r *residenteRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Residente, error) {
	var out []model.Residente
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *residenteRepo) Update(ctx context.Context, res *model.Residente) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// ── EspacioComun ─────────────────────────────────────────────────────────────

type EspacioComunRepository interface {
	Create(ctx context.Context, e *model.EspacioComun) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.EspacioComun, error)
	// FindByIDForUpdate locks the space so bookings of it are checked for
	// overlap one at a time.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.EspacioComun, error)
	// List returns the spaces of a condominium, or all of them when condominioID is nil.
	List(ctx context.Context, condominioID *uuid.UUID) ([]model.EspacioComun, error)
	WithTx(tx *gorm.DB) EspacioComunRepository
}

type espacioComunRepo struct{ db *gorm.DB }

func NewEspacioComunRepository(db *gorm.DB) EspacioComunRepository {
	return &espacioComunRepo{db: db}
}

func (r *espacioComunRepo) WithTx(tx *gorm.DB) EspacioComunRepository {
	if tx == nil {
		return r
	}
	return &espacioComunRepo{db: tx}
}

func (r *espacioComunRepo) Create(ctx context.Context, e *model.EspacioComun) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *espacioComunRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.EspacioComun, error) {
	var e model.EspacioComun
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *espacioComunRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.EspacioComun, error) {
	var e model.EspacioComun
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *espacioComunRepo) List(ctx context.Context, condominioID *uuid.UUID) ([]model.EspacioComun, error) {
	var out []model.EspacioComun
	q := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC")
	if condominioID != nil {
		q = q.Where("condominio_id = ?", *condominioID)
	}
	err := q.Find(&out).Error
	return out, err
}
