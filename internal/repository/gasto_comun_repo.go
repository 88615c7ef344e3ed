package repository

import (
	"context"
	"time"

	"casitas/internal/dto"
	"casitas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GastoComunRepository interface {
	// CreateIfAbsent inserts g unless the (residente, anio, mes) slot is taken.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, g *model.GastoComun) (bool, error)
	Create(ctx context.Context, g *model.GastoComun) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.GastoComun, error)
	// FindByIDForUpdate row-locks the entry for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.GastoComun, error)
	FindByPeriodo(ctx context.Context, residenteID uuid.UUID, mes, anio int) (*model.GastoComun, error)
	Update(ctx context.Context, g *model.GastoComun) error
	// ListVencidosPendientes returns PENDIENTE entries due strictly before hoy,
	// locked for update.
	ListVencidosPendientes(ctx context.Context, hoy time.Time) ([]model.GastoComun, error)
	List(ctx context.Context, filter dto.GastoComunFilter) ([]model.GastoComun, int64, error)
	WithTx(tx *gorm.DB) GastoComunRepository
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type gastoComunRepo struct{ db *gorm.DB }

func NewGastoComunRepository(db *gorm.DB) GastoComunRepository { return &gastoComunRepo{db: db} }

func (r *gastoComunRepo) DB() *gorm.DB { return r.db }

func (r *gastoComunRepo) WithTx(tx *gorm.DB) GastoComunRepository {
	if tx == nil {
		return r
	}
	return &gastoComunRepo{db: tx}
}

func (r *gastoComunRepo) CreateIfAbsent(ctx context.Context, g *model.GastoComun) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "residente_id"}, {Name: "anio"}, {Name: "mes"}},
			DoNothing: true,
		}).
		Create(g)
	return res.RowsAffected == 1, res.Error
}

func (r *gastoComunRepo) Create(ctx context.Context, g *model.GastoComun) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *gastoComunRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.GastoComun, error) {
	var g model.GastoComun
	err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error
	return &g, err
}

func (r *gastoComunRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.GastoComun, error) {
	var g model.GastoComun
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&g, "id = ?", id).Error
	return &g, err
}

func (r *gastoComunRepo) FindByPeriodo(ctx context.Context, residenteID uuid.UUID, mes, anio int) (*model.GastoComun, error) {
	var g model.GastoComun
	err := r.db.WithContext(ctx).
		Where("residente_id = ? AND mes = ? AND anio = ?", residenteID, mes, anio).
		First(&g).Error
	return &g, err
}

func (r *gastoComunRepo) Update(ctx context.Context, g *model.GastoComun) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *gastoComunRepo) ListVencidosPendientes(ctx context.Context, hoy time.Time) ([]model.GastoComun, error) {
	var gastos []model.GastoComun
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("fecha_vencimiento < ? AND estado = ?", hoy, model.GastoPendiente).
		Order("fecha_vencimiento ASC, id ASC").
		Find(&gastos).Error
	return gastos, err
}

func (r *gastoComunRepo) List(ctx context.Context, filter dto.GastoComunFilter) ([]model.GastoComun, int64, error) {
	var gastos []model.GastoComun
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.GastoComun{})
	if filter.ResidenteID != "" {
		q = q.Where("residente_id = ?", filter.ResidenteID)
	}
	if filter.CondominioID != "" {
		q = q.Where("condominio_id = ?", filter.CondominioID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Mes != 0 {
		q = q.Where("mes = ?", filter.Mes)
	}
	if filter.Anio != 0 {
		q = q.Where("anio = ?", filter.Anio)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("anio DESC, mes DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&gastos).Error
	return gastos, total, err
}
