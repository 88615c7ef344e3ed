package repository

import (
	"context"

	"casitas/internal/dto"
	"casitas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MultaRepository interface {
	Create(ctx context.Context, m *model.Multa) error
	// CreateDedup inserts m unless a fine with the same (residente_id, tipo,
	// clave_dedup) exists, whatever its estado. Reports whether it inserted.
	CreateDedup(ctx context.Context, m *model.Multa) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Multa, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Multa, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Multa, error)
	Update(ctx context.Context, m *model.Multa) error
	ListPorGasto(ctx context.Context, gastoID uuid.UUID, estado string) ([]model.Multa, error)
	ListPendientesSinPago(ctx context.Context, residenteID uuid.UUID) ([]model.Multa, error)
	List(ctx context.Context, filter dto.MultaFilter) ([]model.Multa, int64, error)
	WithTx(tx *gorm.DB) MultaRepository
	DB() *gorm.DB
}

type multaRepo struct{ db *gorm.DB }

func NewMultaRepository(db *gorm.DB) MultaRepository { return &multaRepo{db: db} }

func (r *multaRepo) DB() *gorm.DB { return r.db }

func (r *multaRepo) WithTx(tx *gorm.DB) MultaRepository {
	if tx == nil {
		return r
	}
	return &multaRepo{db: tx}
}

func (r *multaRepo) Create(ctx context.Context, m *model.Multa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *multaRepo) CreateDedup(ctx context.Context, m *model.Multa) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "residente_id"}, {Name: "tipo"}, {Name: "clave_dedup"}},
			DoNothing: true,
		}).
		Create(m)
	return res.RowsAffected == 1, res.Error
}

func (r *multaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Multa, error) {
	var m model.Multa
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *multaRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Multa, error) {
	var m model.Multa
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	return &m, err
}

func (r *multaRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Multa, error) {
	var multas []model.Multa
	if len(ids) == 0 {
		return multas, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&multas).Error
	return multas, err
}

func (r *multaRepo) Update(ctx context.Context, m *model.Multa) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// ListPendientesSinPago returns the resident's PENDIENTE fines that have no
// PENDIENTE or APROBADO Pago referencing them.
func (r *multaRepo) ListPorGasto(ctx context.Context, gastoID uuid.UUID, estado string) ([]model.Multa, error) {
	var multas []model.Multa
	err := r.db.WithContext(ctx).
		Where("gasto_comun_id = ? AND estado = ?", gastoID, estado).
		Find(&multas).Error
	return multas, err
}

func (r *multaRepo) ListPendientesSinPago(ctx context.Context, residenteID uuid.UUID) ([]model.Multa, error) {
	var multas []model.Multa
	sub := r.db.Model(&model.Pago{}).
		Select("referencia_id").
		Where("tipo = ? AND estado_pago IN ?", model.PagoMulta, []string{model.PagoPendiente, model.PagoAprobado})
	err := r.db.WithContext(ctx).
		Where("residente_id = ? AND estado = ?", residenteID, model.MultaPendiente).
		Where("id NOT IN (?)", sub).
		Order("fecha_emision ASC").
		Find(&multas).Error
	return multas, err
}

func (r *multaRepo) List(ctx context.Context, filter dto.MultaFilter) ([]model.Multa, int64, error) {
	var multas []model.Multa
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Multa{})
	if filter.ResidenteID != "" {
		q = q.Where("residente_id = ?", filter.ResidenteID)
	}
	if filter.CondominioID != "" {
		q = q.Where("condominio_id = ?", filter.CondominioID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("fecha_emision DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&multas).Error
	return multas, total, err
}
