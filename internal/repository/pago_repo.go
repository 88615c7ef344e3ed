package repository

import (
	"context"

	"casitas/internal/dto"
	"casitas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PagoRepository interface {
	Create(ctx context.Context, p *model.Pago) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Pago, error)
	// FindByNumeroTransaccion returns every payment grouped under a buy order,
	// locked for update.
	FindByNumeroTransaccion(ctx context.Context, buyOrder string) ([]model.Pago, error)
	ListPendientes(ctx context.Context, residenteID uuid.UUID) ([]model.Pago, error)
	// SumaAprobada totals the APROBADO payments of one referenced object.
	SumaAprobada(ctx context.Context, tipo string, referenciaID uuid.UUID) (decimal.Decimal, error)
	Update(ctx context.Context, p *model.Pago) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.PagoFilter) ([]model.Pago, int64, error)
	WithTx(tx *gorm.DB) PagoRepository
	DB() *gorm.DB
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) DB() *gorm.DB { return r.db }

func (r *pagoRepo) WithTx(tx *gorm.DB) PagoRepository {
	if tx == nil {
		return r
	}
	return &pagoRepo{db: tx}
}

func (r *pagoRepo) Create(ctx context.Context, p *model.Pago) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Pago, error) {
	var pagos []model.Pago
	if len(ids) == 0 {
		return pagos, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at ASC").Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) FindByNumeroTransaccion(ctx context.Context, buyOrder string) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("numero_transaccion = ?", buyOrder).
		Order("created_at ASC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) ListPendientes(ctx context.Context, residenteID uuid.UUID) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Where("residente_id = ? AND estado_pago = ?", residenteID, model.PagoPendiente).
		Order("created_at ASC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) SumaAprobada(ctx context.Context, tipo string, referenciaID uuid.UUID) (decimal.Decimal, error) {
	var montos []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Pago{}).
		Where("tipo = ? AND referencia_id = ? AND estado_pago = ?", tipo, referenciaID, model.PagoAprobado).
		Pluck("monto", &montos).Error
	total := decimal.Zero
	for _, m := range montos {
		total = total.Add(m)
	}
	return total, err
}

func (r *pagoRepo) Update(ctx context.Context, p *model.Pago) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pagoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Pago{}, "id = ?", id).Error
}

func (r *pagoRepo) List(ctx context.Context, filter dto.PagoFilter) ([]model.Pago, int64, error) {
	var pagos []model.Pago
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Pago{})
	if filter.ResidenteID != "" {
		q = q.Where("residente_id = ?", filter.ResidenteID)
	}
	if filter.CondominioID != "" {
		q = q.Where("condominio_id = ?", filter.CondominioID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" {
		q = q.Where("estado_pago = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("fecha_pago DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pagos).Error
	return pagos, total, err
}
