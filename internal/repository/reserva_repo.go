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

type ReservaRepository interface {
	Create(ctx context.Context, r *model.Reserva) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reserva, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Reserva, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Reserva, error)
	Update(ctx context.Context, r *model.Reserva) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListActivasEntre returns the PENDIENTE_PAGO / CONFIRMADA bookings of a
	// space dated desde..hasta inclusive, used for the overlap check.
	ListActivasEntre(ctx context.Context, espacioID uuid.UUID, desde, hasta time.Time) ([]model.Reserva, error)
	// ListPorGasto returns the bookings in estado charged to one ledger entry.
	ListPorGasto(ctx context.Context, gastoID uuid.UUID, estado string) ([]model.Reserva, error)
	ListPendientesSinPago(ctx context.Context, residenteID uuid.UUID) ([]model.Reserva, error)
	List(ctx context.Context, filter dto.ReservaFilter) ([]model.Reserva, int64, error)
	WithTx(tx *gorm.DB) ReservaRepository
	DB() *gorm.DB
}

type reservaRepo struct{ db *gorm.DB }

func NewReservaRepository(db *gorm.DB) ReservaRepository { return &reservaRepo{db: db} }

func (r *reservaRepo) DB() *gorm.DB { return r.db }

func (r *reservaRepo) WithTx(tx *gorm.DB) ReservaRepository {
	if tx == nil {
		return r
	}
	return &reservaRepo{db: tx}
}

func (r *reservaRepo) Create(ctx context.Context, res *model.Reserva) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *reservaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Reserva, error) {
	var res model.Reserva
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	return &res, err
}

func (r *reservaRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Reserva, error) {
	var res model.Reserva
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, "id = ?", id).Error
	return &res, err
}

func (r *reservaRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Reserva, error) {
	var reservas []model.Reserva
	if len(ids) == 0 {
		return reservas, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&reservas).Error
	return reservas, err
}

func (r *reservaRepo) Update(ctx context.Context, res *model.Reserva) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *reservaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Reserva{}, "id = ?", id).Error
}

func (r *reservaRepo) ListPorGasto(ctx context.Context, gastoID uuid.UUID, estado string) ([]model.Reserva, error) {
	var reservas []model.Reserva
	err := r.db.WithContext(ctx).
		Where("gasto_comun_id = ? AND estado = ?", gastoID, estado).
		Find(&reservas).Error
	return reservas, err
}

func (r *reservaRepo) ListActivasEntre(ctx context.Context, espacioID uuid.UUID, desde, hasta time.Time) ([]model.Reserva, error) {
	var reservas []model.Reserva
	err := r.db.WithContext(ctx).
		Where("espacio_comun_id = ? AND fecha_reserva BETWEEN ? AND ? AND estado IN ?",
			espacioID, desde, hasta, []string{model.ReservaPendientePago, model.ReservaConfirmada}).
		Find(&reservas).Error
	return reservas, err
}

// ListPendientesSinPago returns the resident's PENDIENTE_PAGO bookings with a
// positive cost and no PENDIENTE or APROBADO Pago.
func (r *reservaRepo) ListPendientesSinPago(ctx context.Context, residenteID uuid.UUID) ([]model.Reserva, error) {
	var reservas []model.Reserva
	sub := r.db.Model(&model.Pago{}).
		Select("referencia_id").
		Where("tipo = ? AND estado_pago IN ?", model.PagoReserva, []string{model.PagoPendiente, model.PagoAprobado})
	err := r.db.WithContext(ctx).
		Where("residente_id = ? AND estado = ? AND monto_pago > 0", residenteID, model.ReservaPendientePago).
		Where("id NOT IN (?)", sub).
		Order("fecha_reserva ASC").
		Find(&reservas).Error
	return reservas, err
}

func (r *reservaRepo) List(ctx context.Context, filter dto.ReservaFilter) ([]model.Reserva, int64, error) {
	var reservas []model.Reserva
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Reserva{})
	if filter.ResidenteID != "" {
		q = q.Where("residente_id = ?", filter.ResidenteID)
	}
	if filter.EspacioComunID != "" {
		q = q.Where("espacio_comun_id = ?", filter.EspacioComunID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		if f, err := time.Parse("2006-01-02", filter.Fecha); err == nil {
			q = q.Where("fecha_reserva = ?", f)
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("fecha_reserva DESC, hora_inicio ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&reservas).Error
	return reservas, total, err
}
