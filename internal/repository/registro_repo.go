package repository

import (
	"context"

	"casitas/internal/dto"
	"casitas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistroRepository is append-only: there is no Update or Delete.
type RegistroRepository interface {
	Create(ctx context.Context, r *model.Registro) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Registro, error)
	// FindReversion returns the record that reverted originalID.
	FindReversion(ctx context.Context, originalID uuid.UUID) (*model.Registro, error)
	// ListPorObjeto returns the records of one object in creation order.
	ListPorObjeto(ctx context.Context, objetoTipo string, objetoID uuid.UUID) ([]model.Registro, error)
	// ReversionesDe maps original record ids to the id of their reversal.
	ReversionesDe(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	List(ctx context.Context, filter dto.RegistroFilter) ([]model.Registro, int64, error)
	WithTx(tx *gorm.DB) RegistroRepository
	DB() *gorm.DB
}

type registroRepo struct{ db *gorm.DB }

func NewRegistroRepository(db *gorm.DB) RegistroRepository { return &registroRepo{db: db} }

func (r *registroRepo) DB() *gorm.DB { return r.db }

func (r *registroRepo) WithTx(tx *gorm.DB) RegistroRepository {
	if tx == nil {
		return r
	}
	return &registroRepo{db: tx}
}

func (r *registroRepo) Create(ctx context.Context, reg *model.Registro) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registroRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Registro, error) {
	var reg model.Registro
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *registroRepo) FindReversion(ctx context.Context, originalID uuid.UUID) (*model.Registro, error) {
	var reg model.Registro
	err := r.db.WithContext(ctx).Where("registro_original_id = ?", originalID).First(&reg).Error
	return &reg, err
}

func (r *registroRepo) ListPorObjeto(ctx context.Context, objetoTipo string, objetoID uuid.UUID) ([]model.Registro, error) {
	var regs []model.Registro
	err := r.db.WithContext(ctx).
		Where("objeto_tipo = ? AND objeto_id = ?", objetoTipo, objetoID).
		Order("created_at ASC, id ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registroRepo) ReversionesDe(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID                 uuid.UUID
		RegistroOriginalID uuid.UUID
	}
	err := r.db.WithContext(ctx).Model(&model.Registro{}).
		Select("id, registro_original_id").
		Where("registro_original_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RegistroOriginalID] = row.ID
	}
	return out, nil
}

func (r *registroRepo) List(ctx context.Context, filter dto.RegistroFilter) ([]model.Registro, int64, error) {
	var regs []model.Registro
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Registro{})
	if filter.TipoEvento != "" {
		q = q.Where("tipo_evento = ?", filter.TipoEvento)
	}
	if filter.CondominioID != "" {
		q = q.Where("condominio_id = ?", filter.CondominioID)
	}
	if filter.ObjetoTipo != "" {
		q = q.Where("objeto_tipo = ?", filter.ObjetoTipo)
	}
	if filter.ObjetoID != "" {
		q = q.Where("objeto_id = ?", filter.ObjetoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&regs).Error
	return regs, total, err
}
