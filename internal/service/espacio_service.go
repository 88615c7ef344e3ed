package service

import (
	"context"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
)

// EspacioService manages the bookable common spaces of a condominium.
type EspacioService interface {
	Crear(ctx context.Context, req dto.CrearEspacioRequest) (*dto.EspacioResponse, error)
	// Listar returns the active spaces; an empty condominioID lists all.
	Listar(ctx context.Context, condominioID string) ([]dto.EspacioResponse, error)
}

type espacioService struct {
	espacios repository.EspacioComunRepository
	cfg      *config.Config
}

func NewEspacioService(espacios repository.EspacioComunRepository, cfg *config.Config) EspacioService {
	return &espacioService{espacios: espacios, cfg: cfg}
}

func (s *espacioService) Crear(ctx context.Context, req dto.CrearEspacioRequest) (*dto.EspacioResponse, error) {
	condominioID, err := parseUUID("condominio_id", req.CondominioID)
	if err != nil {
		return nil, err
	}
	e := &model.EspacioComun{
		CondominioID: condominioID,
		Nombre:       req.Nombre,
		Tipo:         req.Tipo,
		Capacidad:    req.Capacidad,
		RequierePago: req.RequierePago,
		Activo:       true,
	}
	if req.CostoPorHora != nil {
		if req.CostoPorHora.IsNegative() {
			return nil, Validation("costo_por_hora no puede ser negativo")
		}
		costo := req.CostoPorHora.Round(2)
		e.CostoPorHora = &costo
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()
	if err := s.espacios.Create(ctx, e); err != nil {
		return nil, dbErr(err, "")
	}
	resp := toEspacioResponse(e)
	return &resp, nil
}

func (s *espacioService) Listar(ctx context.Context, condominioID string) ([]dto.EspacioResponse, error) {
	var cond *uuid.UUID
	if condominioID != "" {
		id, err := parseUUID("condominio_id", condominioID)
		if err != nil {
			return nil, err
		}
		cond = &id
	}
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	espacios, err := s.espacios.List(ctx, cond)
	if err != nil {
		return nil, dbErr(err, "")
	}
	out := make([]dto.EspacioResponse, 0, len(espacios))
	for i := range espacios {
		out = append(out, toEspacioResponse(&espacios[i]))
	}
	return out, nil
}

func toEspacioResponse(e *model.EspacioComun) dto.EspacioResponse {
	return dto.EspacioResponse{
		ID:           e.ID.String(),
		CondominioID: e.CondominioID.String(),
		Nombre:       e.Nombre,
		Tipo:         e.Tipo,
		Capacidad:    e.Capacidad,
		CostoPorHora: e.CostoPorHora,
		RequierePago: e.RequierePago,
	}
}
