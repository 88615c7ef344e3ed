package service

import (
	"context"
	"fmt"
	"time"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MultaService issues manual fines. Late-payment fines come from
// MorosidadService; amount changes go through AjusteService.
type MultaService interface {
	Crear(ctx context.Context, req dto.CrearMultaRequest, actorID *uuid.UUID) (*dto.MultaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.MultaResponse, error)
	Listar(ctx context.Context, filter dto.MultaFilter) (*dto.MultaListResponse, error)
}

type multaService struct {
	multas       repository.MultaRepository
	residentes   repository.ResidenteRepository
	registros    repository.RegistroRepository
	conciliacion ConciliacionService
	notificador  Notificador
	cfg          *config.Config
}

func NewMultaService(
	multas repository.MultaRepository,
	residentes repository.ResidenteRepository,
	registros repository.RegistroRepository,
	conciliacion ConciliacionService,
	notificador Notificador,
	cfg *config.Config,
) MultaService {
	return &multaService{
		multas:       multas,
		residentes:   residentes,
		registros:    registros,
		conciliacion: conciliacion,
		notificador:  notificador,
		cfg:          cfg,
	}
}

func (s *multaService) Crear(ctx context.Context, req dto.CrearMultaRequest, actorID *uuid.UUID) (*dto.MultaResponse, error) {
	residenteID, err := parseUUID("residente_id", req.ResidenteID)
	if err != nil {
		return nil, err
	}
	monto := req.Monto.Round(2)
	if !monto.IsPositive() {
		return nil, Validation("el monto de la multa debe ser mayor a cero")
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	hoy := fechaUTC(time.Now())
	var m *model.Multa
	var residente *model.Residente
	err = runTx(ctx, s.multas.DB(), func(tx *gorm.DB) error {
		residente, err = s.residentes.WithTx(tx).FindByID(ctx, residenteID)
		if err != nil {
			return dbErr(err, "residente %s no encontrado", residenteID)
		}
		m = &model.Multa{
			ResidenteID:  residenteID,
			CondominioID: residente.CondominioID,
			Tipo:         req.Tipo,
			Descripcion:  req.Descripcion,
			Monto:        monto,
			Estado:       model.MultaPendiente,
			FechaEmision: hoy,
			CreadoPor:    actorID,
		}
		multas := s.multas.WithTx(tx)
		if err := multas.Create(ctx, m); err != nil {
			return err
		}

		if req.CargarEnGastoComun {
			g, err := s.conciliacion.ObtenerOCrearTx(ctx, tx, residenteID, hoy, residente.CondominioID)
			if err != nil {
				return err
			}
			if _, err := s.conciliacion.AplicarCargoMultaTx(ctx, tx, g.ID, monto, "Multa: "+m.Descripcion, &m.ID); err != nil {
				return err
			}
			m.GastoComunID = &g.ID
			if err := multas.Update(ctx, m); err != nil {
				return err
			}
		}

		reg := nuevoEvento(model.EventoMulta, m.Descripcion, &m.Monto, residente.CondominioID, actorID)
		objetoTipo := model.ObjetoMulta
		reg.ObjetoTipo, reg.ObjetoID = &objetoTipo, &m.ID
		return s.registros.WithTx(tx).Create(ctx, reg)
	})
	if err != nil {
		return nil, dbErr(err, "multa no encontrada")
	}

	log.Info().Str("multa_id", m.ID.String()).Str("tipo", m.Tipo).Str("monto", m.Monto.String()).
		Bool("en_gasto_comun", m.GastoComunID != nil).Msg("multa: emitida")

	if residente.Notificable() {
		notificar(ctx, s.notificador, Notificacion{
			Destinatarios: []string{residente.Email},
			Asunto:        "[Casitas Teto] Nueva multa",
			Cuerpo: fmt.Sprintf("Estimado(a) %s %s,\n\nSe ha emitido una multa de $%s por: %s.\n",
				residente.Nombre, residente.Apellido, m.Monto.StringFixed(0), m.Descripcion),
		})
	}
	resp := toMultaResponse(m)
	return &resp, nil
}

func (s *multaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.MultaResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	m, err := s.multas.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "multa %s no encontrada", id)
	}
	resp := toMultaResponse(m)
	return &resp, nil
}

func (s *multaService) Listar(ctx context.Context, filter dto.MultaFilter) (*dto.MultaListResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	multas, total, err := s.multas.List(ctx, filter)
	if err != nil {
		return nil, dbErr(err, "")
	}
	data := make([]dto.MultaResponse, 0, len(multas))
	for i := range multas {
		data = append(data, toMultaResponse(&multas[i]))
	}
	return &dto.MultaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func toMultaResponse(m *model.Multa) dto.MultaResponse {
	return dto.MultaResponse{
		ID:                m.ID.String(),
		ResidenteID:       m.ResidenteID.String(),
		CondominioID:      m.CondominioID.String(),
		Tipo:              m.Tipo,
		Descripcion:       m.Descripcion,
		Monto:             m.Monto,
		Estado:            m.Estado,
		FechaEmision:      m.FechaEmision.UTC().Format("2006-01-02"),
		FechaPago:         fechaStr(m.FechaPago),
		MotivoCondonacion: m.MotivoCondonacion,
		CreadoPor:         uuidStr(m.CreadoPor),
		GastoComunID:      uuidStr(m.GastoComunID),
	}
}
