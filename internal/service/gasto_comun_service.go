package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/infra"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GastoComunService covers manual ledger creation, lookups and statement
// delivery. Charges and reversals go through ConciliacionService.
type GastoComunService interface {
	Crear(ctx context.Context, req dto.CrearGastoComunRequest, actorID *uuid.UUID) (*dto.GastoComunResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.GastoComunResponse, error)
	Listar(ctx context.Context, filter dto.GastoComunFilter) (*dto.GastoComunListResponse, error)
	Notificar(ctx context.Context, id uuid.UUID) (*dto.NotificacionResponse, error)
}

type gastoComunService struct {
	gastos      repository.GastoComunRepository
	residentes  repository.ResidenteRepository
	registros   repository.RegistroRepository
	notificador Notificador
	cfg         *config.Config
}

func NewGastoComunService(
	gastos repository.GastoComunRepository,
	residentes repository.ResidenteRepository,
	registros repository.RegistroRepository,
	notificador Notificador,
	cfg *config.Config,
) GastoComunService {
	return &gastoComunService{
		gastos:      gastos,
		residentes:  residentes,
		registros:   registros,
		notificador: notificador,
		cfg:         cfg,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *gastoComunService) Crear(ctx context.Context, req dto.CrearGastoComunRequest, actorID *uuid.UUID) (*dto.GastoComunResponse, error) {
	residenteID, err := parseUUID("residente_id", req.ResidenteID)
	if err != nil {
		return nil, err
	}
	if req.Mes < 1 || req.Mes > 12 {
		return nil, Validation("mes fuera de rango: %d", req.Mes)
	}
	componentes := []struct {
		campo string
		monto decimal.Decimal
	}{
		{"monto_base", req.MontoBase},
		{"cuota_mantencion", req.CuotaMantencion},
		{"servicios", req.Servicios},
		{"multas", req.Multas},
	}
	for _, c := range componentes {
		if c.monto.IsNegative() {
			return nil, Validation("%s no puede ser negativo", c.campo)
		}
	}

	vence := vencimientoPeriodo(s.cfg, req.Anio, req.Mes)
	if req.FechaVencimiento != nil {
		if vence, err = parseFecha(*req.FechaVencimiento); err != nil {
			return nil, err
		}
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var g *model.GastoComun
	err = runTx(ctx, s.gastos.DB(), func(tx *gorm.DB) error {
		residente, err := s.residentes.WithTx(tx).FindByID(ctx, residenteID)
		if err != nil {
			return dbErr(err, "residente %s no encontrado", residenteID)
		}
		g = &model.GastoComun{
			ResidenteID:      residenteID,
			CondominioID:     residente.CondominioID,
			Mes:              req.Mes,
			Anio:             req.Anio,
			MontoBase:        req.MontoBase.Round(2),
			CuotaMantencion:  req.CuotaMantencion.Round(2),
			Servicios:        req.Servicios.Round(2),
			Multas:           req.Multas.Round(2),
			Estado:           model.GastoPendiente,
			FechaEmision:     fechaUTC(time.Now()),
			FechaVencimiento: vence,
		}
		g.RecalcularTotal()

		creado, err := s.gastos.WithTx(tx).CreateIfAbsent(ctx, g)
		if err != nil {
			return err
		}
		if !creado {
			return Conflict("ya existe un gasto común para %02d/%d", req.Mes, req.Anio)
		}

		detalle := fmt.Sprintf("Gasto común %02d/%d creado", g.Mes, g.Anio)
		reg := nuevoEvento(model.EventoCreacion, detalle, &g.MontoTotal, residente.CondominioID, actorID)
		objetoTipo := model.ObjetoGastoComun
		reg.ObjetoTipo, reg.ObjetoID = &objetoTipo, &g.ID
		return s.registros.WithTx(tx).Create(ctx, reg)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("ya existe un gasto común para %02d/%d", req.Mes, req.Anio)
		}
		return nil, dbErr(err, "gasto común no encontrado")
	}

	log.Info().Str("gasto_id", g.ID.String()).Int("mes", g.Mes).Int("anio", g.Anio).
		Str("total", g.MontoTotal.String()).Msg("gasto_comun: creado")
	resp := toGastoComunResponse(g)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *gastoComunService) Obtener(ctx context.Context, id uuid.UUID) (*dto.GastoComunResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	g, err := s.gastos.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "gasto común %s no encontrado", id)
	}
	resp := toGastoComunResponse(g)
	return &resp, nil
}

func (s *gastoComunService) Listar(ctx context.Context, filter dto.GastoComunFilter) (*dto.GastoComunListResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	gastos, total, err := s.gastos.List(ctx, filter)
	if err != nil {
		return nil, dbErr(err, "")
	}
	data := make([]dto.GastoComunResponse, 0, len(gastos))
	for i := range gastos {
		data = append(data, toGastoComunResponse(&gastos[i]))
	}
	return &dto.GastoComunListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Notificar ─────────────────────────────────────────────────────────────────

// Notificar emails the resident a PDF statement of the ledger entry. A resident
// who cannot be notified is reported, not treated as an error.
func (s *gastoComunService) Notificar(ctx context.Context, id uuid.UUID) (*dto.NotificacionResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	g, err := s.gastos.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "gasto común %s no encontrado", id)
	}
	r, err := s.residentes.FindByID(ctx, g.ResidenteID)
	if err != nil {
		return nil, dbErr(err, "residente %s no encontrado", g.ResidenteID)
	}
	if !r.Notificable() {
		return &dto.NotificacionResponse{Enviada: false, Motivo: "residente inactivo, sin correo o sin suscripción"}, nil
	}

	path, err := infra.GenerarEstadoCuentaPDF(g, r, s.cfg.PDFStoragePath)
	if err != nil {
		log.Error().Err(err).Str("gasto_id", g.ID.String()).Msg("gasto_comun: pdf failed")
		return nil, fmt.Errorf("generar estado de cuenta: %w", err)
	}

	enviada := notificar(ctx, s.notificador, Notificacion{
		Destinatarios: []string{r.Email},
		Asunto:        fmt.Sprintf("[Casitas Teto] Gasto común %02d/%d", g.Mes, g.Anio),
		Cuerpo: fmt.Sprintf("Estimado(a) %s %s,\n\nAdjuntamos el estado de cuenta de %02d/%d por $%s, con vencimiento el %s.\n",
			r.Nombre, r.Apellido, g.Mes, g.Anio, g.MontoTotal.StringFixed(0), g.FechaVencimiento.Format("02/01/2006")),
		AdjuntoPath: path,
	})
	if !enviada {
		return &dto.NotificacionResponse{Enviada: false, Destinatario: r.Email, Motivo: "no se pudo encolar el correo"}, nil
	}

	ahora := time.Now().UTC()
	r.UltimoCorreoEnviado = &ahora
	if err := s.residentes.Update(ctx, r); err != nil {
		log.Warn().Err(err).Str("residente_id", r.ID.String()).Msg("gasto_comun: ultimo_correo_enviado not saved")
	}
	return &dto.NotificacionResponse{Enviada: true, Destinatario: r.Email}, nil
}

func toGastoComunResponse(g *model.GastoComun) dto.GastoComunResponse {
	obs := []model.Observacion(g.Observaciones)
	if obs == nil {
		obs = []model.Observacion{}
	}
	return dto.GastoComunResponse{
		ID:               g.ID.String(),
		ResidenteID:      g.ResidenteID.String(),
		CondominioID:     g.CondominioID.String(),
		Mes:              g.Mes,
		Anio:             g.Anio,
		MontoBase:        g.MontoBase,
		CuotaMantencion:  g.CuotaMantencion,
		Servicios:        g.Servicios,
		Multas:           g.Multas,
		MontoTotal:       g.MontoTotal,
		Estado:           g.Estado,
		FechaEmision:     g.FechaEmision.UTC().Format("2006-01-02"),
		FechaVencimiento: g.FechaVencimiento.UTC().Format("2006-01-02"),
		FechaPago:        fechaStr(g.FechaPago),
		Observaciones:    obs,
	}
}
