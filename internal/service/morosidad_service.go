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

// loteTimeoutFactor scales the per-operation DB timeout for the arrears batch,
// the one operation that touches many rows.
const loteTimeoutFactor = 6

// MorosidadService runs the arrears batch: PENDIENTE entries past due become
// VENCIDO and their resident gets one late-payment fine per period.
type MorosidadService interface {
	ProcesarAtrasos(ctx context.Context, hoy time.Time) (*dto.ProcesarAtrasosResponse, error)
}

type morosidadService struct {
	gastos      repository.GastoComunRepository
	multas      repository.MultaRepository
	residentes  repository.ResidenteRepository
	registros   repository.RegistroRepository
	notificador Notificador
	cfg         *config.Config
}

func NewMorosidadService(
	gastos repository.GastoComunRepository,
	multas repository.MultaRepository,
	residentes repository.ResidenteRepository,
	registros repository.RegistroRepository,
	notificador Notificador,
	cfg *config.Config,
) MorosidadService {
	return &morosidadService{
		gastos:      gastos,
		multas:      multas,
		residentes:  residentes,
		registros:   registros,
		notificador: notificador,
		cfg:         cfg,
	}
}

// ProcesarAtrasos is one transaction: an entry is never left VENCIDO without
// its fine. The (residente, tipo, clave_dedup) unique index makes re-runs and
// concurrent runs create each period's fine at most once.
func (s *morosidadService) ProcesarAtrasos(ctx context.Context, hoy time.Time) (*dto.ProcesarAtrasosResponse, error) {
	hoy = fechaUTC(hoy)
	txCtx, cancel := conTimeout(ctx, s.cfg.DBTimeout()*loteTimeoutFactor)
	defer cancel()

	monto := s.cfg.MontoMultaAtraso()
	res := &dto.ProcesarAtrasosResponse{Fecha: hoy.Format("2006-01-02")}
	var creadas []model.Multa

	err := runTx(txCtx, s.gastos.DB(), func(tx *gorm.DB) error {
		gastos := s.gastos.WithTx(tx)
		multas := s.multas.WithTx(tx)
		registros := s.registros.WithTx(tx)

		vencidos, err := gastos.ListVencidosPendientes(txCtx, hoy)
		if err != nil {
			return err
		}
		res.Revisados = len(vencidos)

		for i := range vencidos {
			g := &vencidos[i]
			g.Estado = model.GastoVencido
			if err := gastos.Update(txCtx, g); err != nil {
				return err
			}

			clave := model.ClaveRetraso(g.ResidenteID, g.Anio, g.Mes)
			m := &model.Multa{
				ResidenteID:  g.ResidenteID,
				CondominioID: g.CondominioID,
				Tipo:         model.MultaRetrasoPago,
				Descripcion:  fmt.Sprintf("Atraso en pago de gasto común %02d/%d", g.Mes, g.Anio),
				Monto:        monto,
				Estado:       model.MultaPendiente,
				FechaEmision: hoy,
				ClaveDedup:   &clave,
			}
			creada, err := multas.CreateDedup(txCtx, m)
			if err != nil {
				return err
			}
			if !creada {
				log.Debug().Str("clave", clave).Msg("morosidad: multa ya emitida para el periodo")
				continue
			}
			creadas = append(creadas, *m)

			reg := nuevoEvento(model.EventoMulta, m.Descripcion, &m.Monto, g.CondominioID, nil)
			objetoTipo := model.ObjetoMulta
			reg.ObjetoTipo, reg.ObjetoID = &objetoTipo, &m.ID
			if err := registros.Create(txCtx, reg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("fecha", res.Fecha).Msg("morosidad: lote abortado")
		return nil, dbErr(err, "")
	}
	res.MultasCreadas = len(creadas)

	log.Info().Str("fecha", res.Fecha).Int("revisados", res.Revisados).Int("multas_creadas", res.MultasCreadas).
		Msg("morosidad: lote completado")

	s.notificarMultas(ctx, creadas)
	return res, nil
}

func (s *morosidadService) notificarMultas(ctx context.Context, multas []model.Multa) {
	if s.notificador == nil || len(multas) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(multas))
	for _, m := range multas {
		ids = append(ids, m.ResidenteID)
	}
	residentes, err := s.residentes.FindByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("morosidad: no se pudo cargar residentes para notificar")
		return
	}
	porID := make(map[uuid.UUID]model.Residente, len(residentes))
	for _, r := range residentes {
		porID[r.ID] = r
	}

	for _, m := range multas {
		r, ok := porID[m.ResidenteID]
		if !ok || !r.Notificable() {
			continue
		}
		notificar(ctx, s.notificador, Notificacion{
			Destinatarios: []string{r.Email},
			Asunto:        "[Casitas Teto] Multa por atraso en gasto común",
			Cuerpo: fmt.Sprintf(
				"Estimado(a) %s %s,\n\nSe ha emitido una multa de $%s por: %s.\n\nVivienda: %s\n",
				r.Nombre, r.Apellido, m.Monto.StringFixed(0), m.Descripcion, r.ViviendaNumero),
		})
	}
}
