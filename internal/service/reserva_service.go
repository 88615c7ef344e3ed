package service

import (
	"context"
	"fmt"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReservaService books common spaces. A paid booking is charged to the
// resident's ledger entry of the booking month in the same transaction that
// creates it, and withdrawn in the same transaction that cancels it.
type ReservaService interface {
	Crear(ctx context.Context, req dto.CrearReservaRequest, actorID *uuid.UUID) (*dto.ReservaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarReservaRequest, actorID *uuid.UUID) (*dto.ReservaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error)
	Listar(ctx context.Context, filter dto.ReservaFilter) (*dto.ReservaListResponse, error)
}

type reservaService struct {
	reservas     repository.ReservaRepository
	espacios     repository.EspacioComunRepository
	residentes   repository.ResidenteRepository
	registros    repository.RegistroRepository
	conciliacion ConciliacionService
	notificador  Notificador
	cfg          *config.Config
}

func NewReservaService(
	reservas repository.ReservaRepository,
	espacios repository.EspacioComunRepository,
	residentes repository.ResidenteRepository,
	registros repository.RegistroRepository,
	conciliacion ConciliacionService,
	notificador Notificador,
	cfg *config.Config,
) ReservaService {
	return &reservaService{
		reservas:     reservas,
		espacios:     espacios,
		residentes:   residentes,
		registros:    registros,
		conciliacion: conciliacion,
		notificador:  notificador,
		cfg:          cfg,
	}
}

// ── Crear ────────────────────────────────────────────────────────────────────

func (s *reservaService) Crear(ctx context.Context, req dto.CrearReservaRequest, actorID *uuid.UUID) (*dto.ReservaResponse, error) {
	espacioID, err := parseUUID("espacio_comun_id", req.EspacioComunID)
	if err != nil {
		return nil, err
	}
	residenteID, err := parseUUID("residente_id", req.ResidenteID)
	if err != nil {
		return nil, err
	}
	fecha, err := parseFecha(req.FechaReserva)
	if err != nil {
		return nil, err
	}
	inicio, err := ParseHora(req.HoraInicio)
	if err != nil {
		return nil, err
	}
	fin, err := ParseHora(req.HoraFin)
	if err != nil {
		return nil, err
	}
	if duracionMinutos(inicio, fin) == 0 {
		return nil, Validation("la hora de término debe ser distinta de la de inicio")
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var res *model.Reserva
	var residente *model.Residente
	var espacio *model.EspacioComun
	err = runTx(ctx, s.reservas.DB(), func(tx *gorm.DB) error {
		espacio, err = s.espacios.WithTx(tx).FindByIDForUpdate(ctx, espacioID)
		if err != nil {
			return dbErr(err, "espacio común %s no encontrado", espacioID)
		}
		if !espacio.Activo {
			return Conflict("el espacio %q no está disponible", espacio.Nombre)
		}
		residente, err = s.residentes.WithTx(tx).FindByID(ctx, residenteID)
		if err != nil {
			return dbErr(err, "residente %s no encontrado", residenteID)
		}
		if !residente.Activo {
			return Conflict("el residente %s no está activo", residenteID)
		}
		if residente.CondominioID != espacio.CondominioID {
			return Validation("el espacio no pertenece al condominio del residente")
		}

		reservas := s.reservas.WithTx(tx)
		// bookings past midnight reach into the next day
		activas, err := reservas.ListActivasEntre(ctx, espacioID, fecha.AddDate(0, 0, -1), fecha.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		desde, hasta := intervaloMinutos(inicio, fin)
		for _, a := range activas {
			ai, errI := ParseHora(a.HoraInicio)
			af, errF := ParseHora(a.HoraFin)
			if errI != nil || errF != nil {
				continue
			}
			aDesde, aHasta := intervaloMinutos(ai, af)
			desfase := diasEntre(fecha, a.FechaReserva) * minutosPorDia
			if seSolapan(desde, hasta, aDesde+desfase, aHasta+desfase) {
				return Conflict("el espacio ya está reservado de %s a %s", a.HoraInicio, a.HoraFin)
			}
		}

		var tarifa *decimal.Decimal
		if espacio.RequierePago {
			tarifa = espacio.CostoPorHora
		}
		costo := CalcularCostoReserva(inicio, fin, tarifa)

		res = &model.Reserva{
			EspacioComunID: espacioID,
			ResidenteID:    residenteID,
			FechaReserva:   fecha,
			HoraInicio:     inicio.Format("15:04"),
			HoraFin:        fin.Format("15:04"),
			Estado:         model.ReservaConfirmada,
			MontoPago:      costo,
			Observaciones:  req.Observaciones,
		}
		if costo.IsPositive() {
			res.Estado = model.ReservaPendientePago
		}
		if err := reservas.Create(ctx, res); err != nil {
			return err
		}

		if costo.IsPositive() {
			g, err := s.conciliacion.ObtenerOCrearTx(ctx, tx, residenteID, fecha, residente.CondominioID)
			if err != nil {
				return err
			}
			desc := fmt.Sprintf("Reserva %s %s %s-%s", espacio.Nombre, req.FechaReserva, res.HoraInicio, res.HoraFin)
			if _, err := s.conciliacion.AplicarCargoReservaTx(ctx, tx, g.ID, costo, desc, &res.ID); err != nil {
				return err
			}
			res.GastoComunID = &g.ID
			if err := reservas.Update(ctx, res); err != nil {
				return err
			}
		}

		detalle := fmt.Sprintf("Reserva de %s el %s de %s a %s", espacio.Nombre, req.FechaReserva, res.HoraInicio, res.HoraFin)
		return s.registros.WithTx(tx).Create(ctx, nuevoEvento(model.EventoReserva, detalle, &res.MontoPago, residente.CondominioID, actorID))
	})
	if err != nil {
		return nil, dbErr(err, "reserva no encontrada")
	}

	log.Info().Str("reserva_id", res.ID.String()).Str("espacio", espacio.Nombre).
		Str("monto", res.MontoPago.String()).Msg("reserva: creada")

	if residente.Notificable() {
		notificar(ctx, s.notificador, Notificacion{
			Destinatarios: []string{residente.Email},
			Asunto:        "[Casitas Teto] Reserva registrada",
			Cuerpo: fmt.Sprintf("Su reserva de %s para el %s entre %s y %s fue registrada. Monto: $%s.",
				espacio.Nombre, req.FechaReserva, res.HoraInicio, res.HoraFin, res.MontoPago.StringFixed(0)),
		})
	}
	resp := toReservaResponse(res)
	return &resp, nil
}

// ── Cancelar / Eliminar ──────────────────────────────────────────────────────

func (s *reservaService) Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarReservaRequest, actorID *uuid.UUID) (*dto.ReservaResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var res *model.Reserva
	err := runTx(ctx, s.reservas.DB(), func(tx *gorm.DB) error {
		var err error
		res, err = s.reservas.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return dbErr(err, "reserva %s no encontrada", id)
		}
		if !res.Activa() {
			return Conflict("la reserva ya está %s", res.Estado)
		}
		if err := s.retirarCargo(ctx, tx, res, "Cancelación de reserva"); err != nil {
			return err
		}
		res.Estado = model.ReservaCancelada
		if req.Motivo != nil {
			res.Observaciones = req.Motivo
		}
		if err := s.reservas.WithTx(tx).Update(ctx, res); err != nil {
			return err
		}
		return s.registrarBaja(ctx, tx, res, "Cancelación", actorID)
	})
	if err != nil {
		return nil, dbErr(err, "reserva %s no encontrada", id)
	}
	log.Info().Str("reserva_id", id.String()).Msg("reserva: cancelada")
	resp := toReservaResponse(res)
	return &resp, nil
}

func (s *reservaService) Eliminar(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	err := runTx(ctx, s.reservas.DB(), func(tx *gorm.DB) error {
		reservas := s.reservas.WithTx(tx)
		res, err := reservas.FindByIDForUpdate(ctx, id)
		if err != nil {
			return dbErr(err, "reserva %s no encontrada", id)
		}
		if res.Activa() {
			if err := s.retirarCargo(ctx, tx, res, "Eliminación de reserva"); err != nil {
				return err
			}
		}
		if err := reservas.Delete(ctx, id); err != nil {
			return err
		}
		return s.registrarBaja(ctx, tx, res, "Eliminación", actorID)
	})
	if err != nil {
		return dbErr(err, "reserva %s no encontrada", id)
	}
	log.Info().Str("reserva_id", id.String()).Msg("reserva: eliminada")
	return nil
}

// retirarCargo withdraws the booking's ledger charge. A PAGADO ledger entry
// makes the whole operation fail with Conflict.
func (s *reservaService) retirarCargo(ctx context.Context, tx *gorm.DB, res *model.Reserva, motivo string) error {
	if res.GastoComunID == nil || !res.MontoPago.IsPositive() {
		return nil
	}
	desc := fmt.Sprintf("%s %s %s-%s", motivo, res.FechaReserva.Format("2006-01-02"), res.HoraInicio, res.HoraFin)
	if _, err := s.conciliacion.RevertirCargoReservaTx(ctx, tx, *res.GastoComunID, res.MontoPago, desc, &res.ID); err != nil {
		return err
	}
	res.GastoComunID = nil
	return nil
}

func (s *reservaService) registrarBaja(ctx context.Context, tx *gorm.DB, res *model.Reserva, accion string, actorID *uuid.UUID) error {
	residente, err := s.residentes.WithTx(tx).FindByID(ctx, res.ResidenteID)
	if err != nil {
		return dbErr(err, "residente %s no encontrado", res.ResidenteID)
	}
	detalle := fmt.Sprintf("%s de reserva %s del %s", accion, res.ID, res.FechaReserva.Format("2006-01-02"))
	monto := res.MontoPago.Neg()
	return s.registros.WithTx(tx).Create(ctx, nuevoEvento(model.EventoReserva, detalle, &monto, residente.CondominioID, actorID))
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *reservaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	res, err := s.reservas.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "reserva %s no encontrada", id)
	}
	espacio, err := s.espacios.FindByID(ctx, res.EspacioComunID)
	if err != nil {
		return nil, dbErr(err, "espacio común %s no encontrado", res.EspacioComunID)
	}
	resp := toReservaResponse(res)
	resp.CondominioID = espacio.CondominioID.String()
	return &resp, nil
}

func (s *reservaService) Listar(ctx context.Context, filter dto.ReservaFilter) (*dto.ReservaListResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	reservas, total, err := s.reservas.List(ctx, filter)
	if err != nil {
		return nil, dbErr(err, "")
	}
	data := make([]dto.ReservaResponse, 0, len(reservas))
	for i := range reservas {
		data = append(data, toReservaResponse(&reservas[i]))
	}
	return &dto.ReservaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func toReservaResponse(r *model.Reserva) dto.ReservaResponse {
	return dto.ReservaResponse{
		ID:             r.ID.String(),
		EspacioComunID: r.EspacioComunID.String(),
		ResidenteID:    r.ResidenteID.String(),
		FechaReserva:   r.FechaReserva.UTC().Format("2006-01-02"),
		HoraInicio:     r.HoraInicio,
		HoraFin:        r.HoraFin,
		Estado:         r.Estado,
		MontoPago:      r.MontoPago,
		PagoID:         uuidStr(r.PagoID),
		GastoComunID:   uuidStr(r.GastoComunID),
		Observaciones:  r.Observaciones,
	}
}
