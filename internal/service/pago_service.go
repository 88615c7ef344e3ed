package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gateway status that, with response code 0, approves an order.
const EstadoPasarelaAutorizado = "AUTHORIZED"

// PagoService records payments against a ledger entry, a fine or a booking and
// applies gateway confirmations to them.
type PagoService interface {
	Crear(ctx context.Context, req dto.CrearPagoRequest, actorID *uuid.UUID) (*dto.PagoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PagoResponse, error)
	Listar(ctx context.Context, filter dto.PagoFilter) (*dto.PagoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPagoRequest) (*dto.PagoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// SincronizarPendientes creates the missing PENDIENTE payments for the
	// resident's unpaid fines and bookings and returns every pending one.
	SincronizarPendientes(ctx context.Context, residenteID uuid.UUID) (*dto.SincronizarPendientesResponse, error)
	PrepararOrden(ctx context.Context, req dto.PrepararOrdenRequest) (*dto.OrdenPagoResponse, error)
	ConfirmarPasarela(ctx context.Context, req dto.ConfirmacionPasarelaRequest) (*dto.ConfirmacionPasarelaResponse, error)
}

type pagoService struct {
	pagos        repository.PagoRepository
	gastos       repository.GastoComunRepository
	multas       repository.MultaRepository
	reservas     repository.ReservaRepository
	residentes   repository.ResidenteRepository
	registros    repository.RegistroRepository
	conciliacion ConciliacionService
	notificador  Notificador
	cfg          *config.Config
}

func NewPagoService(
	pagos repository.PagoRepository,
	gastos repository.GastoComunRepository,
	multas repository.MultaRepository,
	reservas repository.ReservaRepository,
	residentes repository.ResidenteRepository,
	registros repository.RegistroRepository,
	conciliacion ConciliacionService,
	notificador Notificador,
	cfg *config.Config,
) PagoService {
	return &pagoService{
		pagos:        pagos,
		gastos:       gastos,
		multas:       multas,
		reservas:     reservas,
		residentes:   residentes,
		registros:    registros,
		conciliacion: conciliacion,
		notificador:  notificador,
		cfg:          cfg,
	}
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

func (s *pagoService) Crear(ctx context.Context, req dto.CrearPagoRequest, actorID *uuid.UUID) (*dto.PagoResponse, error) {
	residenteID, err := parseUUID("residente_id", req.ResidenteID)
	if err != nil {
		return nil, err
	}
	refID, err := parseUUID("referencia_id", req.ReferenciaID)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, Validation("el monto del pago debe ser mayor a cero")
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var p *model.Pago
	err = runTx(ctx, s.pagos.DB(), func(tx *gorm.DB) error {
		residente, err := s.residentes.WithTx(tx).FindByID(ctx, residenteID)
		if err != nil {
			return dbErr(err, "residente %s no encontrado", residenteID)
		}
		if err := s.verificarReferencia(ctx, tx, req.Tipo, refID, residenteID, req.Monto.Round(2)); err != nil {
			return err
		}
		p = &model.Pago{
			CondominioID:      residente.CondominioID,
			ResidenteID:       residenteID,
			Tipo:              req.Tipo,
			ReferenciaID:      refID,
			Monto:             req.Monto.Round(2),
			MetodoPago:        req.MetodoPago,
			EstadoPago:        model.PagoPendiente,
			NumeroTransaccion: req.NumeroTransaccion,
			ComprobanteURL:    req.ComprobanteURL,
			RegistradoPor:     actorID,
		}
		if err := s.pagos.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}
		detalle := fmt.Sprintf("Pago %s registrado para %s %s", p.MetodoPago, strings.ToLower(p.Tipo), refID)
		return s.registros.WithTx(tx).Create(ctx, nuevoEvento(model.EventoPago, detalle, &p.Monto, residente.CondominioID, actorID))
	})
	if err != nil {
		return nil, dbErr(err, "pago no encontrado")
	}
	resp := toPagoResponse(p)
	return &resp, nil
}

// verificarReferencia checks that the paid object is the resident's, is still
// open and that monto does not exceed what is left to pay on it.
func (s *pagoService) verificarReferencia(ctx context.Context, tx *gorm.DB, tipo string, refID, residenteID uuid.UUID, monto decimal.Decimal) error {
	d, err := s.deudaDe(ctx, tx, tipo, refID, false)
	if err != nil {
		return err
	}
	if d.residenteID != residenteID {
		return Validation("la referencia %s no pertenece al residente", refID)
	}
	if !d.abierta {
		return Conflict("%s %s ya no admite pagos", strings.ToLower(tipo), refID)
	}
	saldo, err := s.saldoPendiente(ctx, tx, tipo, refID, d.monto)
	if err != nil {
		return err
	}
	if monto.GreaterThan(saldo) {
		return Validation("el monto %s excede el saldo pendiente de %s", monto.StringFixed(2), saldo.StringFixed(2))
	}
	return nil
}

// deuda is what a payable object owes, as of now.
type deuda struct {
	residenteID uuid.UUID
	monto       decimal.Decimal
	abierta     bool
}

// deudaDe reads the object behind a payment; bloquear takes its row lock so
// concurrent confirmations settle it one at a time.
func (s *pagoService) deudaDe(ctx context.Context, tx *gorm.DB, tipo string, refID uuid.UUID, bloquear bool) (deuda, error) {
	switch tipo {
	case model.PagoGastoComun:
		gastos := s.gastos.WithTx(tx)
		find := gastos.FindByID
		if bloquear {
			find = gastos.FindByIDForUpdate
		}
		g, err := find(ctx, refID)
		if err != nil {
			return deuda{}, dbErr(err, "gasto común %s no encontrado", refID)
		}
		return deuda{g.ResidenteID, g.MontoTotal, g.Estado != model.GastoPagado}, nil
	case model.PagoMulta:
		multas := s.multas.WithTx(tx)
		find := multas.FindByID
		if bloquear {
			find = multas.FindByIDForUpdate
		}
		m, err := find(ctx, refID)
		if err != nil {
			return deuda{}, dbErr(err, "multa %s no encontrada", refID)
		}
		return deuda{m.ResidenteID, m.Monto, m.Estado == model.MultaPendiente}, nil
	case model.PagoReserva:
		reservas := s.reservas.WithTx(tx)
		find := reservas.FindByID
		if bloquear {
			find = reservas.FindByIDForUpdate
		}
		r, err := find(ctx, refID)
		if err != nil {
			return deuda{}, dbErr(err, "reserva %s no encontrada", refID)
		}
		return deuda{r.ResidenteID, r.MontoPago, r.Estado == model.ReservaPendientePago}, nil
	}
	return deuda{}, Validation("tipo de pago %q no soportado", tipo)
}

// saldoPendiente is monto minus the payments already approved for the object.
func (s *pagoService) saldoPendiente(ctx context.Context, tx *gorm.DB, tipo string, refID uuid.UUID, monto decimal.Decimal) (decimal.Decimal, error) {
	pagado, err := s.pagos.WithTx(tx).SumaAprobada(ctx, tipo, refID)
	if err != nil {
		return decimal.Zero, err
	}
	return monto.Sub(pagado), nil
}

func (s *pagoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PagoResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	p, err := s.pagos.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "pago %s no encontrado", id)
	}
	resp := toPagoResponse(p)
	return &resp, nil
}

func (s *pagoService) Listar(ctx context.Context, filter dto.PagoFilter) (*dto.PagoListResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	pagos, total, err := s.pagos.List(ctx, filter)
	if err != nil {
		return nil, dbErr(err, "")
	}
	data := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		data = append(data, toPagoResponse(&pagos[i]))
	}
	return &dto.PagoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *pagoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPagoRequest) (*dto.PagoResponse, error) {
	if req.Monto != nil && !req.Monto.IsPositive() {
		return nil, Validation("el monto del pago debe ser mayor a cero")
	}
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	p, err := s.pagos.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "pago %s no encontrado", id)
	}
	if p.EstadoPago != model.PagoPendiente {
		return nil, Conflict("solo se pueden actualizar pagos en estado PENDIENTE")
	}
	if req.Monto != nil {
		p.Monto = req.Monto.Round(2)
		if err := s.verificarReferencia(ctx, nil, p.Tipo, p.ReferenciaID, p.ResidenteID, p.Monto); err != nil {
			return nil, dbErr(err, "pago %s no encontrado", id)
		}
	}
	if req.MetodoPago != nil {
		p.MetodoPago = *req.MetodoPago
	}
	if req.NumeroTransaccion != nil {
		p.NumeroTransaccion = req.NumeroTransaccion
	}
	if req.ComprobanteURL != nil {
		p.ComprobanteURL = req.ComprobanteURL
	}
	if err := s.pagos.Update(ctx, p); err != nil {
		return nil, dbErr(err, "")
	}
	resp := toPagoResponse(p)
	return &resp, nil
}

func (s *pagoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	p, err := s.pagos.FindByID(ctx, id)
	if err != nil {
		return dbErr(err, "pago %s no encontrado", id)
	}
	if p.EstadoPago == model.PagoAprobado {
		return Conflict("no se puede eliminar un pago aprobado")
	}
	return dbErr(s.pagos.Delete(ctx, id), "")
}

// ── Pendientes ───────────────────────────────────────────────────────────────

func (s *pagoService) SincronizarPendientes(ctx context.Context, residenteID uuid.UUID) (*dto.SincronizarPendientesResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	out := &dto.SincronizarPendientesResponse{}
	err := runTx(ctx, s.pagos.DB(), func(tx *gorm.DB) error {
		residente, err := s.residentes.WithTx(tx).FindByID(ctx, residenteID)
		if err != nil {
			return dbErr(err, "residente %s no encontrado", residenteID)
		}
		pagos := s.pagos.WithTx(tx)
		nuevo := func(tipo string, ref uuid.UUID, monto decimal.Decimal) error {
			p := &model.Pago{
				CondominioID: residente.CondominioID,
				ResidenteID:  residenteID,
				Tipo:         tipo,
				ReferenciaID: ref,
				Monto:        monto,
				MetodoPago:   model.MetodoWebpay,
				EstadoPago:   model.PagoPendiente,
			}
			if err := pagos.Create(ctx, p); err != nil {
				return err
			}
			out.Creados++
			return nil
		}

		multas, err := s.multas.WithTx(tx).ListPendientesSinPago(ctx, residenteID)
		if err != nil {
			return err
		}
		for _, m := range multas {
			if err := nuevo(model.PagoMulta, m.ID, m.Monto); err != nil {
				return err
			}
		}
		reservas, err := s.reservas.WithTx(tx).ListPendientesSinPago(ctx, residenteID)
		if err != nil {
			return err
		}
		for _, r := range reservas {
			if err := nuevo(model.PagoReserva, r.ID, r.MontoPago); err != nil {
				return err
			}
		}

		pendientes, err := pagos.ListPendientes(ctx, residenteID)
		if err != nil {
			return err
		}
		out.Pendiente = make([]dto.PagoResponse, 0, len(pendientes))
		for i := range pendientes {
			out.Pendiente = append(out.Pendiente, toPagoResponse(&pendientes[i]))
		}
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "residente %s no encontrado", residenteID)
	}
	if out.Creados > 0 {
		log.Info().Str("residente_id", residenteID.String()).Int("creados", out.Creados).
			Msg("pagos: pendientes sincronizados")
	}
	return out, nil
}

// ── Pasarela ─────────────────────────────────────────────────────────────────

func (s *pagoService) PrepararOrden(ctx context.Context, req dto.PrepararOrdenRequest) (*dto.OrdenPagoResponse, error) {
	residenteID, err := parseUUID("residente_id", req.ResidenteID)
	if err != nil {
		return nil, err
	}
	if len(req.PagoIDs) == 0 {
		return nil, Validation("la orden debe incluir al menos un pago")
	}
	ids := make([]uuid.UUID, 0, len(req.PagoIDs))
	for _, raw := range req.PagoIDs {
		id, err := parseUUID("pago_id", raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	out := &dto.OrdenPagoResponse{
		// 25 chars, under the gateway's 26 limit; the suffix separates orders
		// prepared within the same second
		BuyOrder: fmt.Sprintf("ORD%s%d%s", residenteID.String()[:8], time.Now().Unix(), uuid.NewString()[:4]),
		Monto:    decimal.Zero,
	}
	err = runTx(ctx, s.pagos.DB(), func(tx *gorm.DB) error {
		repo := s.pagos.WithTx(tx)
		pagos, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(pagos) != len(ids) {
			return NotFound("uno o más pagos no existen")
		}
		for i := range pagos {
			p := &pagos[i]
			if p.ResidenteID != residenteID {
				return Validation("el pago %s no pertenece al residente", p.ID)
			}
			if p.EstadoPago != model.PagoPendiente {
				return Conflict("el pago %s está %s", p.ID, p.EstadoPago)
			}
			p.NumeroTransaccion = &out.BuyOrder
			p.MetodoPago = model.MetodoWebpay
			if err := repo.Update(ctx, p); err != nil {
				return err
			}
			out.Monto = out.Monto.Add(p.Monto)
			out.PagoIDs = append(out.PagoIDs, p.ID.String())
		}
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "pago no encontrado")
	}
	log.Info().Str("buy_order", out.BuyOrder).Str("monto", out.Monto.String()).Int("pagos", len(ids)).
		Msg("pagos: orden preparada")
	return out, nil
}

// ConfirmarPasarela applies a gateway result to every payment of a buy order.
// Payments already APROBADO are skipped, so a replayed webhook changes nothing.
func (s *pagoService) ConfirmarPasarela(ctx context.Context, req dto.ConfirmacionPasarelaRequest) (*dto.ConfirmacionPasarelaResponse, error) {
	aprobado := req.Status == EstadoPasarelaAutorizado && (req.ResponseCode == nil || *req.ResponseCode == 0)
	out := &dto.ConfirmacionPasarelaResponse{BuyOrder: req.BuyOrder, Aprobado: aprobado}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var residenteIDs []uuid.UUID
	err := runTx(ctx, s.pagos.DB(), func(tx *gorm.DB) error {
		repo := s.pagos.WithTx(tx)
		pagos, err := repo.FindByNumeroTransaccion(ctx, req.BuyOrder)
		if err != nil {
			return err
		}
		if len(pagos) == 0 {
			return NotFound("orden %s no encontrada", req.BuyOrder)
		}

		total := decimal.Zero
		for _, p := range pagos {
			total = total.Add(p.Monto)
		}
		if aprobado && !total.Equal(req.Amount.Round(2)) {
			return Validation("el monto confirmado %s no coincide con la orden (%s)",
				req.Amount.StringFixed(2), total.StringFixed(2))
		}

		ahora := time.Now().UTC()
		for i := range pagos {
			p := &pagos[i]
			if p.EstadoPago != model.PagoPendiente {
				continue
			}
			if !aprobado {
				p.EstadoPago = model.PagoRechazado
			} else {
				p.EstadoPago = model.PagoAprobado
				p.FechaPago = ahora
				if err := s.saldar(ctx, tx, p, ahora); err != nil {
					return err
				}
			}
			if err := repo.Update(ctx, p); err != nil {
				return err
			}
			detalle := fmt.Sprintf("Pago %s %s (orden %s)", strings.ToLower(p.Tipo), strings.ToLower(p.EstadoPago), req.BuyOrder)
			if err := s.registros.WithTx(tx).Create(ctx, nuevoEvento(model.EventoPago, detalle, &p.Monto, p.CondominioID, nil)); err != nil {
				return err
			}
			out.PagosActualizados++
			residenteIDs = append(residenteIDs, p.ResidenteID)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("buy_order", req.BuyOrder).Msg("pagos: confirmación fallida")
		return nil, dbErr(err, "orden %s no encontrada", req.BuyOrder)
	}

	log.Info().Str("buy_order", req.BuyOrder).Bool("aprobado", aprobado).Int("actualizados", out.PagosActualizados).
		Msg("pagos: confirmación procesada")
	if aprobado && out.PagosActualizados > 0 {
		s.notificarConfirmacion(ctx, residenteIDs, req)
	}
	return out, nil
}

// saldar marks the paid object as settled once the approved payments for it,
// p included, cover what it owes. A partial payment leaves it open.
func (s *pagoService) saldar(ctx context.Context, tx *gorm.DB, p *model.Pago, ahora time.Time) error {
	d, err := s.deudaDe(ctx, tx, p.Tipo, p.ReferenciaID, true)
	if err != nil {
		return err
	}
	if !d.abierta {
		return nil
	}
	saldo, err := s.saldoPendiente(ctx, tx, p.Tipo, p.ReferenciaID, d.monto)
	if err != nil {
		return err
	}
	if p.Monto.LessThan(saldo) {
		log.Info().Str("pago_id", p.ID.String()).Str("referencia", p.ReferenciaID.String()).
			Str("abonado", p.Monto.StringFixed(2)).Str("saldo", saldo.Sub(p.Monto).StringFixed(2)).
			Msg("pagos: abono parcial, la deuda sigue abierta")
		return nil
	}

	switch p.Tipo {
	case model.PagoMulta:
		multas := s.multas.WithTx(tx)
		m, err := multas.FindByIDForUpdate(ctx, p.ReferenciaID)
		if err != nil {
			return dbErr(err, "multa %s no encontrada", p.ReferenciaID)
		}
		if m.Estado != model.MultaPendiente {
			return nil
		}
		if m.GastoComunID != nil {
			if err := s.retirarDeGasto(ctx, tx, *m.GastoComunID, compMultas, m.Monto, "Multa pagada directamente", m.ID); err != nil {
				return err
			}
			m.GastoComunID = nil
		}
		m.Estado = model.MultaPagada
		m.FechaPago = &ahora
		return multas.Update(ctx, m)

	case model.PagoReserva:
		reservas := s.reservas.WithTx(tx)
		r, err := reservas.FindByIDForUpdate(ctx, p.ReferenciaID)
		if err != nil {
			return dbErr(err, "reserva %s no encontrada", p.ReferenciaID)
		}
		if r.Estado != model.ReservaPendientePago {
			return nil
		}
		if r.GastoComunID != nil {
			if err := s.retirarDeGasto(ctx, tx, *r.GastoComunID, compServicios, r.MontoPago, "Reserva pagada directamente", r.ID); err != nil {
				return err
			}
			r.GastoComunID = nil
		}
		r.Estado = model.ReservaConfirmada
		r.PagoID = &p.ID
		return reservas.Update(ctx, r)

	case model.PagoGastoComun:
		gastos := s.gastos.WithTx(tx)
		g, err := gastos.FindByIDForUpdate(ctx, p.ReferenciaID)
		if err != nil {
			return dbErr(err, "gasto común %s no encontrado", p.ReferenciaID)
		}
		if g.Estado == model.GastoPagado {
			return nil
		}
		g.Estado = model.GastoPagado
		g.FechaPago = &ahora
		if err := gastos.Update(ctx, g); err != nil {
			return err
		}
		return s.saldarCargosDe(ctx, tx, g.ID, p.ID, ahora)
	}
	return Validation("tipo de pago %q no soportado", p.Tipo)
}

// saldarCargosDe settles the bookings and fines billed through a ledger entry
// that has just been paid.
func (s *pagoService) saldarCargosDe(ctx context.Context, tx *gorm.DB, gastoID, pagoID uuid.UUID, ahora time.Time) error {
	reservas := s.reservas.WithTx(tx)
	rs, err := reservas.ListPorGasto(ctx, gastoID, model.ReservaPendientePago)
	if err != nil {
		return err
	}
	for i := range rs {
		rs[i].Estado = model.ReservaConfirmada
		rs[i].PagoID = &pagoID
		if err := reservas.Update(ctx, &rs[i]); err != nil {
			return err
		}
	}
	multas := s.multas.WithTx(tx)
	ms, err := multas.ListPorGasto(ctx, gastoID, model.MultaPendiente)
	if err != nil {
		return err
	}
	for i := range ms {
		ms[i].Estado = model.MultaPagada
		ms[i].FechaPago = &ahora
		if err := multas.Update(ctx, &ms[i]); err != nil {
			return err
		}
	}
	return nil
}

// retirarDeGasto withdraws a charge paid on its own from its ledger entry. A
// ledger entry already PAGADO keeps it; the double payment is logged.
func (s *pagoService) retirarDeGasto(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, comp componente, monto decimal.Decimal, desc string, ref uuid.UUID) error {
	if !monto.IsPositive() {
		return nil
	}
	g, err := s.gastos.WithTx(tx).FindByID(ctx, gastoID)
	if err != nil {
		return dbErr(err, "gasto común %s no encontrado", gastoID)
	}
	if g.Estado == model.GastoPagado {
		log.Warn().Str("gasto_id", gastoID.String()).Str("referencia", ref.String()).
			Msg("pagos: cargo pagado por separado en un gasto común ya pagado")
		return nil
	}
	if comp == compMultas {
		_, err = s.conciliacion.RevertirCargoMultaTx(ctx, tx, gastoID, monto, desc, &ref)
	} else {
		_, err = s.conciliacion.RevertirCargoReservaTx(ctx, tx, gastoID, monto, desc, &ref)
	}
	return err
}

func (s *pagoService) notificarConfirmacion(ctx context.Context, residenteIDs []uuid.UUID, req dto.ConfirmacionPasarelaRequest) {
	if s.notificador == nil {
		return
	}
	residentes, err := s.residentes.FindByIDs(ctx, residenteIDs)
	if err != nil {
		log.Warn().Err(err).Msg("pagos: no se pudo cargar residentes para notificar")
		return
	}
	for _, r := range residentes {
		if !r.Notificable() {
			continue
		}
		notificar(ctx, s.notificador, Notificacion{
			Destinatarios: []string{r.Email},
			Asunto:        "[Casitas Teto] Pago confirmado",
			Cuerpo:        fmt.Sprintf("Recibimos su pago de $%s (orden %s). Gracias.", req.Amount.StringFixed(0), req.BuyOrder),
		})
	}
}

func toPagoResponse(p *model.Pago) dto.PagoResponse {
	return dto.PagoResponse{
		ID:                p.ID.String(),
		CondominioID:      p.CondominioID.String(),
		ResidenteID:       p.ResidenteID.String(),
		Tipo:              p.Tipo,
		ReferenciaID:      p.ReferenciaID.String(),
		Monto:             p.Monto,
		MetodoPago:        p.MetodoPago,
		EstadoPago:        p.EstadoPago,
		NumeroTransaccion: p.NumeroTransaccion,
		FechaPago:         p.FechaPago.UTC().Format(time.RFC3339),
		ComprobanteURL:    p.ComprobanteURL,
	}
}
