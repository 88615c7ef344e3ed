package service

import (
	"context"
	"errors"
	"time"

	"casitas/internal/config"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConciliacionService keeps each GastoComun total equal to the sum of its
// components while reservation and fine charges land on it or are withdrawn.
// It does not deduplicate: callers charge once per lifecycle transition.
//
// The Tx variants run inside the caller's transaction; the plain variants open
// their own.
type ConciliacionService interface {
	ObtenerOCrear(ctx context.Context, residenteID uuid.UUID, fecha time.Time, condominioID uuid.UUID) (*model.GastoComun, error)
	AplicarCargoReserva(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
	RevertirCargoReserva(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
	AplicarCargoMulta(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
	RevertirCargoMulta(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)

	ObtenerOCrearTx(ctx context.Context, tx *gorm.DB, residenteID uuid.UUID, fecha time.Time, condominioID uuid.UUID) (*model.GastoComun, error)
	AplicarCargoReservaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
	RevertirCargoReservaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
	AplicarCargoMultaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
	RevertirCargoMultaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error)
}

type componente int

const (
	compServicios componente = iota
	compMultas
)

type conciliacionService struct {
	gastos repository.GastoComunRepository
	cfg    *config.Config
}

func NewConciliacionService(gastos repository.GastoComunRepository, cfg *config.Config) ConciliacionService {
	return &conciliacionService{gastos: gastos, cfg: cfg}
}

// vencimientoPeriodo is the configured day of the month after (anio, mes).
func vencimientoPeriodo(cfg *config.Config, anio, mes int) time.Time {
	dia := cfg.DiaVencimiento
	if dia < 1 || dia > 28 {
		dia = 5
	}
	// time.Date normalises month 13 to January of the next year
	return time.Date(anio, time.Month(mes)+1, dia, 0, 0, 0, 0, time.UTC)
}

// ── ObtenerOCrear ────────────────────────────────────────────────────────────

func (s *conciliacionService) ObtenerOCrear(ctx context.Context, residenteID uuid.UUID, fecha time.Time, condominioID uuid.UUID) (*model.GastoComun, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var out *model.GastoComun
	err := runTx(ctx, s.gastos.DB(), func(tx *gorm.DB) error {
		g, err := s.ObtenerOCrearTx(ctx, tx, residenteID, fecha, condominioID)
		out = g
		return err
	})
	return out, dbErr(err, "gasto común no encontrado")
}

func (s *conciliacionService) ObtenerOCrearTx(ctx context.Context, tx *gorm.DB, residenteID uuid.UUID, fecha time.Time, condominioID uuid.UUID) (*model.GastoComun, error) {
	repo := s.gastos.WithTx(tx)
	mes, anio := int(fecha.Month()), fecha.Year()

	g, err := repo.FindByPeriodo(ctx, residenteID, mes, anio)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbErr(err, "")
	}

	nuevo := &model.GastoComun{
		ResidenteID:      residenteID,
		CondominioID:     condominioID,
		Mes:              mes,
		Anio:             anio,
		MontoBase:        decimal.Zero,
		CuotaMantencion:  decimal.Zero,
		Servicios:        decimal.Zero,
		Multas:           decimal.Zero,
		MontoTotal:       decimal.Zero,
		Estado:           model.GastoPendiente,
		FechaEmision:     fechaUTC(time.Now()),
		FechaVencimiento: vencimientoPeriodo(s.cfg, anio, mes),
		Observaciones:    datatypes.JSONSlice[model.Observacion]{},
	}
	creado, err := repo.CreateIfAbsent(ctx, nuevo)
	if err != nil {
		return nil, dbErr(err, "")
	}
	if creado {
		log.Info().Str("residente_id", residenteID.String()).Int("mes", mes).Int("anio", anio).
			Msg("conciliacion: gasto común creado")
		return nuevo, nil
	}
	// a concurrent request won the insert; read its row
	g, err = repo.FindByPeriodo(ctx, residenteID, mes, anio)
	return g, dbErr(err, "gasto común %02d/%d no encontrado", mes, anio)
}

// ── Cargos ───────────────────────────────────────────────────────────────────

func (s *conciliacionService) AplicarCargoReserva(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.enTx(ctx, func(ctx context.Context, tx *gorm.DB) (*model.GastoComun, error) {
		return s.aplicar(ctx, tx, gastoID, compServicios, monto, descripcion, ref)
	})
}

func (s *conciliacionService) RevertirCargoReserva(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.enTx(ctx, func(ctx context.Context, tx *gorm.DB) (*model.GastoComun, error) {
		return s.revertir(ctx, tx, gastoID, compServicios, monto, descripcion, ref)
	})
}

func (s *conciliacionService) AplicarCargoMulta(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.enTx(ctx, func(ctx context.Context, tx *gorm.DB) (*model.GastoComun, error) {
		return s.aplicar(ctx, tx, gastoID, compMultas, monto, descripcion, ref)
	})
}

func (s *conciliacionService) RevertirCargoMulta(ctx context.Context, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.enTx(ctx, func(ctx context.Context, tx *gorm.DB) (*model.GastoComun, error) {
		return s.revertir(ctx, tx, gastoID, compMultas, monto, descripcion, ref)
	})
}

func (s *conciliacionService) AplicarCargoReservaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.aplicar(ctx, tx, gastoID, compServicios, monto, descripcion, ref)
}

func (s *conciliacionService) RevertirCargoReservaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.revertir(ctx, tx, gastoID, compServicios, monto, descripcion, ref)
}

func (s *conciliacionService) AplicarCargoMultaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.aplicar(ctx, tx, gastoID, compMultas, monto, descripcion, ref)
}

func (s *conciliacionService) RevertirCargoMultaTx(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	return s.revertir(ctx, tx, gastoID, compMultas, monto, descripcion, ref)
}

func (s *conciliacionService) enTx(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) (*model.GastoComun, error)) (*model.GastoComun, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var out *model.GastoComun
	err := runTx(ctx, s.gastos.DB(), func(tx *gorm.DB) error {
		g, err := fn(ctx, tx)
		out = g
		return err
	})
	if err != nil {
		return nil, dbErr(err, "gasto común no encontrado")
	}
	return out, nil
}

// aplicar adds monto to a component. A PAGADO entry is reopened: a new cost
// on a closed period is debt again.
func (s *conciliacionService) aplicar(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, comp componente, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	monto = monto.Round(2)
	if !monto.IsPositive() {
		return nil, Validation("el monto del cargo debe ser mayor a cero")
	}
	repo := s.gastos.WithTx(tx)
	g, err := repo.FindByIDForUpdate(ctx, gastoID)
	if err != nil {
		return nil, dbErr(err, "gasto común %s no encontrado", gastoID)
	}

	if g.Estado == model.GastoPagado {
		g.Estado = model.GastoPendiente
		g.FechaPago = nil
		g.AgregarObservacion(model.ObsReapertura, "Reabierto por nuevo cargo: "+descripcion, monto, ref)
		log.Info().Str("gasto_id", g.ID.String()).Msg("conciliacion: gasto común pagado reabierto")
	}

	tipo := model.ObsCargoReserva
	switch comp {
	case compServicios:
		g.Servicios = g.Servicios.Add(monto)
	case compMultas:
		g.Multas = g.Multas.Add(monto)
		tipo = model.ObsCargoMulta
	}
	g.AgregarObservacion(tipo, descripcion, monto, ref)
	g.RecalcularTotal()

	if err := repo.Update(ctx, g); err != nil {
		return nil, dbErr(err, "")
	}
	return g, nil
}

// revertir withdraws monto from a component. A PAGADO entry is never
// decremented. The component is clamped at zero; the clamp is logged.
func (s *conciliacionService) revertir(ctx context.Context, tx *gorm.DB, gastoID uuid.UUID, comp componente, monto decimal.Decimal, descripcion string, ref *uuid.UUID) (*model.GastoComun, error) {
	monto = monto.Round(2)
	if !monto.IsPositive() {
		return nil, Validation("el monto a descontar debe ser mayor a cero")
	}
	repo := s.gastos.WithTx(tx)
	g, err := repo.FindByIDForUpdate(ctx, gastoID)
	if err != nil {
		return nil, dbErr(err, "gasto común %s no encontrado", gastoID)
	}
	if g.Estado == model.GastoPagado {
		return nil, Conflict("el gasto común %02d/%d ya está pagado; no se puede descontar el cargo", g.Mes, g.Anio)
	}

	actual, tipo := g.Servicios, model.ObsReversaReserva
	if comp == compMultas {
		actual, tipo = g.Multas, model.ObsReversaMulta
	}
	nuevo := actual.Sub(monto)
	if nuevo.IsNegative() {
		log.Warn().Str("gasto_id", g.ID.String()).Str("componente", actual.String()).Str("monto", monto.String()).
			Msg("conciliacion: descuento mayor al componente, se ajusta a cero")
		nuevo = decimal.Zero
	}
	if comp == compMultas {
		g.Multas = nuevo
	} else {
		g.Servicios = nuevo
	}
	g.AgregarObservacion(tipo, descripcion, nuevo.Sub(actual), ref)
	g.RecalcularTotal()

	if err := repo.Update(ctx, g); err != nil {
		return nil, dbErr(err, "")
	}
	return g, nil
}
