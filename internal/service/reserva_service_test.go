package service_test

import (
	"context"
	"testing"

	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"
	"casitas/internal/service"
	"casitas/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func nuevaReservaSvc(db *gorm.DB) service.ReservaService {
	gastos := repository.NewGastoComunRepository(db)
	return service.NewReservaService(
		repository.NewReservaRepository(db),
		repository.NewEspacioComunRepository(db),
		repository.NewResidenteRepository(db),
		repository.NewRegistroRepository(db),
		service.NewConciliacionService(gastos, testConfig()),
		nil,
		testConfig(),
	)
}

func reservaReq(espacio *model.EspacioComun, r *model.Residente, fecha, desde, hasta string) dto.CrearReservaRequest {
	return dto.CrearReservaRequest{
		EspacioComunID: espacio.ID.String(),
		ResidenteID:    r.ID.String(),
		FechaReserva:   fecha,
		HoraInicio:     desde,
		HoraFin:        hasta,
	}
}

func TestReserva_CrearCargaGastoComun(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "25000")

	res, err := svc.Crear(context.Background(), reservaReq(e, r, "2026-08-14", "18:00", "22:00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaPendientePago, res.Estado)
	assert.Equal(t, "100000.00", res.MontoPago.StringFixed(2))
	require.NotNil(t, res.GastoComunID)

	g := recargarGasto(t, db, uuid.MustParse(*res.GastoComunID))
	assert.Equal(t, 8, g.Mes)
	assert.Equal(t, 2026, g.Anio)
	assert.True(t, testutil.Dec("100000").Equal(g.Servicios))
	assert.True(t, testutil.Dec("100000").Equal(g.MontoTotal))
	assertInvariante(t, g)

	var eventos int64
	db.Model(&model.Registro{}).Where("tipo_evento = ?", model.EventoReserva).Count(&eventos)
	assert.Equal(t, int64(1), eventos)
}

func TestReserva_Solapamiento(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "10000")
	ctx := context.Background()

	_, err := svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "18:00", "22:00"), nil)
	require.NoError(t, err)

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "21:00", "23:00"), nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "22:00", "23:30"), nil)
	assert.NoError(t, err, "back-to-back bookings are allowed")

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-15", "18:00", "22:00"), nil)
	assert.NoError(t, err)

	g, err := repository.NewGastoComunRepository(db).FindByPeriodo(ctx, r.ID, 8, 2026)
	require.NoError(t, err)
	assert.Equal(t, "95000.00", g.Servicios.StringFixed(2))
	assertInvariante(t, g)
}

func TestReserva_SolapamientoPasadaMedianoche(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "0")
	ctx := context.Background()

	_, err := svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "22:00", "02:00"), nil)
	require.NoError(t, err)

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-15", "00:00", "01:00"), nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-13", "23:00", "22:30"), nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err), "the earlier night runs into this one")

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-15", "02:00", "04:00"), nil)
	assert.NoError(t, err)

	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-13", "20:00", "22:00"), nil)
	assert.NoError(t, err)
}

func TestReserva_CancelarRetiraCargo(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "25000")
	ctx := context.Background()

	res, err := svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "18:00", "22:00"), nil)
	require.NoError(t, err)
	gastoID := uuid.MustParse(*res.GastoComunID)

	motivo := "Lluvia"
	cancelada, err := svc.Cancelar(ctx, uuid.MustParse(res.ID), dto.CancelarReservaRequest{Motivo: &motivo}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaCancelada, cancelada.Estado)
	assert.Nil(t, cancelada.GastoComunID)

	g := recargarGasto(t, db, gastoID)
	assert.True(t, g.Servicios.IsZero())
	assert.True(t, g.MontoTotal.IsZero())

	_, err = svc.Cancelar(ctx, uuid.MustParse(res.ID), dto.CancelarReservaRequest{}, nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	// the slot is free again
	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "19:00", "20:00"), nil)
	assert.NoError(t, err)
}

func TestReserva_CancelarConGastoPagadoEsConflicto(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "25000")
	ctx := context.Background()

	res, err := svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "18:00", "20:00"), nil)
	require.NoError(t, err)
	gastoID := uuid.MustParse(*res.GastoComunID)
	require.NoError(t, db.Model(&model.GastoComun{}).Where("id = ?", gastoID).Update("estado", model.GastoPagado).Error)

	_, err = svc.Cancelar(ctx, uuid.MustParse(res.ID), dto.CancelarReservaRequest{}, nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	still, err := svc.Obtener(ctx, uuid.MustParse(res.ID))
	require.NoError(t, err)
	assert.Equal(t, model.ReservaPendientePago, still.Estado)
	assert.NotNil(t, still.GastoComunID)
	assert.True(t, testutil.Dec("50000").Equal(recargarGasto(t, db, gastoID).Servicios))
}

func TestReserva_Eliminar(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "12000")
	ctx := context.Background()

	res, err := svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "10:00", "11:30"), nil)
	require.NoError(t, err)
	gastoID := uuid.MustParse(*res.GastoComunID)

	require.NoError(t, svc.Eliminar(ctx, uuid.MustParse(res.ID), nil))
	_, err = svc.Obtener(ctx, uuid.MustParse(res.ID))
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	assert.True(t, recargarGasto(t, db, gastoID).Servicios.IsZero())

	err = svc.Eliminar(ctx, uuid.New(), nil)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestReserva_EspacioGratuito(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "5000")
	require.NoError(t, db.Model(e).Update("requiere_pago", false).Error)

	res, err := svc.Crear(context.Background(), reservaReq(e, r, "2026-08-14", "10:00", "12:00"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaConfirmada, res.Estado)
	assert.True(t, res.MontoPago.IsZero())
	assert.Nil(t, res.GastoComunID)

	var n int64
	db.Model(&model.GastoComun{}).Count(&n)
	assert.Zero(t, n)
}

func TestReserva_Validaciones(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaReservaSvc(db)
	r := testutil.CrearResidente(t, db)
	e := testutil.CrearEspacio(t, db, r.CondominioID, "5000")
	ctx := context.Background()

	_, err := svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "10:00", "10:00"), nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.Crear(ctx, reservaReq(e, r, "14/08/2026", "10:00", "11:00"), nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	otro := testutil.CrearEspacio(t, db, uuid.New(), "5000")
	_, err = svc.Crear(ctx, reservaReq(otro, r, "2026-08-14", "10:00", "11:00"), nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	req := reservaReq(e, r, "2026-08-14", "10:00", "11:00")
	req.EspacioComunID = uuid.NewString()
	_, err = svc.Crear(ctx, req, nil)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	require.NoError(t, db.Model(e).Update("activo", false).Error)
	_, err = svc.Crear(ctx, reservaReq(e, r, "2026-08-14", "10:00", "11:00"), nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	var n int64
	db.Model(&model.Reserva{}).Count(&n)
	assert.Zero(t, n)
}
