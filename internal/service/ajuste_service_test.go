package service_test

import (
	"context"
	"testing"
	"time"

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

func nuevoAjuste(db *gorm.DB) service.AjusteService {
	gastos := repository.NewGastoComunRepository(db)
	return service.NewAjusteService(
		gastos,
		repository.NewMultaRepository(db),
		repository.NewRegistroRepository(db),
		service.NewConciliacionService(gastos, testConfig()),
		testConfig(),
	)
}

func crearMulta(t *testing.T, db *gorm.DB, r *model.Residente, monto string) *model.Multa {
	t.Helper()
	m := &model.Multa{
		ResidenteID:  r.ID,
		CondominioID: r.CondominioID,
		Tipo:         model.MultaRuido,
		Descripcion:  "Ruidos molestos",
		Monto:        testutil.Dec(monto),
		Estado:       model.MultaPendiente,
		FechaEmision: testutil.Fecha(2026, time.May, 10),
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func recargarMulta(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Multa {
	t.Helper()
	var m model.Multa
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return &m
}

func TestAjuste_CondonarYRevertirMulta(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	m := crearMulta(t, db, r, "50000")
	actor := uuid.New()
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo:    model.ObjetoMulta,
		ObjetoID:      m.ID,
		MontoNuevo:    testutil.Dec("0"),
		Motivo:        "Primera infracción",
		ActorID:       &actor,
		EsCondonacion: true,
	})
	require.NoError(t, err)

	condonada := recargarMulta(t, db, m.ID)
	assert.Equal(t, model.MultaCondonada, condonada.Estado)
	assert.True(t, condonada.Monto.IsZero())
	require.NotNil(t, condonada.MotivoCondonacion)

	ajusteID := uuid.MustParse(ajuste.ID)
	rev, err := svc.RevertirObjetivo(ctx, model.ObjetoMulta, m.ID, ajusteID, "Error administrativo", &actor)
	require.NoError(t, err)

	restaurada := recargarMulta(t, db, m.ID)
	assert.Equal(t, model.MultaPendiente, restaurada.Estado)
	assert.True(t, testutil.Dec("50000").Equal(restaurada.Monto))
	assert.Nil(t, restaurada.MotivoCondonacion)

	require.NotNil(t, rev.RegistroOriginalID)
	assert.Equal(t, ajuste.ID, *rev.RegistroOriginalID)

	hist, err := svc.Historial(ctx, model.ObjetoMulta, m.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.NotNil(t, hist[0].RevertidoPorID)
	assert.Equal(t, rev.ID, *hist[0].RevertidoPorID)
	assert.Equal(t, ajuste.ID, *hist[1].RegistroOriginalID)

	p, ok := hist[1].DatosAdicionales.Ajuste.(model.AjusteMulta)
	require.True(t, ok)
	assert.Equal(t, model.AccionReversion, p.Accion)
	assert.False(t, p.Revertible)
}

func TestAjuste_RevertirDosVecesEsConflicto(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	m := crearMulta(t, db, r, "50000")
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("20000"), Motivo: "Rebaja",
	})
	require.NoError(t, err)
	id := uuid.MustParse(ajuste.ID)

	_, err = svc.Revertir(ctx, id, "Deshacer", nil)
	require.NoError(t, err)

	_, err = svc.Revertir(ctx, id, "Deshacer otra vez", nil)
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	assert.True(t, testutil.Dec("50000").Equal(recargarMulta(t, db, m.ID).Monto))
}

func TestAjuste_RevertirObjetivoDistintoEsValidacion(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	m := crearMulta(t, db, r, "50000")
	otra := crearMulta(t, db, r, "7000")
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("20000"), Motivo: "Rebaja",
	})
	require.NoError(t, err)

	_, err = svc.RevertirObjetivo(ctx, model.ObjetoMulta, otra.ID, uuid.MustParse(ajuste.ID), "x", nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	g := testutil.CrearGasto(t, db, r, 5, 2026, "1000", testutil.Fecha(2026, time.June, 5))
	_, err = svc.RevertirObjetivo(ctx, model.ObjetoGastoComun, g.ID, uuid.MustParse(ajuste.ID), "x", nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestAjuste_RegistroNoRevertible(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	m := crearMulta(t, db, r, "50000")
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("10000"), Motivo: "Rebaja",
	})
	require.NoError(t, err)
	rev, err := svc.Revertir(ctx, uuid.MustParse(ajuste.ID), "Deshacer", nil)
	require.NoError(t, err)

	// a reversal record is not itself revertible
	_, err = svc.Revertir(ctx, uuid.MustParse(rev.ID), "Rehacer", nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	// plain event records carry no payload
	plano := &model.Registro{TipoEvento: model.EventoOtro, Detalle: "nota"}
	require.NoError(t, db.Create(plano).Error)
	_, err = svc.Revertir(ctx, plano.ID, "x", nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.Revertir(ctx, uuid.New(), "x", nil)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestAjuste_ReversionSuperadaEsConflicto(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	m := crearMulta(t, db, r, "50000")
	ctx := context.Background()

	primero, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("30000"), Motivo: "Rebaja 1",
	})
	require.NoError(t, err)
	segundo, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("20000"), Motivo: "Rebaja 2",
	})
	require.NoError(t, err)

	_, err = svc.Revertir(ctx, uuid.MustParse(primero.ID), "Fuera de orden", nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	_, err = svc.Revertir(ctx, uuid.MustParse(segundo.ID), "Deshacer 2", nil)
	require.NoError(t, err)
	_, err = svc.Revertir(ctx, uuid.MustParse(primero.ID), "Deshacer 1", nil)
	require.NoError(t, err)

	actual := recargarMulta(t, db, m.ID)
	assert.True(t, testutil.Dec("50000").Equal(actual.Monto))

	var regs []model.Registro
	require.NoError(t, db.Where("objeto_id = ?", m.ID).Order("created_at ASC, id ASC").Find(&regs).Error)
	require.Len(t, regs, 4)
	replay, ok := service.MontoSegunHistorial(regs)
	require.True(t, ok)
	assert.True(t, replay.Equal(actual.Monto), "replay %s, current %s", replay, actual.Monto)
}

func TestAjuste_GastoComunIdaYVuelta(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "100000", testutil.Fecha(2026, time.June, 5))
	require.NoError(t, db.Model(g).Updates(map[string]any{
		"servicios": testutil.Dec("12345.67"), "monto_total": testutil.Dec("112345.67"),
	}).Error)
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: g.ID, MontoNuevo: testutil.Dec("90000.10"), Motivo: "Descuento comité",
	})
	require.NoError(t, err)

	ajustado := recargarGasto(t, db, g.ID)
	assert.True(t, testutil.Dec("90000.10").Equal(ajustado.MontoTotal))
	assert.True(t, testutil.Dec("12345.67").Equal(ajustado.Servicios), "charges keep their component")
	assertInvariante(t, ajustado)

	_, err = svc.RevertirObjetivo(ctx, model.ObjetoGastoComun, g.ID, uuid.MustParse(ajuste.ID), "Deshacer", nil)
	require.NoError(t, err)

	restaurado := recargarGasto(t, db, g.ID)
	assert.Equal(t, "112345.67", restaurado.MontoTotal.StringFixed(2))
	assert.True(t, testutil.Dec("100000").Equal(restaurado.MontoBase))
	assertInvariante(t, restaurado)
}

func TestAjuste_RevertirConservaCargosPosteriores(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	conciliacion := service.NewConciliacionService(repository.NewGastoComunRepository(db), testConfig())
	r := testutil.CrearResidente(t, db)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "100000", testutil.Fecha(2026, time.June, 5))
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: g.ID, MontoNuevo: testutil.Dec("90000"), Motivo: "Descuento",
	})
	require.NoError(t, err)

	_, err = conciliacion.AplicarCargoReserva(ctx, g.ID, testutil.Dec("20000"), "Reserva quincho", nil)
	require.NoError(t, err)
	assert.Equal(t, "110000.00", recargarGasto(t, db, g.ID).MontoTotal.StringFixed(2))

	_, err = svc.RevertirObjetivo(ctx, model.ObjetoGastoComun, g.ID, uuid.MustParse(ajuste.ID), "Deshacer", nil)
	require.NoError(t, err)

	// the base returns to its pre-adjustment value and the later charge stays
	restaurado := recargarGasto(t, db, g.ID)
	assert.Equal(t, "100000.00", restaurado.MontoBase.StringFixed(2))
	assert.Equal(t, "20000.00", restaurado.Servicios.StringFixed(2))
	assert.Equal(t, "120000.00", restaurado.MontoTotal.StringFixed(2))
	assertInvariante(t, restaurado)
}

func TestAjuste_GastoComunReglas(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "100000", testutil.Fecha(2026, time.June, 5))
	require.NoError(t, db.Model(g).Updates(map[string]any{
		"multas": testutil.Dec("10000"), "monto_total": testutil.Dec("110000"),
	}).Error)
	ctx := context.Background()

	_, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: g.ID, MontoNuevo: testutil.Dec("5000"), Motivo: "Demasiado",
	})
	assert.Equal(t, service.KindValidation, service.KindOf(err), "below the non-base charges")

	_, err = svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: g.ID, MontoNuevo: testutil.Dec("0"), Motivo: "x", EsCondonacion: true,
	})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: g.ID, MontoNuevo: testutil.Dec("-1"), Motivo: "x",
	})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	require.NoError(t, db.Model(g).Update("estado", model.GastoPagado).Error)
	_, err = svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: g.ID, MontoNuevo: testutil.Dec("100000"), Motivo: "Tarde",
	})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	_, err = svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoGastoComun, ObjetoID: uuid.New(), MontoNuevo: testutil.Dec("1"), Motivo: "x",
	})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	var n int64
	db.Model(&model.Registro{}).Count(&n)
	assert.Zero(t, n, "failed adjustments leave no audit record")
}

func TestAjuste_MultaCargadaMueveGasto(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "100000", testutil.Fecha(2026, time.June, 5))
	require.NoError(t, db.Model(g).Updates(map[string]any{
		"multas": testutil.Dec("40000"), "monto_total": testutil.Dec("140000"),
	}).Error)
	m := crearMulta(t, db, r, "40000")
	require.NoError(t, db.Model(m).Update("gasto_comun_id", g.ID).Error)
	ctx := context.Background()

	ajuste, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("0"), Motivo: "Condonada", EsCondonacion: true,
	})
	require.NoError(t, err)

	tras := recargarGasto(t, db, g.ID)
	assert.True(t, tras.Multas.IsZero())
	assert.True(t, testutil.Dec("100000").Equal(tras.MontoTotal))

	_, err = svc.Revertir(ctx, uuid.MustParse(ajuste.ID), "Deshacer", nil)
	require.NoError(t, err)
	vuelta := recargarGasto(t, db, g.ID)
	assert.True(t, testutil.Dec("40000").Equal(vuelta.Multas))
	assert.True(t, testutil.Dec("140000").Equal(vuelta.MontoTotal))
	assertInvariante(t, vuelta)
}

func TestAjuste_ListarRegistros(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAjuste(db)
	r := testutil.CrearResidente(t, db)
	m := crearMulta(t, db, r, "50000")
	ctx := context.Background()

	_, err := svc.Ajustar(ctx, service.SolicitudAjuste{
		ObjetoTipo: model.ObjetoMulta, ObjetoID: m.ID, MontoNuevo: testutil.Dec("1"), Motivo: "Rebaja",
	})
	require.NoError(t, err)

	out, err := svc.ListarRegistros(ctx, dtoRegistroFilter(model.ObjetoMulta))
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Data, 1)
	assert.Nil(t, out.Data[0].RevertidoPorID)

	got, err := svc.ObtenerRegistro(ctx, uuid.MustParse(out.Data[0].ID))
	require.NoError(t, err)
	assert.Equal(t, model.EventoEdicion, got.TipoEvento)
}

func dtoRegistroFilter(objetoTipo string) dto.RegistroFilter {
	return dto.RegistroFilter{ObjetoTipo: objetoTipo, Page: 1, Limit: 50}
}
