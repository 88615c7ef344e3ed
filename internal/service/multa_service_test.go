package service_test

import (
	"context"
	"testing"
	"time"

	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"
	"casitas/internal/service"
	"casitas/internal/service/mocks"
	"casitas/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func nuevaMultaService(db *gorm.DB, n service.Notificador) service.MultaService {
	gastos := repository.NewGastoComunRepository(db)
	return service.NewMultaService(
		repository.NewMultaRepository(db),
		repository.NewResidenteRepository(db),
		repository.NewRegistroRepository(db),
		service.NewConciliacionService(gastos, testConfig()),
		n,
		testConfig(),
	)
}

func TestMulta_CrearSinCargo(t *testing.T) {
	db := testutil.NewDB(t)
	ctrl := gomock.NewController(t)
	notif := mocks.NewMockNotificador(ctrl)
	r := testutil.CrearResidente(t, db)
	actor := uuid.New()

	notif.EXPECT().Enviar(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := nuevaMultaService(db, notif).Crear(context.Background(), dto.CrearMultaRequest{
		ResidenteID: r.ID.String(),
		Tipo:        model.MultaRuido,
		Descripcion: "Ruidos molestos",
		Monto:       testutil.Dec("25000"),
	}, &actor)
	require.NoError(t, err)
	assert.Equal(t, model.MultaPendiente, resp.Estado)
	assert.Equal(t, r.CondominioID.String(), resp.CondominioID)
	assert.Nil(t, resp.GastoComunID)
	require.NotNil(t, resp.CreadoPor)
	assert.Equal(t, actor.String(), *resp.CreadoPor)

	var gastos int64
	require.NoError(t, db.Model(&model.GastoComun{}).Count(&gastos).Error)
	assert.Zero(t, gastos)

	var regs []model.Registro
	require.NoError(t, db.Where("tipo_evento = ?", model.EventoMulta).Find(&regs).Error)
	require.Len(t, regs, 1)
	assert.True(t, regs[0].Monto.Equal(testutil.Dec("25000")))
}

func TestMulta_CrearConCargoEnGasto(t *testing.T) {
	db := testutil.NewDB(t)
	r := testutil.CrearResidente(t, db)

	resp, err := nuevaMultaService(db, nil).Crear(context.Background(), dto.CrearMultaRequest{
		ResidenteID:        r.ID.String(),
		Tipo:               model.MultaMascota,
		Descripcion:        "Mascota sin correa",
		Monto:              testutil.Dec("12000"),
		CargarEnGastoComun: true,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.GastoComunID)

	hoy := time.Now()
	var g model.GastoComun
	require.NoError(t, db.First(&g, "id = ?", *resp.GastoComunID).Error)
	assert.Equal(t, int(hoy.Month()), g.Mes)
	assert.Equal(t, hoy.Year(), g.Anio)
	assert.True(t, g.Multas.Equal(testutil.Dec("12000")))
	assertInvariante(t, &g)
}

func TestMulta_CrearValidaciones(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaMultaService(db, nil)
	ctx := context.Background()

	_, err := svc.Crear(ctx, dto.CrearMultaRequest{ResidenteID: "x", Tipo: model.MultaOtro, Descripcion: "abc", Monto: testutil.Dec("1")}, nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.Crear(ctx, dto.CrearMultaRequest{ResidenteID: uuid.NewString(), Tipo: model.MultaOtro, Descripcion: "abc", Monto: testutil.Dec("0")}, nil)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.Crear(ctx, dto.CrearMultaRequest{ResidenteID: uuid.NewString(), Tipo: model.MultaOtro, Descripcion: "abc", Monto: testutil.Dec("10")}, nil)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Registro{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestMulta_ObtenerYListar(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevaMultaService(db, nil)
	ctx := context.Background()
	r := testutil.CrearResidente(t, db)
	otro := testutil.CrearResidente(t, db)

	for _, res := range []*model.Residente{r, r, otro} {
		_, err := svc.Crear(ctx, dto.CrearMultaRequest{
			ResidenteID: res.ID.String(), Tipo: model.MultaOtro, Descripcion: "Basura", Monto: testutil.Dec("5000"),
		}, nil)
		require.NoError(t, err)
	}

	list, err := svc.Listar(ctx, dto.MultaFilter{ResidenteID: r.ID.String(), Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	require.Len(t, list.Data, 2)

	got, err := svc.Obtener(ctx, uuid.MustParse(list.Data[0].ID))
	require.NoError(t, err)
	assert.Equal(t, list.Data[0].ID, got.ID)

	_, err = svc.Obtener(ctx, uuid.New())
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}
