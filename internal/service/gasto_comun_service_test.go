package service_test

import (
	"context"
	"errors"
	"os"
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

func nuevoGastoService(t *testing.T, db *gorm.DB, n service.Notificador) service.GastoComunService {
	cfg := testConfig()
	cfg.PDFStoragePath = t.TempDir()
	return service.NewGastoComunService(
		repository.NewGastoComunRepository(db),
		repository.NewResidenteRepository(db),
		repository.NewRegistroRepository(db),
		n,
		cfg,
	)
}

func TestGastoComun_Crear(t *testing.T) {
	db := testutil.NewDB(t)
	r := testutil.CrearResidente(t, db)
	svc := nuevoGastoService(t, db, nil)

	resp, err := svc.Crear(context.Background(), dto.CrearGastoComunRequest{
		ResidenteID:     r.ID.String(),
		Mes:             12,
		Anio:            2026,
		MontoBase:       testutil.Dec("80000"),
		CuotaMantencion: testutil.Dec("15000"),
		Servicios:       testutil.Dec("5000.50"),
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.MontoTotal.Equal(testutil.Dec("100000.50")))
	assert.Equal(t, model.GastoPendiente, resp.Estado)
	assert.Equal(t, "2027-01-05", resp.FechaVencimiento)
	assert.Empty(t, resp.Observaciones)

	var regs []model.Registro
	require.NoError(t, db.Where("tipo_evento = ?", model.EventoCreacion).Find(&regs).Error)
	require.Len(t, regs, 1)
	require.NotNil(t, regs[0].ObjetoID)
	assert.Equal(t, resp.ID, regs[0].ObjetoID.String())
}

func TestGastoComun_CrearPeriodoDuplicado(t *testing.T) {
	db := testutil.NewDB(t)
	r := testutil.CrearResidente(t, db)
	svc := nuevoGastoService(t, db, nil)
	vence := "2026-04-10"
	req := dto.CrearGastoComunRequest{
		ResidenteID: r.ID.String(), Mes: 3, Anio: 2026,
		MontoBase: testutil.Dec("50000"), FechaVencimiento: &vence,
	}

	first, err := svc.Crear(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, vence, first.FechaVencimiento)

	_, err = svc.Crear(context.Background(), req, nil)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Registro{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGastoComun_CrearValidaciones(t *testing.T) {
	db := testutil.NewDB(t)
	r := testutil.CrearResidente(t, db)
	svc := nuevoGastoService(t, db, nil)
	ctx := context.Background()
	malaFecha := "05-04-2026"

	cases := []struct {
		name string
		req  dto.CrearGastoComunRequest
		kind service.Kind
	}{
		{"residente invalido", dto.CrearGastoComunRequest{ResidenteID: "nope", Mes: 1, Anio: 2026}, service.KindValidation},
		{"mes fuera de rango", dto.CrearGastoComunRequest{ResidenteID: r.ID.String(), Mes: 13, Anio: 2026}, service.KindValidation},
		{"componente negativo", dto.CrearGastoComunRequest{ResidenteID: r.ID.String(), Mes: 1, Anio: 2026, Servicios: testutil.Dec("-1")}, service.KindValidation},
		{"fecha invalida", dto.CrearGastoComunRequest{ResidenteID: r.ID.String(), Mes: 1, Anio: 2026, FechaVencimiento: &malaFecha}, service.KindValidation},
		{"residente inexistente", dto.CrearGastoComunRequest{ResidenteID: uuid.NewString(), Mes: 1, Anio: 2026}, service.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Crear(ctx, tc.req, nil)
			assert.Equal(t, tc.kind, service.KindOf(err))
		})
	}
}

func TestGastoComun_ObtenerYListar(t *testing.T) {
	db := testutil.NewDB(t)
	r := testutil.CrearResidente(t, db)
	svc := nuevoGastoService(t, db, nil)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "70000", testutil.Fecha(2026, time.June, 5))
	testutil.CrearGasto(t, db, r, 6, 2026, "70000", testutil.Fecha(2026, time.July, 5))

	got, err := svc.Obtener(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Mes)

	_, err = svc.Obtener(context.Background(), uuid.New())
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	list, err := svc.Listar(context.Background(), dto.GastoComunFilter{ResidenteID: r.ID.String(), Mes: 6, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, 6, list.Data[0].Mes)
}

func TestGastoComun_NotificarAdjuntaPDF(t *testing.T) {
	db := testutil.NewDB(t)
	ctrl := gomock.NewController(t)
	notif := mocks.NewMockNotificador(ctrl)
	r := testutil.CrearResidente(t, db)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "70000", testutil.Fecha(2026, time.June, 5))

	notif.EXPECT().Enviar(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n service.Notificacion) error {
			assert.Equal(t, []string{r.Email}, n.Destinatarios)
			assert.Contains(t, n.Asunto, "05/2026")
			_, err := os.Stat(n.AdjuntoPath)
			assert.NoError(t, err)
			return nil
		})

	resp, err := nuevoGastoService(t, db, notif).Notificar(context.Background(), g.ID)
	require.NoError(t, err)
	assert.True(t, resp.Enviada)
	assert.Equal(t, r.Email, resp.Destinatario)

	var stored model.Residente
	require.NoError(t, db.First(&stored, "id = ?", r.ID).Error)
	assert.NotNil(t, stored.UltimoCorreoEnviado)
}

func TestGastoComun_NotificarResidenteNoSuscrito(t *testing.T) {
	db := testutil.NewDB(t)
	ctrl := gomock.NewController(t)
	notif := mocks.NewMockNotificador(ctrl)
	r := testutil.CrearResidente(t, db)
	require.NoError(t, db.Model(r).Update("suscrito_notificaciones", false).Error)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "70000", testutil.Fecha(2026, time.June, 5))

	resp, err := nuevoGastoService(t, db, notif).Notificar(context.Background(), g.ID)
	require.NoError(t, err)
	assert.False(t, resp.Enviada)
	assert.NotEmpty(t, resp.Motivo)
}

func TestGastoComun_NotificarFalloDeEnvio(t *testing.T) {
	db := testutil.NewDB(t)
	ctrl := gomock.NewController(t)
	notif := mocks.NewMockNotificador(ctrl)
	r := testutil.CrearResidente(t, db)
	g := testutil.CrearGasto(t, db, r, 5, 2026, "70000", testutil.Fecha(2026, time.June, 5))

	notif.EXPECT().Enviar(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	resp, err := nuevoGastoService(t, db, notif).Notificar(context.Background(), g.ID)
	require.NoError(t, err)
	assert.False(t, resp.Enviada)

	var stored model.Residente
	require.NoError(t, db.First(&stored, "id = ?", r.ID).Error)
	assert.Nil(t, stored.UltimoCorreoEnviado)
}
