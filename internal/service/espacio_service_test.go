package service_test

import (
	"context"
	"testing"

	"casitas/internal/dto"
	"casitas/internal/repository"
	"casitas/internal/service"
	"casitas/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEspacio_CrearYListar(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewEspacioService(repository.NewEspacioComunRepository(db), testConfig())
	ctx := context.Background()
	cond := uuid.NewString()
	costo := testutil.Dec("25000.005")

	e, err := svc.Crear(ctx, dto.CrearEspacioRequest{
		CondominioID: cond, Nombre: "Quincho norte", Tipo: "QUINCHO", CostoPorHora: &costo, RequierePago: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "25000.01", e.CostoPorHora.StringFixed(2))

	_, err = svc.Crear(ctx, dto.CrearEspacioRequest{CondominioID: uuid.NewString(), Nombre: "Cancha", Tipo: "MULTICANCHA"})
	require.NoError(t, err)

	propios, err := svc.Listar(ctx, cond)
	require.NoError(t, err)
	require.Len(t, propios, 1)
	assert.Equal(t, e.ID, propios[0].ID)

	todos, err := svc.Listar(ctx, "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestEspacio_CostoNegativo(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewEspacioService(repository.NewEspacioComunRepository(db), testConfig())
	costo := testutil.Dec("-1")

	_, err := svc.Crear(context.Background(), dto.CrearEspacioRequest{
		CondominioID: uuid.NewString(), Nombre: "Sala", Tipo: "SALA_EVENTOS", CostoPorHora: &costo,
	})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}
