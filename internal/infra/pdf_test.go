package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"casitas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerarEstadoCuentaPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pdfs")
	r := &model.Residente{ID: uuid.New(), Nombre: "Ana", Apellido: "Rojas", ViviendaNumero: "B-12"}
	g := &model.GastoComun{
		ID:               uuid.New(),
		ResidenteID:      r.ID,
		Mes:              3,
		Anio:             2026,
		MontoBase:        decimal.NewFromInt(85000),
		Servicios:        decimal.NewFromInt(15000),
		Estado:           model.GastoPendiente,
		FechaEmision:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		FechaVencimiento: time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
	}
	g.RecalcularTotal()
	g.AgregarObservacion(model.ObsCargoReserva, "Reserva quincho 2026-03-14 18:00-22:00", decimal.NewFromInt(15000), nil)

	path, err := GenerarEstadoCuentaPDF(g, r, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gasto_"+r.ID.String()+"_2026_03.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))

	head := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))
}
