package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMontoMultaAtraso(t *testing.T) {
	cfg := &Config{MultaAtrasoMonto: "15000.50"}
	assert.Equal(t, "15000.50", cfg.MontoMultaAtraso().StringFixed(2))

	cfg.MultaAtrasoMonto = "abc"
	assert.Equal(t, "10000.00", cfg.MontoMultaAtraso().StringFixed(2))

	cfg.MultaAtrasoMonto = "-1"
	assert.Equal(t, "10000.00", cfg.MontoMultaAtraso().StringFixed(2))
}

func TestDurations_Defaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 5*time.Second, cfg.DBTimeout())
	assert.Equal(t, time.Hour, cfg.MorosidadIntervalo())

	cfg.DBTimeoutSeconds = 2
	cfg.MorosidadIntervaloMinutos = 15
	assert.Equal(t, 2*time.Second, cfg.DBTimeout())
	assert.Equal(t, 15*time.Minute, cfg.MorosidadIntervalo())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9100")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 5, cfg.DiaVencimiento)
	assert.Equal(t, "10000.00", cfg.MontoMultaAtraso().StringFixed(2))
}

func TestOrigenes(t *testing.T) {
	assert.Equal(t, []string{"*"}, (&Config{}).Origenes())
	assert.Equal(t, []string{"https://a.cl", "https://b.cl"}, (&Config{CORSOrigins: "https://a.cl,https://b.cl"}).Origenes())
}
