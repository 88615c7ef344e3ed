// Package testutil provides database helpers shared by package tests.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"casitas/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewDB opens a private in-memory SQLite database with every model migrated.
// One connection only: each :memory: connection is a separate database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Usuario{},
		&model.Residente{},
		&model.EspacioComun{},
		&model.GastoComun{},
		&model.Multa{},
		&model.Pago{},
		&model.Reserva{},
		&model.Registro{},
	))
	return db
}

// MockDB wraps a GORM postgres dialector over sqlmock.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a sqlmock-backed database closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")
	t.Cleanup(func() { _ = mockDB.Close() })

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

// Fecha returns midnight UTC of the given day.
func Fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CrearResidente inserts a notifiable resident of a fresh condominium.
func CrearResidente(t *testing.T, db *gorm.DB) *model.Residente {
	t.Helper()
	r := &model.Residente{
		CondominioID:           uuid.New(),
		ViviendaNumero:         "A-101",
		Nombre:                 "Ana",
		Apellido:               "Rojas",
		Email:                  "ana.rojas@example.com",
		SuscritoNotificaciones: true,
		Activo:                 true,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

// CrearEspacio inserts an active paid common space with the given hourly rate.
func CrearEspacio(t *testing.T, db *gorm.DB, condominioID uuid.UUID, tarifa string) *model.EspacioComun {
	t.Helper()
	costo := Dec(tarifa)
	capacidad := 20
	e := &model.EspacioComun{
		CondominioID: condominioID,
		Nombre:       "Quincho",
		Tipo:         "QUINCHO",
		Capacidad:    &capacidad,
		CostoPorHora: &costo,
		RequierePago: true,
		Activo:       true,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

// CrearGasto inserts a PENDIENTE ledger entry with the given base amount.
func CrearGasto(t *testing.T, db *gorm.DB, r *model.Residente, mes, anio int, base string, vence time.Time) *model.GastoComun {
	t.Helper()
	g := &model.GastoComun{
		ResidenteID:      r.ID,
		CondominioID:     r.CondominioID,
		Mes:              mes,
		Anio:             anio,
		MontoBase:        Dec(base),
		Estado:           model.GastoPendiente,
		FechaEmision:     Fecha(anio, time.Month(mes), 1),
		FechaVencimiento: vence,
	}
	g.RecalcularTotal()
	require.NoError(t, db.Create(g).Error)
	return g
}
