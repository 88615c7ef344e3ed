package service

import (
	"time"

	"github.com/shopspring/decimal"
)

var minutosPorHora = decimal.NewFromInt(60)

// CalcularCostoReserva returns duration in hours × hourly rate, rounded to two
// decimals. An end before the start crosses midnight. A nil or zero rate is
// free. Only the clock part of inicio and fin is used.
func CalcularCostoReserva(inicio, fin time.Time, tarifa *decimal.Decimal) decimal.Decimal {
	if tarifa == nil || !tarifa.IsPositive() {
		return decimal.Zero
	}
	minutos := duracionMinutos(inicio, fin)
	horas := decimal.NewFromInt(int64(minutos)).Div(minutosPorHora)
	return horas.Mul(*tarifa).Round(2)
}

// duracionMinutos is the clock distance from inicio to fin in whole minutes.
func duracionMinutos(inicio, fin time.Time) int {
	desde := inicio.Hour()*60 + inicio.Minute()
	hasta := fin.Hour()*60 + fin.Minute()
	if hasta < desde {
		hasta += 24 * 60
	}
	return hasta - desde
}

// ParseHora parses an "HH:MM" clock time.
func ParseHora(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, Validation("hora inválida %q, use HH:MM", s)
	}
	return t, nil
}

// intervaloMinutos maps an "HH:MM"-"HH:MM" booking onto [desde, hasta) minutes
// from the booking date's midnight.
func intervaloMinutos(inicio, fin time.Time) (int, int) {
	desde := inicio.Hour()*60 + inicio.Minute()
	return desde, desde + duracionMinutos(inicio, fin)
}

const minutosPorDia = 24 * 60

// diasEntre counts calendar days from a to b, ignoring clock and zone.
func diasEntre(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func seSolapan(aDesde, aHasta, bDesde, bHasta int) bool {
	return aDesde < bHasta && bDesde < aHasta
}
