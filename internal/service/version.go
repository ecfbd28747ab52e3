package service

import (
	"time"

	"user-insight/internal/config"
)

// VersionAt deriva la versión de la corrida desde un ancla temporal fija:
// la medianoche de hoy (daily) o la del lunes de esta semana (weekly), en
// segundos unix. Todas las predicciones de una corrida comparten el valor.
func VersionAt(now time.Time, period string) int64 {
	day := now
	if period == config.PeriodWeekly {
		// Weekday es domingo=0; el ancla semanal es el lunes.
		offset := (int(now.Weekday()) + 6) % 7
		day = now.AddDate(0, 0, -offset)
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Unix()
}
