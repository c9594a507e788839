package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleOnce — однократный запуск; у cron такого дескриптора нет.
const ScheduleOnce = "@once"

// scheduleParser — парсер cron-выражений и дескрипторов (@daily, @hourly).
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule проверяет расписание DAG.
// Пустая строка и @once допустимы.
func ValidateSchedule(expr string) error {
	if expr == "" || expr == ScheduleOnce {
		return nil
	}
	if _, err := scheduleParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// NextRuns возвращает n ближайших запусков после from (в UTC).
// Для ручного и однократного расписания возвращает nil.
func NextRuns(expr string, from time.Time, n int) ([]time.Time, error) {
	if expr == "" || expr == ScheduleOnce {
		return nil, nil
	}
	schedule, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}

	runs := make([]time.Time, 0, n)
	next := from
	for range n {
		next = schedule.Next(next)
		runs = append(runs, next.UTC())
	}
	return runs, nil
}
