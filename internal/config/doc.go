// Package config — загрузка конфигурации композиции из YAML.
//
// Конфигурация состоит из двух файлов:
//   - environment.yaml — проект, датасеты, бакеты, подключения
//   - composition.yaml — источник, параметры DAG, шаблон movement, таблицы
//
// Перед разбором в файлах раскрываются переменные окружения ${VAR}.
//
// Включает:
//   - load.go     — Load и Parse
//   - validate.go — Validate и ValidationError
//   - schedule.go — проверка расписания (cron и дескрипторы @daily)
package config
