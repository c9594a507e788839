// Package workflow — шов между сборщиком пайплайнов и движком workflow.
//
// Включает:
//   - service.go  — интерфейс Service и описание задачи Task
//   - memory.go   — in-memory реализация Service
//   - graph.go    — граф одного корневого контейнера, проверка циклов
//   - manifest.go — экспорт графа в JSON манифест для деплоя
//   - errors.go   — ошибки графа
//
// Сборщик (пакет concert) работает только через Service и никогда не
// трогает типы движка напрямую. Манифест — то, что забирает внешний
// движок, который и выполняет задачи.
package workflow
