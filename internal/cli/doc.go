// Package cli реализует инструмент командной строки concert.
//
// # Обзор
//
// Локальные команды (validate, catalog, render, publish) читают пару
// YAML файлов (окружение и композицию), собирают композицию в памяти
// через workflow.Memory и печатают или публикуют манифесты.
// Команда serve поднимает HTTP API над опубликованными манифестами,
// а группа manifests обращается к этому API по HTTP.
//
// # Ключевые компоненты
//
// ## Project
//
// Пути к конфигурации, логгер и метрики. Load читает и проверяет
// конфигурацию, OpenCatalog выбирает каталог целей (static или
// postgres), Render собирает графы.
//
// ## Client
//
// HTTP-клиент для API concert serve. Разбирает DataResponse,
// ListResponse и ErrorResponse.
//
//	client := cli.NewClient("http://localhost:8080")
//	items, err := client.ListManifests()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: concert render --json | jq .
//
// ## Commands
//
// Каждая команда создаётся фабричной функцией (NewRenderCmd и т.д.),
// принимающей projectFn или clientFn и outputFn — замыкания для
// ленивого создания зависимостей после парсинга PersistentFlags.
package cli
