package phrase

import (
	"fmt"
	"strings"

	"github.com/shaiso/Concert/internal/bigquery"
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/motif"
)

// Имена стандартных фраз.
const (
	NameStart               = "Start"
	NameSourceToRawVault    = "SourceToRawVault"
	NameCreateOrUpdateTable = "CreateOrUpdateTable"
	NameRawVaultToRaw       = "RawVaultToRaw"
	NameRawToTrusted        = "RawToTrusted"
	NameWarehouseToStorage  = "WarehouseToStorage"
	NameEnd                 = "End"
)

// NewStart создаёт фразу начала фазы phase.
func NewStart(phase string) *concert.Phrase {
	return concert.NewPhrase(NameStart, motif.NewStart("start", phase))
}

// NewEnd создаёт фразу окончания фазы phase.
func NewEnd(phase string) *concert.Phrase {
	return concert.NewPhrase(NameEnd, motif.NewEnd("end", phase))
}

// ExportBinder привязывает мотив выгрузки к префиксу raw vault.
type ExportBinder func(destination string) concert.Motif

// SourceToRawVault — выгрузка источника в raw vault.
type SourceToRawVault struct {
	name   string
	export ExportBinder
}

// NewSourceToRawVault создаёт фразу с мотивом выгрузки export.
func NewSourceToRawVault(name string, export ExportBinder) SourceToRawVault {
	if name == "" {
		name = NameSourceToRawVault
	}
	return SourceToRawVault{name: name, export: export}
}

// Bind возвращает фразу, пишущую в destination.
func (p SourceToRawVault) Bind(destination string) *concert.Phrase {
	if p.export == nil {
		return concert.NewPhrase(p.name)
	}
	return concert.NewPhrase(p.name, p.export(destination))
}

// CreateOrUpdateTable — создание или расширение таблицы raw.
type CreateOrUpdateTable struct {
	name  string
	motif motif.CreateOrUpdateTable
}

// NewCreateOrUpdateTable создаёт фразу со скелетом DDL мотива.
func NewCreateOrUpdateTable(name string, m motif.CreateOrUpdateTable) CreateOrUpdateTable {
	if name == "" {
		name = NameCreateOrUpdateTable
	}
	return CreateOrUpdateTable{name: name, motif: m}
}

// Bind возвращает фразу для таблицы tableURI.
func (p CreateOrUpdateTable) Bind(tableURI string) *concert.Phrase {
	return concert.NewPhrase(p.name, p.motif.BindTable(tableURI))
}

// RawVaultBinding — адреса, которые фраза RawVaultToRaw получает от movement.
type RawVaultBinding struct {
	// Prefix — префикс файлов цели в raw vault.
	Prefix string

	// ExternalTable — external таблица над Prefix.
	ExternalTable string

	// RawTable — таблица raw.
	RawTable string

	// PIITable — таблица персональных данных (пусто, если их нет).
	PIITable string
}

// RawVaultToRaw — перенос raw vault → raw: external таблица и MERGE,
// либо load задача.
type RawVaultToRaw struct {
	name     string
	mode     string
	external motif.CreateExternalTable
	merge    motif.MergeTable
	load     motif.LoadStorageToTable
}

// NewRawVaultToRawMerge создаёт перенос через external таблицу и MERGE.
func NewRawVaultToRawMerge(name string, external motif.CreateExternalTable, merge motif.MergeTable) RawVaultToRaw {
	if name == "" {
		name = NameRawVaultToRaw
	}
	return RawVaultToRaw{name: name, mode: domain.LoadModeMerge, external: external, merge: merge}
}

// NewRawVaultToRawLoad создаёт перенос load задачей.
func NewRawVaultToRawLoad(name string, load motif.LoadStorageToTable) RawVaultToRaw {
	if name == "" {
		name = NameRawVaultToRaw
	}
	return RawVaultToRaw{name: name, mode: domain.LoadModeLoad, load: load}
}

// Mode возвращает LoadModeMerge или LoadModeLoad.
func (p RawVaultToRaw) Mode() string { return p.mode }

// Bind возвращает фразу для адресов b.
func (p RawVaultToRaw) Bind(b RawVaultBinding) *concert.Phrase {
	if p.mode == domain.LoadModeLoad {
		return concert.NewPhrase(p.name, p.load.BindTables(b.Prefix, b.RawTable))
	}
	return concert.NewPhrase(p.name,
		p.external.BindTables(b.Prefix, b.ExternalTable),
		p.merge.BindTables(b.RawTable, b.ExternalTable, b.PIITable),
	)
}

// Режимы WarehouseToStorage.
const (
	ExportQuery = "query"
	ExportTable = "table"
)

// StorageBinding — адреса, которые фраза WarehouseToStorage получает от movement.
type StorageBinding struct {
	// Prefix — каталог цели в бакете reverse ETL.
	Prefix string

	// Files — маска файлов extract задачи внутри Prefix.
	Files string

	// SourceTable — выгружаемая таблица хранилища.
	SourceTable string
}

// WarehouseToStorage — reverse ETL: EXPORT DATA по запросу
// либо extract задача таблицы целиком.
type WarehouseToStorage struct {
	name    string
	mode    string
	query   motif.ExportQueryToStorage
	extract motif.ExtractTable
}

// NewQueryToStorage создаёт выгрузку результата запроса.
func NewQueryToStorage(name string, m motif.ExportQueryToStorage) WarehouseToStorage {
	if name == "" {
		name = NameWarehouseToStorage
	}
	return WarehouseToStorage{name: name, mode: ExportQuery, query: m}
}

// NewTableToStorage создаёт выгрузку таблицы extract задачей.
func NewTableToStorage(name string, m motif.ExtractTable) WarehouseToStorage {
	if name == "" {
		name = NameWarehouseToStorage
	}
	return WarehouseToStorage{name: name, mode: ExportTable, extract: m}
}

// Mode возвращает ExportQuery или ExportTable.
func (p WarehouseToStorage) Mode() string { return p.mode }

// Bind возвращает фразу для адресов b.
func (p WarehouseToStorage) Bind(b StorageBinding) *concert.Phrase {
	if p.mode == ExportQuery {
		return concert.NewPhrase(p.name, p.query.BindDestination(b.Prefix))
	}
	return concert.NewPhrase(p.name, p.extract.BindSource(b.SourceTable, b.Files))
}

// TrustedTables — значения плейсхолдеров запросов RawToTrusted.
type TrustedTables struct {
	Table        string // {table}
	RawTable     string // {raw_table}
	TrustedTable string // {trusted_table}
}

// NewRawToTrusted создаёт фразу из запросов queries, выполняемых по порядку.
//
// В запросах подставляются {table}, {raw_table} и {trusted_table}.
// Пустой список даёт nil: фраза необязательна.
func NewRawToTrusted(name, connID string, queries []string, tables TrustedTables) *concert.Phrase {
	if len(queries) == 0 {
		return nil
	}
	if name == "" {
		name = NameRawToTrusted
	}

	r := strings.NewReplacer(
		"{table}", tables.Table,
		"{raw_table}", tables.RawTable,
		"{trusted_table}", tables.TrustedTable,
	)

	jobs := make([]concert.Motif, 0, len(queries))
	for i, q := range queries {
		job := motif.NewQueryJob(fmt.Sprintf("to_trusted_%d", i+1), connID, bigquery.QueryOptions{})
		jobs = append(jobs, job.BindQuery(r.Replace(q), ""))
	}
	return concert.NewPhrase(name, jobs...)
}
