package ingestion

import (
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/domain"
	"github.com/shaiso/Concert/internal/phrase"
)

// MovementPrefix — префикс имени группы movement.
const MovementPrefix = "Movement_"

// DataIngestionMovement — скелет movement загрузки одной таблицы.
//
// Фразы задаются при создании, адреса — в Setup. Скелет не меняется
// при Setup и может собирать movement повторно.
type DataIngestionMovement struct {
	config         domain.Config
	table          domain.Table
	connID         string
	source         phrase.SourceToRawVault
	createTable    *phrase.CreateOrUpdateTable
	rawVaultToRaw  phrase.RawVaultToRaw
	trustedQueries []string
}

// NewDataIngestionMovement создаёт скелет из обязательных фраз.
func NewDataIngestionMovement(cfg domain.Config, table domain.Table, source phrase.SourceToRawVault, raw phrase.RawVaultToRaw) DataIngestionMovement {
	return DataIngestionMovement{
		config:        cfg,
		table:         table,
		connID:        cfg.Environment.GCPConnectionID,
		source:        source,
		rawVaultToRaw: raw,
	}
}

// WithCreateTable возвращает копию с фразой создания таблицы raw.
func (m DataIngestionMovement) WithCreateTable(p phrase.CreateOrUpdateTable) DataIngestionMovement {
	m.createTable = &p
	return m
}

// WithTrustedQueries возвращает копию с запросами фразы RawToTrusted.
func (m DataIngestionMovement) WithTrustedQueries(queries []string) DataIngestionMovement {
	m.trustedQueries = append([]string(nil), queries...)
	return m
}

// Setup вычисляет адреса для params и возвращает собираемый Movement.
func (m DataIngestionMovement) Setup(params domain.MovementParameters) (*concert.Movement, error) {
	loc, err := Resolve(m.config, m.table, params.Name)
	if err != nil {
		return nil, err
	}

	var createTable *concert.Phrase
	if m.createTable != nil {
		createTable = m.createTable.Bind(loc.RawTable)
	}

	var trusted *concert.Phrase
	if len(m.trustedQueries) > 0 {
		if loc.TrustedTable == "" {
			return nil, concert.NewConfigurationError("DataIngestionMovement", params.Name,
				"environment.trusted_dataset is empty but trusted queries are set", concert.ErrInvalidParameter)
		}
		trusted = phrase.NewRawToTrusted("", m.connID, m.trustedQueries, phrase.TrustedTables{
			Table:        params.Name,
			RawTable:     loc.RawTable,
			TrustedTable: loc.TrustedTable,
		})
	}

	return concert.NewMovement(MovementPrefix+params.Name,
		phrase.NewStart(params.Name),
		m.source.Bind(loc.RawVaultPrefix),
		createTable,
		m.rawVaultToRaw.Bind(phrase.RawVaultBinding{
			Prefix:        loc.RawVaultPrefix,
			ExternalTable: loc.RawVaultTable,
			RawTable:      loc.RawTable,
			PIITable:      loc.PIITable,
		}),
		trusted,
		phrase.NewEnd(params.Name),
	), nil
}
