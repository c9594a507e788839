package domain

// SourceKind — вид источника данных, по которому выбирается movement builder.
//
// Закрытое перечисление: новые виды добавляются только сюда
// и в SourceKinds(), чтобы реестр вариантов мог проверить полноту.
type SourceKind string

const (
	// SourceMySQL — выгрузка таблиц MySQL через JDBC.
	SourceMySQL SourceKind = "mysql"

	// SourcePostgreSQL — выгрузка таблиц PostgreSQL через JDBC.
	SourcePostgreSQL SourceKind = "postgresql"

	// SourceMSSQL — выгрузка таблиц SQL Server через JDBC.
	SourceMSSQL SourceKind = "mssql"

	// SourceGCS — копирование файлов из Google Cloud Storage.
	SourceGCS SourceKind = "gcs"

	// SourceS3 — копирование файлов из Amazon S3.
	SourceS3 SourceKind = "s3"

	// SourceBigQuery — reverse ETL: выгрузка таблиц или запросов
	// хранилища в файлы для внешних потребителей.
	SourceBigQuery SourceKind = "bigquery"
)

// SourceKinds возвращает все известные виды источников.
func SourceKinds() []SourceKind {
	return []SourceKind{SourceMySQL, SourcePostgreSQL, SourceMSSQL, SourceGCS, SourceS3, SourceBigQuery}
}

// IsRDBMS возвращает true для реляционных источников.
func (k SourceKind) IsRDBMS() bool {
	switch k {
	case SourceMySQL, SourcePostgreSQL, SourceMSSQL:
		return true
	default:
		return false
	}
}

// IsStorage возвращает true для объектных хранилищ.
func (k SourceKind) IsStorage() bool {
	switch k {
	case SourceGCS, SourceS3:
		return true
	default:
		return false
	}
}

// IsWarehouse возвращает true, когда источник — само хранилище (reverse ETL).
func (k SourceKind) IsWarehouse() bool {
	return k == SourceBigQuery
}

// String возвращает строковое представление SourceKind.
func (k SourceKind) String() string {
	return string(k)
}

// SourceType возвращает сегмент пути raw vault для источника:
// "storage" для объектных хранилищ, имя СУБД для остальных.
func (k SourceKind) SourceType() string {
	if k.IsStorage() {
		return "storage"
	}
	return string(k)
}
