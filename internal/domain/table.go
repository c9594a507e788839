package domain

// Table — таблица-источник, для которой строится Movement.
//
// Table — это "цель" (target) композиции: одна запись каталога,
// одна единица переноса данных. После загрузки из конфигурации не изменяется.
type Table struct {
	// Name — имя таблицы в источнике (например, "actor", "payment").
	Name string `json:"name" yaml:"name"`

	// PrimaryKey — имя поля первичного ключа.
	// Необязателен, но без него нельзя построить merge.
	PrimaryKey string `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`

	// Fields — список полей таблицы в порядке источника.
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Overrides — переопределения шаблона MovementParameters для этой таблицы.
	Overrides *MovementParameters `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Field — поле таблицы.
type Field struct {
	// Name — имя поля.
	Name string `json:"name" yaml:"name"`

	// Type — тип поля в хранилище (STRING, INT64, TIMESTAMP, ...).
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Description — описание поля.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// PII — поле содержит персональные данные и хранится в отдельной таблице.
	PII bool `json:"pii,omitempty" yaml:"pii,omitempty"`
}

// FieldNames возвращает имена полей в исходном порядке.
func (t Table) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

// PIIColumns возвращает имена полей с персональными данными.
func (t Table) PIIColumns() []string {
	var cols []string
	for _, f := range t.Fields {
		if f.PII {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// HasField проверяет наличие поля с указанным именем.
func (t Table) HasField(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
