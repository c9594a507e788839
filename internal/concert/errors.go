package concert

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shaiso/Concert/internal/workflow"
)

// Ошибки конфигурации сборщика.
var (
	// ErrEmptyPhrase — фраза не содержит мотивов.
	ErrEmptyPhrase = errors.New("phrase has no motifs")

	// ErrEmptyMovement — movement не содержит фраз.
	ErrEmptyMovement = errors.New("movement has no phrases")

	// ErrNotBound — мотив собирается без обязательных параметров.
	ErrNotBound = errors.New("required parameters are not bound")

	// ErrMalformedReference — ссылка на таблицу не в формате project.dataset.table.
	ErrMalformedReference = errors.New("malformed table reference")

	// ErrPhraseSealed — мотив добавляется в уже собранную фразу.
	ErrPhraseSealed = errors.New("phrase is already built")

	// ErrInvalidParameter — недопустимое значение параметра.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrUnsupportedVariant — для вида источника нет зарегистрированного builder.
var ErrUnsupportedVariant = errors.New("unsupported variant")

// ConfigurationError — ошибка конфигурации с контекстом.
//
// Означает ошибку программиста или конфигурации, обнаруженную до запуска
// задач. Никогда не повторяется.
type ConfigurationError struct {
	Component string // уровень или тип: "phrase", "MergeTable", "merge query"
	Name      string // имя экземпляра
	Message   string // описание ошибки
	Err       error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Component)
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap возвращает базовую ошибку.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError создаёт новую ошибку конфигурации.
func NewConfigurationError(component, name, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Name:      name,
		Message:   message,
		Err:       err,
	}
}

// checkName проверяет имя группы: непустое и без разделителя пути.
func checkName(component, name string) error {
	if name == "" {
		return NewConfigurationError(component, "", "name is empty", ErrInvalidParameter)
	}
	if strings.Contains(name, workflow.PathSeparator) {
		return NewConfigurationError(component, name,
			"name must not contain "+strconv.Quote(workflow.PathSeparator), ErrInvalidParameter)
	}
	return nil
}

// NotBound — ошибка сборки мотива без вызова Bind.
func NotBound(component, name, param string) *ConfigurationError {
	return NewConfigurationError(component, name, param+" is not bound", ErrNotBound)
}

// UnsupportedVariantError — запрошенный вариант не зарегистрирован.
type UnsupportedVariantError struct {
	Variant string   // запрошенный вариант
	Known   []string // зарегистрированные варианты
}

// Error реализует интерфейс error.
func (e *UnsupportedVariantError) Error() string {
	msg := "unsupported variant " + `"` + e.Variant + `"`
	if len(e.Known) > 0 {
		msg += " (known: " + strings.Join(e.Known, ", ") + ")"
	}
	return msg
}

// Unwrap возвращает ErrUnsupportedVariant.
func (e *UnsupportedVariantError) Unwrap() error {
	return ErrUnsupportedVariant
}
