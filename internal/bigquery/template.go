package bigquery

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// templateFuncs — функции SQL шаблонов.
var templateFuncs = template.FuncMap{
	// backtick — `имя`
	"backtick": func(s string) string {
		return "`" + s + "`"
	},

	// join — strings.Join с разделителем первым аргументом
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},
}

// mustParse разбирает шаблон пакета; ошибка — ошибка программиста.
func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

// render выполняет шаблон и обрезает пробелы по краям.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
