package bigquery

import (
	"regexp"

	"github.com/shaiso/Concert/internal/concert"
)

var referencePattern = regexp.MustCompile(`^([^.]*)\.([^.]*)\.([^.]*)$`)

// TableReference — ссылка на таблицу в формате API.
type TableReference struct {
	ProjectID string `json:"projectId"`
	DatasetID string `json:"datasetId"`
	TableID   string `json:"tableId"`
}

// ParseTableReference разбирает "project.dataset.table".
func ParseTableReference(uri string) (TableReference, error) {
	m := referencePattern.FindStringSubmatch(uri)
	if m == nil || m[1] == "" || m[2] == "" || m[3] == "" {
		return TableReference{}, concert.NewConfigurationError("table reference", uri,
			"expected project.dataset.table", concert.ErrMalformedReference)
	}
	return TableReference{ProjectID: m[1], DatasetID: m[2], TableID: m[3]}, nil
}

// String возвращает ссылку в формате "project.dataset.table".
func (r TableReference) String() string {
	return r.ProjectID + "." + r.DatasetID + "." + r.TableID
}

// TableURI собирает "project.dataset.prefix_name". Пустой prefix опускается.
func TableURI(project, dataset, prefix, name string) string {
	table := name
	if prefix != "" {
		table = prefix + "_" + name
	}
	return project + "." + dataset + "." + table
}
