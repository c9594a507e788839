package catalog

import (
	"context"

	"github.com/shaiso/Concert/internal/domain"
)

// Static — каталог с фиксированным списком таблиц.
type Static struct {
	tables []domain.Table
}

// NewStatic создаёт каталог из tables. Порядок сохраняется.
func NewStatic(tables []domain.Table) *Static {
	return &Static{tables: cloneTables(tables)}
}

// List возвращает копию списка таблиц.
func (s *Static) List(ctx context.Context) ([]domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneTables(s.tables), nil
}

func cloneTables(tables []domain.Table) []domain.Table {
	out := make([]domain.Table, len(tables))
	for i, t := range tables {
		out[i] = t
		out[i].Fields = append([]domain.Field(nil), t.Fields...)
		if t.Overrides != nil {
			o := *t.Overrides
			out[i].Overrides = &o
		}
	}
	return out
}
