package concert

import (
	"sort"

	"github.com/shaiso/Concert/internal/domain"
)

// Variants — отображение вида источника на MovementBuilder.
type Variants map[domain.SourceKind]MovementBuilder

// Lookup возвращает builder для kind.
// Для незарегистрированного вида возвращает *UnsupportedVariantError.
func (v Variants) Lookup(kind domain.SourceKind) (MovementBuilder, error) {
	if builder, ok := v[kind]; ok && builder != nil {
		return builder, nil
	}
	return nil, &UnsupportedVariantError{Variant: kind.String(), Known: v.Known()}
}

// Known возвращает зарегистрированные виды по алфавиту.
func (v Variants) Known() []string {
	known := make([]string, 0, len(v))
	for kind := range v {
		known = append(known, kind.String())
	}
	sort.Strings(known)
	return known
}
