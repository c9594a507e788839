package concert

import (
	"fmt"

	"github.com/shaiso/Concert/internal/workflow"
)

// Phrase — упорядоченная последовательность мотивов с общим назначением.
//
// Build создаёт группу с именем фразы и собирает мотивы строгой цепочкой:
// каждый следующий мотив обычно читает результат предыдущего.
// Порядок добавления совпадает с порядком выполнения.
type Phrase struct {
	name   string
	motifs []Motif
	sealed bool
}

// NewPhrase создаёт фразу из мотивов.
func NewPhrase(name string, motifs ...Motif) *Phrase {
	return &Phrase{
		name:   name,
		motifs: append([]Motif(nil), motifs...),
	}
}

// Name возвращает имя фразы.
func (p *Phrase) Name() string { return p.name }

// Len возвращает количество мотивов.
func (p *Phrase) Len() int { return len(p.motifs) }

// Motifs возвращает копию списка мотивов.
func (p *Phrase) Motifs() []Motif {
	return append([]Motif(nil), p.motifs...)
}

// AddMotif добавляет мотив в конец фразы. После Build запрещено.
func (p *Phrase) AddMotif(m Motif) error {
	if p.sealed {
		return NewConfigurationError("phrase", p.name,
			fmt.Sprintf("cannot add motif %s after build", m.Name()), ErrPhraseSealed)
	}
	p.motifs = append(p.motifs, m)
	return nil
}

// Build собирает фразу в scope.Parent и возвращает её группу.
func (p *Phrase) Build(scope Scope) (workflow.Node, error) {
	p.sealed = true

	if err := checkName("phrase", p.name); err != nil {
		return nil, err
	}
	if len(p.motifs) == 0 {
		return nil, NewConfigurationError("phrase", p.name, "no motifs to build", ErrEmptyPhrase)
	}

	group, err := scope.Group(p.name)
	if err != nil {
		return nil, fmt.Errorf("create phrase group %s: %w", p.name, err)
	}
	inner := scope.Within(group)

	var prev workflow.Node
	for _, m := range p.motifs {
		node, err := m.Build(inner)
		if err != nil {
			return nil, fmt.Errorf("build motif %s in phrase %s: %w", m.Name(), p.name, err)
		}
		if prev != nil {
			if err := inner.Chain(prev, node); err != nil {
				return nil, fmt.Errorf("chain motif %s in phrase %s: %w", m.Name(), p.name, err)
			}
		}
		prev = node
	}

	scope.Log().Debug("phrase built", "phrase", group.ID(), "motifs", len(p.motifs))
	return group, nil
}
