package concert

import (
	"fmt"

	"github.com/shaiso/Concert/internal/workflow"
)

// Movement — полный перенос данных одной цели: упорядоченные фразы.
//
// Собирается той же цепочкой, что и Phrase, уровнем выше:
// группа фразы i предшествует группе фразы i+1.
type Movement struct {
	name    string
	phrases []*Phrase
}

// NewMovement создаёт movement из фраз. nil-фразы пропускаются,
// так необязательные фразы можно передавать без условий.
func NewMovement(name string, phrases ...*Phrase) *Movement {
	m := &Movement{name: name}
	for _, p := range phrases {
		if p != nil {
			m.phrases = append(m.phrases, p)
		}
	}
	return m
}

// Name возвращает имя movement.
func (m *Movement) Name() string { return m.name }

// Phrases возвращает копию списка фраз.
func (m *Movement) Phrases() []*Phrase {
	return append([]*Phrase(nil), m.phrases...)
}

// Build собирает movement в scope.Parent (nil — уровень корня).
func (m *Movement) Build(scope Scope) (workflow.Node, error) {
	if err := checkName("movement", m.name); err != nil {
		return nil, err
	}
	if len(m.phrases) == 0 {
		return nil, NewConfigurationError("movement", m.name, "no phrases to build", ErrEmptyMovement)
	}

	group, err := scope.Group(m.name)
	if err != nil {
		return nil, fmt.Errorf("create movement group %s: %w", m.name, err)
	}
	inner := scope.Within(group)

	var prev workflow.Node
	for _, p := range m.phrases {
		node, err := p.Build(inner)
		if err != nil {
			return nil, fmt.Errorf("build movement %s: %w", m.name, err)
		}
		if prev != nil {
			if err := inner.Chain(prev, node); err != nil {
				return nil, fmt.Errorf("chain phrase %s in movement %s: %w", p.Name(), m.name, err)
			}
		}
		prev = node
	}

	scope.Log().Debug("movement built", "movement", group.ID(), "phrases", len(m.phrases))
	return group, nil
}
