package motif

import (
	"github.com/shaiso/Concert/internal/concert"
	"github.com/shaiso/Concert/internal/workflow"
)

// Start — пустая задача, отмечающая начало фазы.
type Start struct {
	named
	phase string
}

// NewStart создаёт Start для фазы phase.
func NewStart(name, phase string) Start {
	return Start{named: newNamed(name, "Start"), phase: phase}
}

// Build реализует concert.Motif.
func (m Start) Build(scope concert.Scope) (workflow.Node, error) {
	return scope.Task(workflow.Task{
		ID:       m.name,
		Operator: OperatorStart,
		Config:   phaseConfig(m.phase),
	})
}

// End — пустая задача, отмечающая конец фазы.
type End struct {
	named
	phase string
}

// NewEnd создаёт End для фазы phase.
func NewEnd(name, phase string) End {
	return End{named: newNamed(name, "End"), phase: phase}
}

// Build реализует concert.Motif.
func (m End) Build(scope concert.Scope) (workflow.Node, error) {
	return scope.Task(workflow.Task{
		ID:       m.name,
		Operator: OperatorEnd,
		Config:   phaseConfig(m.phase),
	})
}

func phaseConfig(phase string) map[string]any {
	if phase == "" {
		return nil
	}
	return map[string]any{"phase": phase}
}
