package concert

import (
	"log/slog"

	"github.com/shaiso/Concert/internal/workflow"
)

// Motif — наименьшая собираемая единица пайплайна.
//
// Build регистрирует ровно одну задачу в scope.Parent, либо (для
// составных мотивов) группу с последовательной подцепочкой задач.
// Мотив без обязательных параметров возвращает ConfigurationError
// с ErrNotBound.
type Motif interface {
	// Name — имя мотива; по умолчанию имя типа.
	Name() string

	// Build собирает мотив в scope.Parent и возвращает его узел.
	Build(scope Scope) (workflow.Node, error)
}

// Scope — место сборки: сервис, корневой контейнер и родительская группа.
type Scope struct {
	// Service — движок, в котором создаются узлы.
	Service workflow.Service

	// Root — корневой контейнер.
	Root workflow.Root

	// Parent — родительская группа; nil — уровень корня.
	Parent workflow.Node

	// Logger — логгер сборки; nil — slog.Default().
	Logger *slog.Logger
}

// Within возвращает копию scope с другой родительской группой.
func (s Scope) Within(parent workflow.Node) Scope {
	s.Parent = parent
	return s
}

// Log возвращает логгер scope.
func (s Scope) Log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Task регистрирует задачу в родительской группе scope.
func (s Scope) Task(task workflow.Task) (workflow.Node, error) {
	return s.Service.CreateTask(s.Root, task, s.Parent)
}

// Group создаёт группу id в родительской группе scope.
func (s Scope) Group(id string) (workflow.Node, error) {
	return s.Service.CreateGroup(s.Root, id, s.Parent)
}

// Chain связывает узлы в порядке перечисления: nodes[i] → nodes[i+1].
func (s Scope) Chain(nodes ...workflow.Node) error {
	for i := 1; i < len(nodes); i++ {
		if err := s.Service.Chain(s.Root, nodes[i-1], nodes[i]); err != nil {
			return err
		}
	}
	return nil
}
