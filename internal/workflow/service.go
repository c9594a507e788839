package workflow

import "github.com/shaiso/Concert/internal/domain"

// Service — абстракция над движком workflow.
//
// Создаёт корневые контейнеры (DAG), группы и задачи внутри них
// и объявляет порядок выполнения. Реализация владеет узлами,
// вызывающая сторона хранит только ссылки.
type Service interface {
	// CreateRoot создаёт корневой контейнер из параметров DAG.
	CreateRoot(params domain.DagParameters) (Root, error)

	// CreateGroup создаёт группу id внутри parent. nil parent — уровень корня.
	CreateGroup(root Root, id string, parent Node) (Node, error)

	// CreateTask регистрирует задачу внутри parent. nil parent — уровень корня.
	CreateTask(root Root, task Task, parent Node) (Node, error)

	// Chain объявляет, что predecessor завершается раньше successor.
	Chain(root Root, predecessor, successor Node) error
}

// Dropper — необязательное расширение Service: удаление корня,
// сборка которого завершилась ошибкой.
type Dropper interface {
	Drop(root Root) error
}

// Root — ссылка на корневой контейнер.
type Root interface {
	// ID возвращает идентификатор DAG.
	ID() string
}

// Node — ссылка на задачу или группу.
type Node interface {
	// ID возвращает полный идентификатор узла (с путём групп).
	ID() string

	// IsGroup возвращает true для групп.
	IsGroup() bool
}

// Task — описание задачи, передаваемое движку.
type Task struct {
	// ID — локальный идентификатор внутри родительской группы.
	ID string `json:"id"`

	// Operator — тип оператора движка (например, "bigquery_insert_job").
	Operator string `json:"operator"`

	// Config — параметры оператора.
	Config map[string]any `json:"config,omitempty"`
}
