package workflow

import "errors"

// Ошибки построения графа.
var (
	// ErrEmptyID — пустой идентификатор корня, группы или задачи.
	ErrEmptyID = errors.New("empty node ID")

	// ErrInvalidID — идентификатор содержит разделитель пути PathSeparator.
	ErrInvalidID = errors.New("invalid node ID")

	// ErrDuplicateNode — узел с таким полным ID уже существует.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownNode — узел не найден.
	ErrUnknownNode = errors.New("unknown node")

	// ErrForeignNode — узел принадлежит другому корневому контейнеру.
	ErrForeignNode = errors.New("node belongs to another root")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrUnknownRoot — корневой контейнер не зарегистрирован в сервисе.
	ErrUnknownRoot = errors.New("unknown root")

	// ErrNotGroup — родителем может быть только группа.
	ErrNotGroup = errors.New("parent is not a group")
)
