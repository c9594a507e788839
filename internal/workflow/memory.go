package workflow

import (
	"fmt"
	"slices"
	"sync"

	"github.com/shaiso/Concert/internal/domain"
)

// Memory — in-memory реализация Service.
//
// Каждый корневой контейнер — отдельный Graph. Реестр корней защищён
// мьютексом, поэтому один экземпляр можно переиспользовать в serve.
// Сам граф во время сборки принадлежит одной горутине.
type Memory struct {
	mu    sync.RWMutex
	roots map[string]*Graph
	order []string
}

var (
	_ Service = (*Memory)(nil)
	_ Dropper = (*Memory)(nil)
)

// NewMemory создаёт пустой in-memory сервис.
func NewMemory() *Memory {
	return &Memory{
		roots: make(map[string]*Graph),
	}
}

// CreateRoot создаёт граф для DAG params.DagID.
func (m *Memory) CreateRoot(params domain.DagParameters) (Root, error) {
	if params.DagID == "" {
		return nil, fmt.Errorf("%w: dag_id", ErrEmptyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.roots[params.DagID]; exists {
		return nil, fmt.Errorf("%w: root %s", ErrDuplicateNode, params.DagID)
	}

	g := newGraph(params)
	m.roots[params.DagID] = g
	m.order = append(m.order, params.DagID)
	return g, nil
}

// CreateGroup создаёт группу id внутри parent.
func (m *Memory) CreateGroup(root Root, id string, parent Node) (Node, error) {
	g, err := m.graph(root)
	if err != nil {
		return nil, err
	}
	p, err := g.resolve(parent)
	if err != nil {
		return nil, err
	}
	return g.addNode(id, KindGroup, nil, p)
}

// CreateTask регистрирует задачу внутри parent.
func (m *Memory) CreateTask(root Root, task Task, parent Node) (Node, error) {
	g, err := m.graph(root)
	if err != nil {
		return nil, err
	}
	p, err := g.resolve(parent)
	if err != nil {
		return nil, err
	}
	t := task
	return g.addNode(task.ID, KindTask, &t, p)
}

// Chain добавляет ребро predecessor → successor.
func (m *Memory) Chain(root Root, predecessor, successor Node) error {
	g, err := m.graph(root)
	if err != nil {
		return err
	}
	if predecessor == nil || successor == nil {
		return fmt.Errorf("%w: nil chain endpoint", ErrUnknownNode)
	}
	from, err := g.resolve(predecessor)
	if err != nil {
		return err
	}
	to, err := g.resolve(successor)
	if err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: %s depends on itself", ErrCyclicDependency, from.FullID)
	}
	g.addEdge(from, to)
	return nil
}

// Drop удаляет корень вместе со всеми узлами.
func (m *Memory) Drop(root Root) error {
	g, err := m.graph(root)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.roots, g.ID())
	m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == g.ID() })
	return nil
}

// Graph возвращает граф корня id.
func (m *Memory) Graph(id string) (*Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.roots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoot, id)
	}
	return g, nil
}

// Graphs возвращает все графы в порядке создания корней.
func (m *Memory) Graphs() []*Graph {
	m.mu.RLock()
	defer m.mu.RUnlock()

	graphs := make([]*Graph, 0, len(m.order))
	for _, id := range m.order {
		graphs = append(graphs, m.roots[id])
	}
	return graphs
}

// graph проверяет, что root создан этим сервисом.
func (m *Memory) graph(root Root) (*Graph, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrUnknownRoot)
	}
	g, ok := root.(*Graph)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoot, root.ID())
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if registered := m.roots[g.ID()]; registered != g {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoot, g.ID())
	}
	return g, nil
}
