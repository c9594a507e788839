package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shaiso/Concert/internal/domain"
)

// PathSeparator — разделитель сегментов полного ID узла.
const PathSeparator = "."

// Виды узлов.
const (
	KindTask  = "task"
	KindGroup = "group"
)

// GraphNode — узел графа: задача или группа.
type GraphNode struct {
	// FullID — идентификатор с путём групп ("Movement_actor.Start.start").
	FullID string

	// LocalID — идентификатор внутри родительской группы.
	LocalID string

	// Kind — KindTask или KindGroup.
	Kind string

	// Task — описание задачи (nil для групп).
	Task *Task

	// Parent — родительская группа (nil на уровне корня).
	Parent *GraphNode

	// Children — дочерние узлы группы в порядке создания.
	Children []*GraphNode

	// InDegree — количество входящих рёбер.
	InDegree int

	// DependsOn — узлы, которые должны завершиться раньше этого.
	DependsOn []*GraphNode

	// Dependents — узлы, которые ждут этот узел.
	Dependents []*GraphNode

	graph *Graph
}

// ID реализует Node.
func (n *GraphNode) ID() string { return n.FullID }

// IsGroup реализует Node.
func (n *GraphNode) IsGroup() bool { return n.Kind == KindGroup }

// Graph — граф одного корневого контейнера.
type Graph struct {
	params domain.DagParameters

	nodes map[string]*GraphNode
	order []*GraphNode // в порядке создания
	top   []*GraphNode // узлы уровня корня
}

func newGraph(params domain.DagParameters) *Graph {
	return &Graph{
		params: params,
		nodes:  make(map[string]*GraphNode),
	}
}

// ID реализует Root.
func (g *Graph) ID() string { return g.params.DagID }

// Params возвращает параметры DAG.
func (g *Graph) Params() domain.DagParameters { return g.params }

// Node возвращает узел по полному ID или nil.
func (g *Graph) Node(id string) *GraphNode { return g.nodes[id] }

// Size возвращает количество узлов (задач и групп).
func (g *Graph) Size() int { return len(g.nodes) }

// Nodes возвращает все узлы в порядке создания.
func (g *Graph) Nodes() []*GraphNode {
	out := make([]*GraphNode, len(g.order))
	copy(out, g.order)
	return out
}

// Tasks возвращает только задачи в порядке создания.
func (g *Graph) Tasks() []*GraphNode {
	tasks := make([]*GraphNode, 0, len(g.order))
	for _, n := range g.order {
		if n.Kind == KindTask {
			tasks = append(tasks, n)
		}
	}
	return tasks
}

// Children возвращает дочерние узлы группы id. Пустой id — уровень корня.
func (g *Graph) Children(id string) []*GraphNode {
	var src []*GraphNode
	if id == "" {
		src = g.top
	} else if n := g.nodes[id]; n != nil {
		src = n.Children
	}
	out := make([]*GraphNode, len(src))
	copy(out, src)
	return out
}

// Predecessors возвращает ID узлов, от которых зависит id, по алфавиту.
func (g *Graph) Predecessors(id string) []string {
	n := g.nodes[id]
	if n == nil {
		return nil
	}
	ids := make([]string, 0, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		ids = append(ids, dep.FullID)
	}
	sort.Strings(ids)
	return ids
}

// Edge — ребро "From завершается раньше To".
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Edges возвращает все рёбра в порядке создания узлов-источников.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0)
	for _, n := range g.order {
		for _, dep := range n.Dependents {
			edges = append(edges, Edge{From: n.FullID, To: dep.FullID})
		}
	}
	return edges
}

// Descendants возвращает ID всех узлов внутри группы id (без неё самой).
func (g *Graph) Descendants(id string) []string {
	prefix := id + PathSeparator
	ids := make([]string, 0)
	for _, n := range g.order {
		if strings.HasPrefix(n.FullID, prefix) {
			ids = append(ids, n.FullID)
		}
	}
	return ids
}

// addNode добавляет узел под parent.
func (g *Graph) addNode(localID, kind string, task *Task, parent *GraphNode) (*GraphNode, error) {
	if localID == "" {
		return nil, ErrEmptyID
	}
	if strings.Contains(localID, PathSeparator) {
		return nil, fmt.Errorf("%w: %q contains %q", ErrInvalidID, localID, PathSeparator)
	}
	if parent != nil && parent.Kind != KindGroup {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, parent.FullID)
	}

	fullID := localID
	if parent != nil {
		fullID = parent.FullID + PathSeparator + localID
	}
	if _, exists := g.nodes[fullID]; exists {
		return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateNode, fullID, g.ID())
	}

	node := &GraphNode{
		FullID:     fullID,
		LocalID:    localID,
		Kind:       kind,
		Task:       task,
		Parent:     parent,
		DependsOn:  make([]*GraphNode, 0),
		Dependents: make([]*GraphNode, 0),
		graph:      g,
	}
	g.nodes[fullID] = node
	g.order = append(g.order, node)
	if parent != nil {
		parent.Children = append(parent.Children, node)
	} else {
		g.top = append(g.top, node)
	}
	return node, nil
}

// resolve проверяет, что ссылка указывает на узел этого графа.
func (g *Graph) resolve(n Node) (*GraphNode, error) {
	if n == nil {
		return nil, nil
	}
	node, ok := n.(*GraphNode)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, n.ID())
	}
	if node.graph != g {
		return nil, fmt.Errorf("%w: %s not in %s", ErrForeignNode, node.FullID, g.ID())
	}
	return node, nil
}

// addEdge добавляет ребро между узлами.
// Дополнительно проверяет на дубликаты, чтобы не считать InDegree дважды.
func (g *Graph) addEdge(from, to *GraphNode) {
	for _, dep := range to.DependsOn {
		if dep == from {
			return // уже связаны
		}
	}
	from.Dependents = append(from.Dependents, to)
	to.DependsOn = append(to.DependsOn, from)
	to.InDegree++
}

// Validate проверяет граф на циклы (алгоритм Кана).
func (g *Graph) Validate() error {
	_, err := g.TopologicalOrder()
	return err
}

// TopologicalOrder возвращает узлы в топологическом порядке рёбер.
// Возвращает ErrCyclicDependency, если порядок невозможен.
func (g *Graph) TopologicalOrder() ([]*GraphNode, error) {
	// Копируем inDegree, чтобы не модифицировать узлы
	inDegree := make(map[*GraphNode]int, len(g.order))
	queue := make([]*GraphNode, 0)
	for _, n := range g.order {
		inDegree[n] = n.InDegree
		if n.InDegree == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]*GraphNode, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range node.Dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g.order) {
		return nil, fmt.Errorf("%w in %s", ErrCyclicDependency, g.ID())
	}
	return order, nil
}
