package deploy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Concert/internal/mq"
)

// Index — последние объявления о манифестах по dag_id.
//
// Наполняется из очереди manifests.published; HandleMessage
// подходит как mq.Handler.
type Index struct {
	mu      sync.RWMutex
	entries map[string]mq.ManifestPublishedPayload
}

// NewIndex создаёт пустой Index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]mq.ManifestPublishedPayload)}
}

// Record запоминает объявление, заменяя предыдущее для того же DAG.
func (i *Index) Record(p mq.ManifestPublishedPayload) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[p.DagID] = p
}

// Get возвращает последнее объявление для dagID.
func (i *Index) Get(dagID string) (mq.ManifestPublishedPayload, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	p, ok := i.entries[dagID]
	return p, ok
}

// Snapshot возвращает объявления, отсортированные по dag_id.
func (i *Index) Snapshot() []mq.ManifestPublishedPayload {
	i.mu.RLock()
	out := make([]mq.ManifestPublishedPayload, 0, len(i.entries))
	for _, p := range i.entries {
		out = append(out, p)
	}
	i.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].DagID < out[b].DagID })
	return out
}

// HandleMessage реализует mq.Handler.
func (i *Index) HandleMessage(_ context.Context, msg *mq.Message) error {
	if msg.Type != mq.MessageTypeManifestPublished {
		return fmt.Errorf("unexpected message type %q", msg.Type)
	}
	p, err := mq.ParsePayload[mq.ManifestPublishedPayload](msg)
	if err != nil {
		return err
	}
	if p.DagID == "" {
		return fmt.Errorf("manifest announcement %s has no dag_id", msg.ID)
	}
	i.Record(p)
	return nil
}
