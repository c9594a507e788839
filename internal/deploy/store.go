package deploy

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound — манифест не найден в хранилище.
var ErrNotFound = errors.New("manifest not found")

// Store — объектное хранилище манифестов.
type Store interface {
	// Put записывает data по ключу key и возвращает адрес объекта.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get читает объект. Отсутствующий объект — ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List возвращает ключи с префиксом prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ManifestPrefix — каталог манифестов в бакете.
const ManifestPrefix = "dags/"

// ManifestKey возвращает ключ манифеста DAG.
func ManifestKey(dagID string) string {
	return ManifestPrefix + dagID + ".json"
}

// DagIDFromKey возвращает dag_id по ключу манифеста.
func DagIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, ManifestPrefix) || !strings.HasSuffix(key, ".json") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, ManifestPrefix), ".json")
	return id, id != "" && !strings.Contains(id, "/")
}
