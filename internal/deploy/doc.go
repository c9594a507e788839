// Package deploy — публикация манифестов DAG.
//
// Манифест записывается в объектное хранилище по ключу dags/{dag_id}.json,
// затем о нём объявляется сообщением manifest.published.
//
// Включает:
//   - store.go     — интерфейс Store и ключи манифестов
//   - minio.go     — Store поверх MinIO/S3 (minio-go)
//   - publisher.go — Publisher: запись, объявление, метрики
//   - index.go     — Index последних объявлений для serve
package deploy
