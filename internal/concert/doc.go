// Package concert — ядро сборки пайплайнов.
//
// Четыре уровня: Composition → Movement → Phrase → Motif.
// Каждый уровень создаёт группу в workflow.Service, собирает в неё
// дочерние элементы и связывает их последовательной цепочкой.
//
// Включает:
//   - motif.go       — контракт Motif и Scope (куда строить)
//   - phrase.go      — Phrase, цепочка мотивов
//   - movement.go    — Movement, цепочка фраз
//   - composition.go — Composition, Build и BuildMulti
//   - variants.go    — выбор MovementBuilder по виду источника
//   - errors.go      — ConfigurationError, UnsupportedVariantError
//
// Конкретные мотивы и фразы живут в пакетах motif, phrase и ingestion.
package concert
