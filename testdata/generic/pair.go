package generic

type Key string

//buildit:builder
type Pair[K comparable, V any] struct {
	key   Option[K]
	value Option[V]
	// Label is converted from a plain string.
	label Option[Key] `buildit:"into"`
}
