package pgmodel

// Merger is implemented by configuration types that know how to lay
// themselves over a complete set of defaults. Fields set on the receiver
// win; every other field keeps its default.
type Merger[T any] interface {
	MergeOver(defaults T) T
}

// Options holds the effective configuration produced by merging an
// optional partial input over complete defaults. The merged value is
// fixed at construction.
type Options[T Merger[T]] struct {
	config T
}

// NewOptions merges input over defaults. A nil input yields defaults
// unchanged.
func NewOptions[T Merger[T]](input *T, defaults T) *Options[T] {
	if input == nil {
		return &Options[T]{config: defaults}
	}
	return &Options[T]{config: (*input).MergeOver(defaults)}
}

// Config returns a copy of the merged configuration.
func (o *Options[T]) Config() T {
	return o.config
}
