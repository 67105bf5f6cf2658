package statestore

// SliceContainer is the simplest Container[W]: a plain slice of elements.
// It is a convenient default for callers whose per-bin state is just "the
// set of values in this bin" and is used by cmd/megaflow and by the store,
// operator and cluster tests (the state-machine layer uses its own
// FoldContainer).
type SliceContainer[W any] struct {
	Items []W
}

// NewSliceContainer returns a NewContainerFunc producing empty SliceContainers.
func NewSliceContainer[W any]() NewContainerFunc[W] {
	return func() Container[W] {
		return &SliceContainer[W]{}
	}
}

func (c *SliceContainer[W]) Extend(chunk W) {
	c.Items = append(c.Items, chunk)
}

func (c *SliceContainer[W]) Elements() []W {
	return c.Items
}
