package jsonbind

// objStack holds context objects. The base entry is borrowed from the caller;
// every entry above it is owned by the frame that pushed it and released by
// that frame through the mark returned from push.
type objStack struct {
	items []any
}

func (o *objStack) len() int { return len(o.items) }

func (o *objStack) top() any {
	if len(o.items) == 0 {
		return nil
	}
	return o.items[len(o.items)-1]
}

// push adds v and returns the mark to release it with.
func (o *objStack) push(v any) int {
	mark := len(o.items)
	o.items = append(o.items, v)
	return mark
}

// release pops every entry at or above mark.
func (o *objStack) release(mark int) {
	if mark < 0 {
		mark = 0
	}
	for i := mark; i < len(o.items); i++ {
		o.items[i] = nil
	}
	if mark < len(o.items) {
		o.items = o.items[:mark]
	}
}

func (o *objStack) snapshot() []any { return append([]any(nil), o.items...) }
