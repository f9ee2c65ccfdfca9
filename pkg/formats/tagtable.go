package formats

import (
	"errors"
	"fmt"
	"iter"
)

// TagEndOfFile names the entry that terminates a LOD's tag table.
const TagEndOfFile = "#EndOfFile#"

// ErrReservedTagName is returned when a caller tries to store the terminator
// entry as a regular tag.
var ErrReservedTagName = errors.New("reserved tag name")

// TagTable is an ordered mapping from tag name to opaque payload. Iteration
// follows insertion order, which is also the order tags are written in.
// The zero value is an empty table ready to use.
type TagTable struct {
	names []string
	data  [][]byte
	index map[string]int
}

// Len returns the number of tags.
func (t *TagTable) Len() int {
	return len(t.names)
}

// Names returns the tag names in order.
func (t *TagTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether a tag with the given name exists.
func (t *TagTable) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the payload stored under name.
func (t *TagTable) Get(name string) ([]byte, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.data[i], true
}

// Set stores payload under name. A new name is appended at the end; an
// existing name keeps its position and gets the new payload.
func (t *TagTable) Set(name string, payload []byte) error {
	if name == TagEndOfFile {
		return fmt.Errorf("%w: %q", ErrReservedTagName, name)
	}
	if i, ok := t.index[name]; ok {
		t.data[i] = payload
		return nil
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.data = append(t.data, payload)
	return nil
}

// Delete removes the named tag, keeping the relative order of the rest.
func (t *TagTable) Delete(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.names = append(t.names[:i], t.names[i+1:]...)
	t.data = append(t.data[:i], t.data[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.names); j++ {
		t.index[t.names[j]] = j
	}
	return true
}

// All iterates over name/payload pairs in order.
func (t *TagTable) All() iter.Seq2[string, []byte] {
	return func(yield func(string, []byte) bool) {
		for i, name := range t.names {
			if !yield(name, t.data[i]) {
				return
			}
		}
	}
}
