package bind_group_provider

import "strconv"

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Key returns "label/binding", used to identify the target buffer in logs and recordings.
func (w BufferWrite) Key() string {
	if w.Provider == nil {
		return "<nil>"
	}
	return w.Provider.Label() + "/" + strconv.Itoa(w.Binding)
}
