package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntriesSorted(t *testing.T) {
	p := NewBindGroupProvider("scene",
		WithStorage(2, 12, true),
		WithUniform(0, 16),
		WithStorage(1, 64, false),
	)

	assert.Equal(t, "scene", p.Label())
	entries := p.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Binding: 0, Kind: BindingUniform, Size: 16}, entries[0])
	assert.Equal(t, BindingStorage, entries[1].Kind)
	assert.Equal(t, BindingReadOnlyStorage, entries[2].Kind)
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.BindGroup())
}

func TestSetEntrySize(t *testing.T) {
	p := NewBindGroupProvider("image", WithStorage(1, 16, false))
	p.SetEntrySize(1, 1024)
	p.SetEntrySize(7, 8)

	e, ok := p.Entry(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1024), e.Size)
	_, ok = p.Entry(7)
	assert.False(t, ok)

	p.Release()
}

func TestBufferWriteKey(t *testing.T) {
	p := NewBindGroupProvider("params")
	assert.Equal(t, "params/12", BufferWrite{Provider: p, Binding: 12}.Key())
	assert.Equal(t, "<nil>", BufferWrite{}.Key())
}
