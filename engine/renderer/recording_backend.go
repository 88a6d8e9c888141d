package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/reactor/engine/renderer/bind_group_provider"
)

// RecordingBackend is a RendererBackend that keeps every call in memory instead of talking to a GPU.
// It backs headless compilation runs and tests.
type RecordingBackend struct {
	mu *sync.Mutex

	groups     []bind_group_provider.BindGroupProvider
	inits      map[string]int
	writes     map[string][]byte
	writeCount int
	dispatches [][3]uint32
	presents   int
	size       [2]int
	released   bool
}

var _ RendererBackend = &RecordingBackend{}

// NewRecordingBackend returns an empty RecordingBackend.
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{
		mu:     &sync.Mutex{},
		inits:  make(map[string]int),
		writes: make(map[string][]byte),
	}
}

func (b *RecordingBackend) Init(groups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	b.groups = groups
	b.mu.Unlock()
	for _, g := range groups {
		if err := b.InitBindGroup(g); err != nil {
			return err
		}
	}
	return nil
}

func (b *RecordingBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits[provider.Label()]++
	return nil
}

func (b *RecordingBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range writes {
		b.writes[w.Key()] = append([]byte(nil), w.Data...)
		b.writeCount++
	}
}

func (b *RecordingBackend) Dispatch(workGroupCount [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatches = append(b.dispatches, workGroupCount)
	return nil
}

func (b *RecordingBackend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presents++
	return nil
}

func (b *RecordingBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size = [2]int{width, height}
}

func (b *RecordingBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}

// Last returns the most recent data written to a buffer, keyed as "label/binding".
//
// Parameters:
//   - key: the buffer key, e.g. "parameters/0"
//
// Returns:
//   - []byte: a copy of the last write
//   - bool: false if the buffer was never written
func (b *RecordingBackend) Last(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.writes[key]
	return data, ok
}

// Groups returns the providers passed to Init.
func (b *RecordingBackend) Groups() []bind_group_provider.BindGroupProvider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.groups
}

// InitCount returns how many times the provider with the given label was initialized.
func (b *RecordingBackend) InitCount(label string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inits[label]
}

// WriteCount returns the total number of buffer writes.
func (b *RecordingBackend) WriteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeCount
}

// Dispatches returns the workgroup counts of every dispatch in order.
func (b *RecordingBackend) Dispatches() [][3]uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][3]uint32(nil), b.dispatches...)
}

// Presents returns the number of Present calls.
func (b *RecordingBackend) Presents() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presents
}

// Size returns the last size passed to Resize.
func (b *RecordingBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size[0], b.size[1]
}

// Released reports whether Release was called.
func (b *RecordingBackend) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
