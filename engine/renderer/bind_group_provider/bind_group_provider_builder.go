package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithEntry declares a buffer binding.
//
// Parameters:
//   - binding: the binding index
//   - kind: the buffer binding type
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that declares the binding on the provider
func WithEntry(binding int, kind BindingKind, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.entries[binding] = Entry{Binding: binding, Kind: kind, Size: size}
	}
}

// WithUniform declares a uniform buffer binding.
func WithUniform(binding int, size uint64) BindGroupProviderOption {
	return WithEntry(binding, BindingUniform, size)
}

// WithStorage declares a storage buffer binding, read-only when readOnly is set.
func WithStorage(binding int, size uint64, readOnly bool) BindGroupProviderOption {
	kind := BindingStorage
	if readOnly {
		kind = BindingReadOnlyStorage
	}
	return WithEntry(binding, kind, size)
}
