package kernel

// Registry holds kernels in numbered slots with support for temporary
// overrides.
//
// The estimation engine reads the template kernel from slot 0; kernel
// selection registers its candidates in a separate registry. An override
// shadows the base kernel of a slot until RestoreKernelAt puts the base
// back, and Cleanup discards all overrides. Installing a new template via
// MMD.SetKernel replaces the base kernel of slot 0 outright.
//
// A Registry is owned by a single goroutine; it performs no locking. Slot
// indices follow slice semantics: out-of-range access panics.
type Registry struct {
	kernels   []Kernel
	overrides []Kernel
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NumKernels returns the number of slots.
func (r *Registry) NumKernels() int {
	return len(r.kernels)
}

// PushBack appends a kernel in a new slot.
func (r *Registry) PushBack(k Kernel) {
	r.kernels = append(r.kernels, k)
	r.overrides = append(r.overrides, nil)
}

// KernelAt returns the active kernel of slot i: the override if one is
// installed, the base kernel otherwise.
func (r *Registry) KernelAt(i int) Kernel {
	if r.overrides[i] != nil {
		return r.overrides[i]
	}
	return r.kernels[i]
}

// BaseKernelAt returns the base kernel of slot i, ignoring any override.
func (r *Registry) BaseKernelAt(i int) Kernel {
	return r.kernels[i]
}

// SetKernelAt replaces the base kernel of slot i. Any override on the slot
// stays in effect until restored.
func (r *Registry) SetKernelAt(i int, k Kernel) {
	r.kernels[i] = k
}

// OverrideKernelAt installs a temporary kernel in slot i, shadowing the base
// kernel until RestoreKernelAt.
func (r *Registry) OverrideKernelAt(i int, k Kernel) {
	r.overrides[i] = k
}

// RestoreKernelAt removes the override of slot i, making the base kernel
// active again.
func (r *Registry) RestoreKernelAt(i int) {
	r.overrides[i] = nil
}

// RestoreAll removes every override.
func (r *Registry) RestoreAll() {
	for i := range r.overrides {
		r.overrides[i] = nil
	}
}

// Clear removes all slots and overrides.
func (r *Registry) Clear() {
	r.kernels = nil
	r.overrides = nil
}
