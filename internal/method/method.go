package method

import (
	"fmt"

	"github.com/slok/blendeval/internal/model"
)

// Registry is the ordered and immutable set of method descriptors the
// optimizer exposes. Order is the fan-out and reporting order.
type Registry struct {
	methods []model.MethodDescriptor
	index   map[string]int
}

// NewRegistry returns a validated registry.
func NewRegistry(methods []model.MethodDescriptor) (*Registry, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("at least one method is required: %w", model.ErrNotValid)
	}

	r := &Registry{
		methods: make([]model.MethodDescriptor, 0, len(methods)),
		index:   make(map[string]int, len(methods)),
	}
	for _, m := range methods {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("invalid method: %w", err)
		}
		if _, ok := r.index[m.Name]; ok {
			return nil, fmt.Errorf("method %s is duplicated: %w", m.Name, model.ErrNotValid)
		}
		r.index[m.Name] = len(r.methods)
		r.methods = append(r.methods, m)
	}

	return r, nil
}

// List returns the descriptors in order.
func (r *Registry) List() []model.MethodDescriptor {
	return append([]model.MethodDescriptor(nil), r.methods...)
}

// Get returns the descriptor of a method.
func (r *Registry) Get(name string) (model.MethodDescriptor, error) {
	i, ok := r.index[name]
	if !ok {
		return model.MethodDescriptor{}, fmt.Errorf("method %q: %w", name, model.ErrMethodDescriptorMissing)
	}
	return r.methods[i], nil
}

// Default returns the registry with the methods the blend optimizer ships with.
func Default() *Registry {
	r, err := NewRegistry([]model.MethodDescriptor{
		descriptor("linear"),
		descriptor("genetic"),
		descriptor("pso"),
		descriptor("annealing"),
	})
	if err != nil {
		panic(err)
	}
	return r
}

func descriptor(name string) model.MethodDescriptor {
	return model.MethodDescriptor{
		Name:         name,
		StartPath:    "/" + name + "/start/",
		ProgressPath: "/" + name + "/progress/",
		StopPath:     "/" + name + "/stop/",
	}
}
