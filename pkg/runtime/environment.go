package runtime

import (
	"fmt"
	"sort"
)

// UndefinedError reports a name absent from every frame of the chain.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'", e.Name)
}

// DeleteError reports a failed `del`. Outer distinguishes "exists only in an
// enclosing frame" from "does not exist at all"; both are scope violations.
type DeleteError struct {
	Name  string
	Outer bool
}

func (e *DeleteError) Error() string {
	if e.Outer {
		return fmt.Sprintf("Cannot delete variable '%s' from outer scope", e.Name)
	}
	return fmt.Sprintf("Cannot delete undefined variable '%s'", e.Name)
}

// Environment is one frame of the lexical scope chain. Frames are linked by
// parent pointers; the map storage is shared by reference, so closures that
// capture an Environment observe later mutations and vice versa. Instance
// handles stored in frames are never cloned on frame entry or exit.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a frame, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Declare inserts a binding in the current frame, shadowing any outer
// binding for the remainder of this frame's lifetime.
func (e *Environment) Declare(name string, value Value) {
	e.values[name] = value
}

// Assign walks outward from the current frame and mutates the first frame
// that already declares the name. Assigning an undeclared name is an error;
// declaration requires `let`.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return &UndefinedError{Name: name}
}

// Get searches innermost to outermost for a binding.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, &UndefinedError{Name: name}
}

// Has reports whether the name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, err := e.Get(name)
	return err == nil
}

// HasLocal reports whether the name is bound in the current frame.
func (e *Environment) HasLocal(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Delete removes a binding from the current frame only. A name that exists
// only in an outer frame cannot be deleted from here.
func (e *Environment) Delete(name string) error {
	if _, ok := e.values[name]; ok {
		delete(e.values, name)
		return nil
	}
	for env := e.parent; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			return &DeleteError{Name: name, Outer: true}
		}
	}
	return &DeleteError{Name: name}
}

// Keys returns the current frame's bindings in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the current frame's bindings (handles, not contents).
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Extend pushes a child frame onto the chain.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
