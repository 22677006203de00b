// Package di provides a minimal service registry with typed tokens.
// Factories are registered once and evaluated lazily on first Get;
// resolved instances are cached (singleton semantics).
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the service registered under name, resolving its
	// factory on first access. Panics if the name is unknown.
	Get(name string) any
}

// Container is the write side: modules register services during startup.
type Container interface {
	ServiceRegistry
	// Register stores a ready-made instance under name.
	Register(name string, instance any)
	// RegisterFactory stores a lazily-evaluated constructor under name.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	instance any
	factory  func(ServiceRegistry) any
	resolved bool
}

type container struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

func (c *container) Register(name string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{instance: instance, resolved: true}
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{factory: factory}
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	if e.resolved {
		c.mu.Unlock()
		return e.instance
	}
	// Resolve outside the lock so factories can Get their own deps.
	factory := e.factory
	c.mu.Unlock()

	instance := factory(c)

	c.mu.Lock()
	e.instance = instance
	e.resolved = true
	c.mu.Unlock()

	return instance
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a token with a unique registry name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registry name of the token.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory under the token's name.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a token to its typed instance.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	v := sr.Get(token.name)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token.name, v))
	}
	return typed
}
