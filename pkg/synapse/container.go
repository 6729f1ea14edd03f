package synapse

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Container holds the providers generated handlers are bound to
type Container struct {
	mu        sync.RWMutex
	providers map[string]Provider
	services  map[string]bool
}

// NewContainer creates an empty container
func NewContainer() *Container {
	return &Container{
		providers: make(map[string]Provider),
		services:  make(map[string]bool),
	}
}

// RegisterProvider adds p under its token. Tokens must be unique.
func (c *Container) RegisterProvider(p Provider) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := p.GetToken()
	if _, exists := c.providers[token]; exists {
		return fmt.Errorf("provider %s is already registered", token)
	}
	c.providers[token] = p
	return nil
}

// RegisterMethods registers one provider per exported method of instance.
// Provider ids are derived from the method name and the bare type name of
// instance, matching the ids the generator emits for injected fields.
func (c *Container) RegisterMethods(instance any) error {
	value := reflect.ValueOf(instance)
	if !value.IsValid() {
		return fmt.Errorf("cannot register methods of nil")
	}

	typeName := serviceTypeName(value.Type())
	methods := value.Type()
	if methods.NumMethod() == 0 {
		return fmt.Errorf("type %s has no exported methods", typeName)
	}

	for i := 0; i < methods.NumMethod(); i++ {
		name := methods.Method(i).Name
		provider, err := NewMethodProvider(DeriveProviderID(name, typeName), value.Method(i).Interface())
		if err != nil {
			return err
		}
		if err := c.RegisterProvider(provider); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.services[typeName] = true
	c.mu.Unlock()
	return nil
}

func serviceTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	// instantiated generics report "Repo[int]"
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// Provider looks up a provider by id
func (c *Container) Provider(id string) (Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.providers[id]
	return p, ok
}

// Bind stores the provider registered under id into dst
func (c *Container) Bind(id string, dst *Provider) error {
	p, ok := c.Provider(id)
	if !ok {
		return fmt.Errorf("no provider registered for %s", id)
	}
	*dst = p
	return nil
}

// Tokens returns every registered provider id in sorted order
func (c *Container) Tokens() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tokens := make([]string, 0, len(c.providers))
	for token := range c.providers {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Validate reports the dependencies of m that were never registered
// through RegisterMethods
func (c *Container) Validate(m Manager) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []string
	for _, dep := range m.GetDependencies() {
		if !c.services[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("manager %s: missing services: %s", m.GetToken(), strings.Join(missing, ", "))
	}
	return nil
}

// Handlers validates each manager and collects its handlers in order
func (c *Container) Handlers(managers ...Manager) ([]Handler, error) {
	var handlers []Handler
	for _, m := range managers {
		if err := c.Validate(m); err != nil {
			return nil, err
		}
		hs, err := m.GetHandlers(c)
		if err != nil {
			return nil, fmt.Errorf("manager %s: %w", m.GetToken(), err)
		}
		handlers = append(handlers, hs...)
	}
	return handlers, nil
}
