package drivers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// ErrFactoryNotFound is returned when no factory is registered for a product.
var ErrFactoryNotFound = errors.New("driver factory not found")

// Registry manages the registration and retrieval of engine factories.
type Registry struct {
	factories map[dbcapabilities.Product]Factory
	mu        sync.RWMutex
}

// NewRegistry creates a new factory registry. Tests use instance registries;
// production code uses the global one fed by engine-package init functions.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[dbcapabilities.Product]Factory),
	}
}

// Register registers a factory for a product. An existing registration for
// the same product is replaced.
func (r *Registry) Register(product dbcapabilities.Product, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[product] = factory
}

// Get retrieves a registered factory by product.
// Returns ErrFactoryNotFound if no factory is registered.
func (r *Registry) Get(product dbcapabilities.Product) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[product]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFactoryNotFound, product)
	}

	return factory, nil
}

// GetByName retrieves a registered factory by product name, alias, or driver
// name ("postgresql", "pgx", "sqlite3", ...).
func (r *Registry) GetByName(name string) (Factory, error) {
	product, ok := dbcapabilities.ParseProduct(name)
	if !ok {
		product, ok = dbcapabilities.MatchDriverName(name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown driver name %q", ErrFactoryNotFound, name)
	}

	return r.Get(product)
}

// IsRegistered checks whether a factory is registered for the product.
func (r *Registry) IsRegistered(product dbcapabilities.Product) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[product]
	return exists
}

// ListRegistered returns the products that have a registered factory.
func (r *Registry) ListRegistered() []dbcapabilities.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]dbcapabilities.Product, 0, len(r.factories))
	for product := range r.factories {
		products = append(products, product)
	}

	return products
}

// Unregister removes a factory from the registry.
func (r *Registry) Unregister(product dbcapabilities.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.factories, product)
}

// globalRegistry is the default process-wide factory registry.
var globalRegistry = NewRegistry()

// Register registers a factory in the global registry.
func Register(product dbcapabilities.Product, factory Factory) {
	globalRegistry.Register(product, factory)
}

// Get retrieves a factory from the global registry.
func Get(product dbcapabilities.Product) (Factory, error) {
	return globalRegistry.Get(product)
}

// GetByName retrieves a factory from the global registry by name or alias.
func GetByName(name string) (Factory, error) {
	return globalRegistry.GetByName(name)
}

// IsRegistered checks the global registry for a product's factory.
func IsRegistered(product dbcapabilities.Product) bool {
	return globalRegistry.IsRegistered(product)
}

// ListRegistered returns all products registered in the global registry.
func ListRegistered() []dbcapabilities.Product {
	return globalRegistry.ListRegistered()
}

// GlobalRegistry returns the global factory registry.
func GlobalRegistry() *Registry {
	return globalRegistry
}
