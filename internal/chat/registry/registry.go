// internal/chat/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"regexp"

	"shopassist/internal/models"
)

// Tool names are the wire contract shared by the context extractor, the
// model directive format, and the dispatcher. Use these exactly.
const (
	ToolOrderByID            = "query_order_by_id"
	ToolOrdersByUserID       = "query_orders_by_user_id"
	ToolProductByID          = "query_product_by_id"
	ToolProductByName        = "query_product_by_name"
	ToolUserByID             = "query_user_by_id"
	ToolUserByEmail          = "query_user_by_email"
	ToolInventoryByProductID = "query_inventory_by_product_id"
	ToolInventoryItemByID    = "query_inventory_item_by_id"
	ToolDistributionCenter   = "query_distribution_center"
	ToolOrderItems           = "query_order_items"
	ToolOrderItemByID        = "query_order_item_by_id"
)

// LookupFunc executes one structured lookup. The dispatcher validates arity
// before calling, so implementations may index params directly.
type LookupFunc func(ctx context.Context, params []string) (models.LookupResult, error)

// Spec describes one registered tool. Immutable after registration.
type Spec struct {
	Name        string
	Description string
	Pattern     *regexp.Regexp
	Arity       int
	Invoke      LookupFunc
}

// Registry is the fixed catalog of tools, built once at startup.
type Registry struct {
	specs map[string]*Spec
	order []string
}

func New() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

func (r *Registry) Register(spec *Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if spec.Arity < 1 || spec.Arity > 2 {
		return fmt.Errorf("tool %s: arity must be 1 or 2, got %d", spec.Name, spec.Arity)
	}
	if spec.Invoke == nil {
		return fmt.Errorf("tool %s: invoke function is required", spec.Name)
	}
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("tool %s: already registered", spec.Name)
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Resolve returns the spec for a tool name. Unknown names report false,
// never an error or a panic.
func (r *Registry) Resolve(name string) (*Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns all registered specs in registration order.
func (r *Registry) Specs() []*Spec {
	out := make([]*Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}
