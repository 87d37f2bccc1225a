// internal/chat/registry/catalog.go
package registry

import (
	"context"
	"regexp"

	"shopassist/internal/models"
)

// CatalogLookups is the set of structured lookups the registry binds tools
// to. *store.Catalog satisfies it.
type CatalogLookups interface {
	OrderByID(ctx context.Context, orderID string) (models.LookupResult, error)
	OrdersByUserID(ctx context.Context, userID string) (models.LookupResult, error)
	ProductByID(ctx context.Context, productID string) (models.LookupResult, error)
	ProductByName(ctx context.Context, name string) (models.LookupResult, error)
	UserByID(ctx context.Context, userID string) (models.LookupResult, error)
	UserByEmail(ctx context.Context, email string) (models.LookupResult, error)
	InventoryByProductID(ctx context.Context, productID string) (models.LookupResult, error)
	InventoryItemByID(ctx context.Context, itemID string) (models.LookupResult, error)
	DistributionCenterByID(ctx context.Context, dcID string) (models.LookupResult, error)
	OrderItems(ctx context.Context, orderID, userID string) (models.LookupResult, error)
	OrderItemByID(ctx context.Context, itemID string) (models.LookupResult, error)
}

// NameSearcher resolves product names through the search index. Optional; when
// nil the registry falls back to the catalog's exact-match lookup.
type NameSearcher interface {
	ByName(ctx context.Context, name string) (models.LookupResult, error)
}

func one(fn func(ctx context.Context, arg string) (models.LookupResult, error)) LookupFunc {
	return func(ctx context.Context, params []string) (models.LookupResult, error) {
		return fn(ctx, params[0])
	}
}

func two(fn func(ctx context.Context, a, b string) (models.LookupResult, error)) LookupFunc {
	return func(ctx context.Context, params []string) (models.LookupResult, error) {
		return fn(ctx, params[0], params[1])
	}
}

// BuildDefault constructs the full tool catalog over the given lookups.
func BuildDefault(catalog CatalogLookups, search NameSearcher) (*Registry, error) {
	productByName := catalog.ProductByName
	if search != nil {
		productByName = search.ByName
	}

	specs := []*Spec{
		{
			Name:        ToolOrderByID,
			Description: "Query order details by order ID",
			Pattern:     regexp.MustCompile(`(?i)(?:order|status).*?(?:id)[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.OrderByID),
		},
		{
			Name:        ToolOrdersByUserID,
			Description: "Query all orders by user ID",
			Pattern:     regexp.MustCompile(`(?i)orders?.*?user[\s_]?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.OrdersByUserID),
		},
		{
			Name:        ToolProductByID,
			Description: "Query product details by product ID",
			Pattern:     regexp.MustCompile(`(?i)product.*?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.ProductByID),
		},
		{
			Name:        ToolProductByName,
			Description: "Query product details by product name",
			Pattern:     regexp.MustCompile(`(?i)product.*?name[\s:]*['"]?([^'"]+)['"]?`),
			Arity:       1,
			Invoke:      one(productByName),
		},
		{
			Name:        ToolUserByID,
			Description: "Query user details by user ID",
			Pattern:     regexp.MustCompile(`(?i)user.*?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.UserByID),
		},
		{
			Name:        ToolUserByEmail,
			Description: "Query user details by email address",
			Pattern:     regexp.MustCompile(`user.*?email[\s:]*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
			Arity:       1,
			Invoke:      one(catalog.UserByEmail),
		},
		{
			Name:        ToolInventoryByProductID,
			Description: "Query inventory by product ID",
			Pattern:     regexp.MustCompile(`(?i)(?:inventory|stock).*?product[\s_]?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.InventoryByProductID),
		},
		{
			Name:        ToolInventoryItemByID,
			Description: "Query inventory item by item ID",
			Pattern:     regexp.MustCompile(`(?i)inventory.*?item.*?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.InventoryItemByID),
		},
		{
			Name:        ToolDistributionCenter,
			Description: "Query distribution center details",
			Pattern:     regexp.MustCompile(`(?i)(?:distribution|dc).*?(?:center|id)[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.DistributionCenterByID),
		},
		{
			Name:        ToolOrderItems,
			Description: "Query order items by order ID and user ID",
			Pattern:     regexp.MustCompile(`(?i)order.*?items.*?order[\s_]?id[\s:]*([A-Za-z0-9-]+).*?user[\s_]?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       2,
			Invoke:      two(catalog.OrderItems),
		},
		{
			Name:        ToolOrderItemByID,
			Description: "Query order item by item ID",
			Pattern:     regexp.MustCompile(`(?i)order.*?item.*?id[\s:]*([A-Za-z0-9-]+)`),
			Arity:       1,
			Invoke:      one(catalog.OrderItemByID),
		},
	}

	reg := New()
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
