// internal/chat/renderer/templates.go
package renderer

import (
	"fmt"
	"sort"
	"strings"

	"shopassist/internal/chat/registry"
	"shopassist/internal/models"
)

// RenderTemplate formats a lookup result deterministically, one fixed layout
// per tool. Missing fields render as placeholders, never as an error. Pure;
// safe to call from anywhere.
func RenderTemplate(tool string, result models.LookupResult, params []string) string {
	switch tool {
	case registry.ToolOrderByID:
		rec, _ := result.SingleRecord()
		id := "unknown"
		if len(params) > 0 {
			id = params[0]
		}
		return fmt.Sprintf("Order %s status: %s.", id, fieldOr(rec, "status", "Unknown"))

	case registry.ToolProductByID, registry.ToolProductByName:
		rec, _ := result.SingleRecord()
		return strings.Join([]string{
			"Product: " + field(rec, "name"),
			"Brand: " + field(rec, "brand"),
			"Category: " + field(rec, "category"),
			"Department: " + field(rec, "department"),
			"Retail Price: $" + field(rec, "retail_price"),
			"Cost: $" + field(rec, "cost"),
			"SKU: " + field(rec, "sku"),
			"Distribution Center ID: " + field(rec, "distribution_center_id"),
		}, "\n")

	case registry.ToolUserByID, registry.ToolUserByEmail:
		rec, _ := result.SingleRecord()
		return strings.Join([]string{
			fmt.Sprintf("User: %s %s", fieldOr(rec, "first_name", ""), fieldOr(rec, "last_name", "")),
			"Email: " + field(rec, "email"),
			"Age: " + field(rec, "age"),
			"Gender: " + field(rec, "gender"),
			fmt.Sprintf("Location: %s, %s, %s", field(rec, "city"), field(rec, "state"), field(rec, "country")),
		}, "\n")

	case registry.ToolInventoryByProductID, registry.ToolInventoryItemByID:
		rec, _ := result.SingleRecord()
		return strings.Join([]string{
			"Inventory Item ID: " + field(rec, "id"),
			"Product ID: " + field(rec, "product_id"),
			"Cost: $" + field(rec, "cost"),
			"Created At: " + field(rec, "created_at"),
			"Sold At: " + field(rec, "sold_at"),
		}, "\n")

	case registry.ToolDistributionCenter:
		rec, _ := result.SingleRecord()
		return strings.Join([]string{
			"Distribution Center: " + field(rec, "name"),
			"ID: " + field(rec, "id"),
			"Latitude: " + field(rec, "latitude"),
			"Longitude: " + field(rec, "longitude"),
		}, "\n")

	case registry.ToolOrderItems:
		recs, ok := result.Records()
		if !ok || len(recs) == 0 {
			return "No order items found."
		}
		lines := make([]string, 0, len(recs))
		for _, item := range recs {
			lines = append(lines, fmt.Sprintf(
				"Order Item ID: %s, Product ID: %s, Status: %s",
				field(item, "id"), field(item, "product_id"), field(item, "status"),
			))
		}
		return "Order Items:\n" + strings.Join(lines, "\n")

	default:
		return renderGeneric(result)
	}
}

// renderGeneric flattens any result as sorted key: value pairs.
func renderGeneric(result models.LookupResult) string {
	rec, ok := result.SingleRecord()
	if !ok {
		if recs, isList := result.Records(); isList && len(recs) > 0 {
			parts := make([]string, 0, len(recs))
			for _, r := range recs {
				parts = append(parts, renderGeneric(models.LookupResult{Data: r, RowCount: 1}))
			}
			return strings.Join(parts, "\n")
		}
		return "Result: (empty)"
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s: %v", k, rec[k]))
	}
	return "Result: " + strings.Join(pairs, ", ")
}

func field(rec models.Record, key string) string {
	return fieldOr(rec, key, "N/A")
}

func fieldOr(rec models.Record, key, fallback string) string {
	if rec == nil {
		return fallback
	}
	v, ok := rec[key]
	if !ok || v == nil {
		return fallback
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return fallback
	}
	return s
}
