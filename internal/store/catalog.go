// internal/store/catalog.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopassist/internal/common/logger"
	"shopassist/internal/common/metrics"
	"shopassist/internal/models"
)

var ErrCatalogQueryFailed = errors.New("CATALOG_QUERY_FAILED")

// Catalog exposes the structured lookups backing the tool registry. Absence of
// a matching row is reported as an empty result, never as an error.
type Catalog struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCatalog(db *sql.DB, log logger.Logger) *Catalog {
	return &Catalog{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

func (c *Catalog) OrderByID(ctx context.Context, orderID string) (models.LookupResult, error) {
	defer c.observe("query_order_by_id", time.Now())

	var (
		oid, userID, status   string
		gender                sql.NullString
		createdAt             time.Time
		returnedAt, shippedAt sql.NullTime
		deliveredAt           sql.NullTime
		numOfItem             int
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT order_id, user_id, status, gender, created_at,
		       returned_at, shipped_at, delivered_at, num_of_item
		FROM orders
		WHERE order_id = $1`, orderID).Scan(
		&oid, &userID, &status, &gender, &createdAt,
		&returnedAt, &shippedAt, &deliveredAt, &numOfItem,
	)
	if err != nil {
		return noRowsOrError(err)
	}

	rec := models.Record{
		"order_id":     oid,
		"user_id":      userID,
		"status":       status,
		"gender":       nullString(gender),
		"created_at":   createdAt,
		"returned_at":  nullTime(returnedAt),
		"shipped_at":   nullTime(shippedAt),
		"delivered_at": nullTime(deliveredAt),
		"num_of_item":  numOfItem,
	}
	return models.LookupResult{Data: rec, RowCount: 1}, nil
}

func (c *Catalog) OrdersByUserID(ctx context.Context, userID string) (models.LookupResult, error) {
	defer c.observe("query_orders_by_user_id", time.Now())

	rows, err := c.db.QueryContext(ctx, `
		SELECT order_id, user_id, status, created_at, num_of_item
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}
	defer rows.Close()

	var recs []models.Record
	for rows.Next() {
		var (
			oid, uid, status string
			createdAt        time.Time
			numOfItem        int
		)
		if err := rows.Scan(&oid, &uid, &status, &createdAt, &numOfItem); err != nil {
			return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
		}
		recs = append(recs, models.Record{
			"order_id":    oid,
			"user_id":     uid,
			"status":      status,
			"created_at":  createdAt,
			"num_of_item": numOfItem,
		})
	}
	if err := rows.Err(); err != nil {
		return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}
	if len(recs) == 0 {
		return models.LookupResult{}, nil
	}
	return models.LookupResult{Data: recs, RowCount: len(recs)}, nil
}

func (c *Catalog) ProductByID(ctx context.Context, productID string) (models.LookupResult, error) {
	defer c.observe("query_product_by_id", time.Now())
	return c.productBy(ctx, "id = $1", productID)
}

// ProductByName is the Postgres exact-match fallback; the registry prefers the
// Elasticsearch search path when it is configured.
func (c *Catalog) ProductByName(ctx context.Context, name string) (models.LookupResult, error) {
	defer c.observe("query_product_by_name", time.Now())
	return c.productBy(ctx, "LOWER(name) = LOWER($1)", name)
}

func (c *Catalog) productBy(ctx context.Context, where string, arg string) (models.LookupResult, error) {
	var (
		id, name             string
		cost, retailPrice    sql.NullFloat64
		category, brand      sql.NullString
		department, sku      sql.NullString
		distributionCenterID sql.NullString
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, cost, category, brand, retail_price,
		       department, sku, distribution_center_id
		FROM products
		WHERE `+where+`
		LIMIT 1`, arg).Scan(
		&id, &name, &cost, &category, &brand, &retailPrice,
		&department, &sku, &distributionCenterID,
	)
	if err != nil {
		return noRowsOrError(err)
	}

	rec := models.Record{
		"id":                     id,
		"name":                   name,
		"cost":                   nullFloat(cost),
		"category":               nullString(category),
		"brand":                  nullString(brand),
		"retail_price":           nullFloat(retailPrice),
		"department":             nullString(department),
		"sku":                    nullString(sku),
		"distribution_center_id": nullString(distributionCenterID),
	}
	return models.LookupResult{Data: rec, RowCount: 1}, nil
}

func (c *Catalog) UserByID(ctx context.Context, userID string) (models.LookupResult, error) {
	defer c.observe("query_user_by_id", time.Now())
	return c.userBy(ctx, "id = $1", userID)
}

func (c *Catalog) UserByEmail(ctx context.Context, email string) (models.LookupResult, error) {
	defer c.observe("query_user_by_email", time.Now())
	return c.userBy(ctx, "LOWER(email) = LOWER($1)", email)
}

func (c *Catalog) userBy(ctx context.Context, where string, arg string) (models.LookupResult, error) {
	var (
		id, firstName, lastName, email string
		age                            sql.NullInt64
		gender, city, state, country   sql.NullString
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, age, gender, city, state, country
		FROM users
		WHERE `+where+`
		LIMIT 1`, arg).Scan(
		&id, &firstName, &lastName, &email, &age, &gender, &city, &state, &country,
	)
	if err != nil {
		return noRowsOrError(err)
	}

	rec := models.Record{
		"id":         id,
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"age":        nullInt(age),
		"gender":     nullString(gender),
		"city":       nullString(city),
		"state":      nullString(state),
		"country":    nullString(country),
	}
	return models.LookupResult{Data: rec, RowCount: 1}, nil
}

func (c *Catalog) InventoryByProductID(ctx context.Context, productID string) (models.LookupResult, error) {
	defer c.observe("query_inventory_by_product_id", time.Now())
	return c.inventoryBy(ctx, "product_id = $1", productID)
}

func (c *Catalog) InventoryItemByID(ctx context.Context, itemID string) (models.LookupResult, error) {
	defer c.observe("query_inventory_item_by_id", time.Now())
	return c.inventoryBy(ctx, "id = $1", itemID)
}

func (c *Catalog) inventoryBy(ctx context.Context, where string, arg string) (models.LookupResult, error) {
	var (
		id, productID string
		cost          sql.NullFloat64
		createdAt     time.Time
		soldAt        sql.NullTime
		productName   sql.NullString
		productBrand  sql.NullString
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, product_id, cost, created_at, sold_at, product_name, product_brand
		FROM inventory_items
		WHERE `+where+`
		LIMIT 1`, arg).Scan(
		&id, &productID, &cost, &createdAt, &soldAt, &productName, &productBrand,
	)
	if err != nil {
		return noRowsOrError(err)
	}

	rec := models.Record{
		"id":            id,
		"product_id":    productID,
		"cost":          nullFloat(cost),
		"created_at":    createdAt,
		"sold_at":       nullTime(soldAt),
		"product_name":  nullString(productName),
		"product_brand": nullString(productBrand),
	}
	return models.LookupResult{Data: rec, RowCount: 1}, nil
}

func (c *Catalog) DistributionCenterByID(ctx context.Context, dcID string) (models.LookupResult, error) {
	defer c.observe("query_distribution_center", time.Now())

	var (
		id, name            string
		latitude, longitude sql.NullFloat64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, latitude, longitude
		FROM distribution_centers
		WHERE id = $1`, dcID).Scan(&id, &name, &latitude, &longitude)
	if err != nil {
		return noRowsOrError(err)
	}

	rec := models.Record{
		"id":        id,
		"name":      name,
		"latitude":  nullFloat(latitude),
		"longitude": nullFloat(longitude),
	}
	return models.LookupResult{Data: rec, RowCount: 1}, nil
}

func (c *Catalog) OrderItems(ctx context.Context, orderID, userID string) (models.LookupResult, error) {
	defer c.observe("query_order_items", time.Now())

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, order_id, user_id, product_id, inventory_item_id, status, created_at
		FROM order_items
		WHERE order_id = $1 AND user_id = $2
		ORDER BY created_at`, orderID, userID)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}
	defer rows.Close()

	var recs []models.Record
	for rows.Next() {
		var (
			id, oid, uid, productID string
			inventoryItemID         sql.NullString
			status                  string
			createdAt               time.Time
		)
		if err := rows.Scan(&id, &oid, &uid, &productID, &inventoryItemID, &status, &createdAt); err != nil {
			return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
		}
		recs = append(recs, models.Record{
			"id":                id,
			"order_id":          oid,
			"user_id":           uid,
			"product_id":        productID,
			"inventory_item_id": nullString(inventoryItemID),
			"status":            status,
			"created_at":        createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
	}
	if len(recs) == 0 {
		return models.LookupResult{}, nil
	}
	return models.LookupResult{Data: recs, RowCount: len(recs)}, nil
}

func (c *Catalog) OrderItemByID(ctx context.Context, itemID string) (models.LookupResult, error) {
	defer c.observe("query_order_item_by_id", time.Now())

	var (
		id, orderID, userID, productID string
		status                         string
		createdAt                      time.Time
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, order_id, user_id, product_id, status, created_at
		FROM order_items
		WHERE id = $1`, itemID).Scan(&id, &orderID, &userID, &productID, &status, &createdAt)
	if err != nil {
		return noRowsOrError(err)
	}

	rec := models.Record{
		"id":         id,
		"order_id":   orderID,
		"user_id":    userID,
		"product_id": productID,
		"status":     status,
		"created_at": createdAt,
	}
	return models.LookupResult{Data: rec, RowCount: 1}, nil
}

func (c *Catalog) observe(tool string, start time.Time) {
	metrics.LookupDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

func noRowsOrError(err error) (models.LookupResult, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return models.LookupResult{}, nil
	}
	return models.LookupResult{}, fmt.Errorf("%w: %v", ErrCatalogQueryFailed, err)
}

func nullString(v sql.NullString) interface{} {
	if v.Valid {
		return v.String
	}
	return nil
}

func nullFloat(v sql.NullFloat64) interface{} {
	if v.Valid {
		return v.Float64
	}
	return nil
}

func nullInt(v sql.NullInt64) interface{} {
	if v.Valid {
		return v.Int64
	}
	return nil
}

func nullTime(v sql.NullTime) interface{} {
	if v.Valid {
		return v.Time
	}
	return nil
}
