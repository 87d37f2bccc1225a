// cmd/tools/data-loader/main.go
//
// Bulk-loads the e-commerce catalog CSV dataset into PostgreSQL and reindexes
// products into Elasticsearch. Each table is replaced wholesale; the loader is
// idempotent and safe to re-run.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"shopassist/internal/common/config"
	"shopassist/internal/common/database"
	"shopassist/internal/common/logger"
)

type tableSpec struct {
	File    string
	Table   string
	Columns []string
	DDL     string
}

// Identifier columns are TEXT throughout so lookups can take user-supplied
// tokens like "ORD-9981" without numeric coercion.
var tables = []tableSpec{
	{
		File:    "distribution_centers.csv",
		Table:   "distribution_centers",
		Columns: []string{"id", "name", "latitude", "longitude"},
		DDL: `CREATE TABLE IF NOT EXISTS distribution_centers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION
		)`,
	},
	{
		File:    "products.csv",
		Table:   "products",
		Columns: []string{"id", "cost", "category", "name", "brand", "retail_price", "department", "sku", "distribution_center_id"},
		DDL: `CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			cost DOUBLE PRECISION,
			category TEXT,
			name TEXT NOT NULL,
			brand TEXT,
			retail_price DOUBLE PRECISION,
			department TEXT,
			sku TEXT,
			distribution_center_id TEXT
		)`,
	},
	{
		File:    "users.csv",
		Table:   "users",
		Columns: []string{"id", "first_name", "last_name", "email", "age", "gender", "city", "state", "country"},
		DDL: `CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			age INTEGER,
			gender TEXT,
			city TEXT,
			state TEXT,
			country TEXT
		)`,
	},
	{
		File:    "orders.csv",
		Table:   "orders",
		Columns: []string{"order_id", "user_id", "status", "gender", "created_at", "returned_at", "shipped_at", "delivered_at", "num_of_item"},
		DDL: `CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			gender TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			returned_at TIMESTAMPTZ,
			shipped_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			num_of_item INTEGER NOT NULL DEFAULT 0
		)`,
	},
	{
		File:    "inventory_items.csv",
		Table:   "inventory_items",
		Columns: []string{"id", "product_id", "created_at", "sold_at", "cost", "product_name", "product_brand"},
		DDL: `CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			sold_at TIMESTAMPTZ,
			cost DOUBLE PRECISION,
			product_name TEXT,
			product_brand TEXT
		)`,
	},
	{
		File:    "order_items.csv",
		Table:   "order_items",
		Columns: []string{"id", "order_id", "user_id", "product_id", "inventory_item_id", "status", "created_at"},
		DDL: `CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			inventory_item_id TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	},
}

func main() {
	dataDir := flag.String("data", "dataset", "Directory containing the catalog CSV files")
	skipES := flag.Bool("skip-es", false, "Skip Elasticsearch product reindexing")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	for _, spec := range tables {
		path := filepath.Join(*dataDir, spec.File)
		count, err := loadTable(ctx, pg.DB, spec, path)
		if err != nil {
			zapLog.Fatal("table load failed",
				zap.String("table", spec.Table),
				zap.String("file", path),
				zap.Error(err),
			)
		}
		zapLog.Info("table loaded",
			zap.String("table", spec.Table),
			zap.Int("rows", count),
		)
	}

	if *skipES || !cfg.Database.Elasticsearch.Enabled {
		zapLog.Info("Elasticsearch reindex skipped")
		return
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch connection failed", zap.Error(err))
	}

	indexed, err := reindexProducts(ctx, pg.DB, es, cfg.Database.Elasticsearch.ProductIndex)
	if err != nil {
		zapLog.Fatal("product reindex failed", zap.Error(err))
	}
	zapLog.Info("products reindexed",
		zap.String("index", cfg.Database.Elasticsearch.ProductIndex),
		zap.Int("documents", indexed),
	)
}

// loadTable replaces the table contents with the CSV rows inside one
// transaction. A missing file skips the table rather than failing the run.
func loadTable(ctx context.Context, db *sql.DB, spec tableSpec, path string) (int, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		fmt.Printf("File not found, skipping: %s\n", path)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := db.ExecContext(ctx, spec.DDL); err != nil {
		return 0, fmt.Errorf("create table %s: %w", spec.Table, err)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	for _, col := range spec.Columns {
		if _, ok := colIndex[col]; !ok {
			return 0, fmt.Errorf("column %s missing from %s", col, spec.File)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+spec.Table); err != nil {
		return 0, fmt.Errorf("clear table %s: %w", spec.Table, err)
	}

	placeholders := ""
	for i := range spec.Columns {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Table, joinColumns(spec.Columns), placeholders)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row %d: %w", count+1, err)
		}

		args := make([]interface{}, len(spec.Columns))
		for i, col := range spec.Columns {
			value := row[colIndex[col]]
			if value == "" {
				args[i] = nil
			} else {
				args[i] = value
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d into %s: %w", count+1, spec.Table, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

// reindexProducts streams the products table into the search index, one
// document per product keyed by product id.
func reindexProducts(ctx context.Context, db *sql.DB, es *database.ElasticsearchClient, index string) (int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, cost, category, brand, retail_price,
		       department, sku, distribution_center_id
		FROM products`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id, name             string
			cost, retailPrice    sql.NullFloat64
			category, brand      sql.NullString
			department, sku      sql.NullString
			distributionCenterID sql.NullString
		)
		if err := rows.Scan(&id, &name, &cost, &category, &brand, &retailPrice,
			&department, &sku, &distributionCenterID); err != nil {
			return 0, err
		}

		doc := map[string]interface{}{
			"id":           id,
			"name":         name,
			"indexed_at":   time.Now().UTC(),
			"cost":         nullable(cost.Float64, cost.Valid),
			"category":     nullable(category.String, category.Valid),
			"brand":        nullable(brand.String, brand.Valid),
			"retail_price": nullable(retailPrice.Float64, retailPrice.Valid),
			"department":   nullable(department.String, department.Valid),
			"sku":          nullable(sku.String, sku.Valid),

			"distribution_center_id": nullable(distributionCenterID.String, distributionCenterID.Valid),
		}

		body, err := json.Marshal(doc)
		if err != nil {
			return 0, err
		}

		req := esapi.IndexRequest{
			Index:      index,
			DocumentID: id,
			Body:       bytes.NewReader(body),
		}
		res, err := req.Do(ctx, es.Client)
		if err != nil {
			return 0, fmt.Errorf("index product %s: %w", id, err)
		}
		if res.IsError() {
			res.Body.Close()
			return 0, fmt.Errorf("index product %s: %s", id, res.Status())
		}
		res.Body.Close()
		count++
	}
	return count, rows.Err()
}

func nullable(v interface{}, valid bool) interface{} {
	if !valid {
		return nil
	}
	return v
}
