// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"shopassist/internal/common/logger"
	"shopassist/internal/models"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
)

// ProductSearch resolves product names through an Elasticsearch match query,
// so users don't have to type the exact catalog name.
type ProductSearch struct {
	client  *elasticsearch.Client
	index   string
	maxHits int
	logger  logger.Logger
}

func NewProductSearch(client *elasticsearch.Client, index string, maxHits int, log logger.Logger) *ProductSearch {
	return &ProductSearch{
		client:  client,
		index:   index,
		maxHits: maxHits,
		logger:  log.WithFields(map[string]interface{}{"component": "product-search"}),
	}
}

// ByName returns the best-matching product for the given name, or an empty
// result when nothing scores.
func (s *ProductSearch) ByName(ctx context.Context, name string) (models.LookupResult, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"name": map[string]interface{}{
					"query":     name,
					"fuzziness": "AUTO",
				},
			},
		},
	}

	body, _ := json.Marshal(queryBody)
	size := s.maxHits

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.LookupResult{}, ErrSearchTimeout
		}
		return models.LookupResult{}, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return models.LookupResult{}, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	var searchResponse struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResponse); err != nil {
		return models.LookupResult{}, fmt.Errorf("%w: decode error: %v", ErrSearchQueryFailed, err)
	}

	if len(searchResponse.Hits.Hits) == 0 {
		return models.LookupResult{}, nil
	}

	// Top hit only: the tool contract is a single product card.
	rec := models.Record(searchResponse.Hits.Hits[0].Source)

	s.logger.Debug("product name resolved", map[string]interface{}{
		"query":     name,
		"totalHits": searchResponse.Hits.Total.Value,
	})

	return models.LookupResult{Data: rec, RowCount: 1}, nil
}
