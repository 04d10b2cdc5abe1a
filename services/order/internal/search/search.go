// Package search indexes orders into Elasticsearch and serves full-text
// queries over them. Indexing is best-effort after commit; the database stays
// the source of truth.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"

	"orderhub/services/order/internal/models"
)

const indexName = "orders"

type OrderDoc struct {
	ID              uint      `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	UserID          uint      `json:"userId"`
	Status          string    `json:"status"`
	TotalAmount     float64   `json:"totalAmount"`
	ShippingAddress string    `json:"shippingAddress"`
	ProductNames    []string  `json:"productNames"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Index struct {
	es *elasticsearch.Client
}

func NewIndex(addresses []string, username, password string) (*Index, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}
	return &Index{es: es}, nil
}

func docFromOrder(o *models.Order) OrderDoc {
	names := make([]string, 0, len(o.Items))
	for i := range o.Items {
		names = append(names, o.Items[i].ProductName)
	}
	return OrderDoc{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		ProductNames:    names,
		CreatedAt:       o.CreatedAt,
	}
}

func (ix *Index) IndexOrder(ctx context.Context, o *models.Order) error {
	body, err := json.Marshal(docFromOrder(o))
	if err != nil {
		return fmt.Errorf("search: marshal: %w", err)
	}

	res, err := ix.es.Index(indexName, bytes.NewReader(body),
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(strconv.FormatUint(uint64(o.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search: index status %s", res.Status())
	}
	return nil
}

func (ix *Index) DeleteOrder(ctx context.Context, id uint) error {
	res, err := ix.es.Delete(indexName, strconv.FormatUint(uint64(id), 10),
		ix.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete status %s", res.Status())
	}
	return nil
}

// Search runs a full-text query over order number, shipping address and
// product names, optionally filtered by status.
func (ix *Index) Search(ctx context.Context, query, status string, limit int) ([]OrderDoc, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	must := []map[string]any{
		{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"orderNumber", "shippingAddress", "productNames"},
			},
		},
	}
	if status != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"status": status},
		})
	}

	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(map[string]any{
		"size":  limit,
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"sort":  []map[string]any{{"createdAt": map[string]any{"order": "desc"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(indexName),
		ix.es.Search.WithBody(&body),
	)
	if err != nil {
		return nil, fmt.Errorf("search: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search: search status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source OrderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	out := make([]OrderDoc, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
