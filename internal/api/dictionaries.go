package api

import (
	"context"
	"net/http"

	"fieldline/internal/domain"
)

// Dictionary endpoints answer with the {"data": ...} envelope; do()
// unwraps it before decoding.

// Sources lists the inbound-channel taxonomy (aggregators).
func (c *Client) Sources(ctx context.Context) ([]domain.DictionaryItem, error) {
	var items []domain.DictionaryItem
	err := c.do(ctx, http.MethodGet, "api/dictionaries/aggregators", nil, &items)
	return items, err
}

// Problems lists the symptom taxonomy.
func (c *Client) Problems(ctx context.Context) ([]domain.DictionaryItem, error) {
	var items []domain.DictionaryItem
	err := c.do(ctx, http.MethodGet, "api/dictionaries/problems", nil, &items)
	return items, err
}

// CreateSource adds a new inbound channel.
func (c *Client) CreateSource(ctx context.Context, name string) (domain.DictionaryItem, error) {
	var item domain.DictionaryItem
	err := c.do(ctx, http.MethodPost, "api/dictionaries/aggregators", map[string]string{"name": name}, &item)
	return item, err
}

// CreateProblem adds a new symptom entry.
func (c *Client) CreateProblem(ctx context.Context, name string) (domain.DictionaryItem, error) {
	var item domain.DictionaryItem
	err := c.do(ctx, http.MethodPost, "api/dictionaries/problems", map[string]string{"name": name}, &item)
	return item, err
}
