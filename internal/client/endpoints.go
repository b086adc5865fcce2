package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/altum-labs/docharvest/internal/core/domain"
	"github.com/altum-labs/docharvest/internal/core/ports/driven"
)

// Ensure Client implements the gateway interface.
var _ driven.Gateway = (*Client)(nil)

// Search fetches one page of annotation search results. The search
// filter body is treated as opaque; the service's query grammar is
// the caller's concern.
func (c *Client) Search(ctx context.Context, query any, next string) (*driven.SearchPage, error) {
	endpoint := fmt.Sprintf("/annotations/search?page_size=%d", c.pageSize)
	page, err := c.fetchPage(ctx, http.MethodPost, endpoint, query, next)
	if err != nil {
		return nil, err
	}
	return toSearchPage(page)
}

// Annotations fetches one page of annotation metadata for an explicit
// id list.
func (c *Client) Annotations(ctx context.Context, ids []string, next string) (*driven.SearchPage, error) {
	endpoint := fmt.Sprintf("/annotations?id=%s&page_size=%d", strings.Join(ids, ","), c.pageSize)
	page, err := c.fetchPage(ctx, http.MethodGet, endpoint, nil, next)
	if err != nil {
		return nil, err
	}
	return toSearchPage(page)
}

// AnnotationContent fetches the extracted field tree of one annotation.
func (c *Client) AnnotationContent(ctx context.Context, id int64) ([]domain.FieldNode, error) {
	data, err := c.Fetch(ctx, http.MethodGet, fmt.Sprintf("/annotations/%d/content", id), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Content []domain.FieldNode `json:"content"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &TransportError{URL: fmt.Sprintf("annotations/%d/content", id), Err: fmt.Errorf("decode content: %w", err)}
	}
	return envelope.Content, nil
}

// AnnotationPages fetches the full page geometry list of one
// annotation, following inner pagination until the cursor is absent.
func (c *Client) AnnotationPages(ctx context.Context, id int64) ([]domain.Page, error) {
	endpoint := fmt.Sprintf("/pages?annotation=%d", id)
	raw, err := c.fetchAllPages(ctx, http.MethodGet, endpoint, nil, 0)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.Page, 0, len(raw))
	for _, entry := range raw {
		var page domain.Page
		if err := json.Unmarshal(entry, &page); err != nil {
			return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("decode page geometry: %w", err)}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Queue fetches a queue resource by id.
func (c *Client) Queue(ctx context.Context, id string) (*domain.Queue, error) {
	data, err := c.Fetch(ctx, http.MethodGet, "/queues/"+id, nil)
	if err != nil {
		return nil, err
	}

	var queue domain.Queue
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, &TransportError{URL: "queues/" + id, Err: fmt.Errorf("decode queue: %w", err)}
	}
	return &queue, nil
}

// HookByURL fetches a hook by its absolute resource URL, as listed on
// a queue.
func (c *Client) HookByURL(ctx context.Context, url string) (*domain.Hook, error) {
	data, err := c.FetchURL(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var hook domain.Hook
	if err := json.Unmarshal(data, &hook); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decode hook: %w", err)}
	}
	return &hook, nil
}

// Email fetches an outbound email by id.
func (c *Client) Email(ctx context.Context, id string) (*domain.Email, error) {
	data, err := c.Fetch(ctx, http.MethodGet, "/emails/"+id, nil)
	if err != nil {
		return nil, err
	}

	var email domain.Email
	if err := json.Unmarshal(data, &email); err != nil {
		return nil, &TransportError{URL: "emails/" + id, Err: fmt.Errorf("decode email: %w", err)}
	}
	if err := json.Unmarshal(data, &email.Raw); err != nil {
		return nil, &TransportError{URL: "emails/" + id, Err: fmt.Errorf("decode email: %w", err)}
	}
	return &email, nil
}

func toSearchPage(page *pageEnvelope) (*driven.SearchPage, error) {
	results := make([]map[string]any, 0, len(page.Results))
	for _, raw := range page.Results {
		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		results = append(results, entry)
	}
	return &driven.SearchPage{Results: results, Next: page.Pagination.Next}, nil
}
