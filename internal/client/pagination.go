package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// pageEnvelope is the wire shape every list endpoint returns.
type pageEnvelope struct {
	Results    []json.RawMessage `json:"results"`
	Pagination pagination        `json:"pagination"`
}

type pagination struct {
	// Next is the opaque absolute URL of the next page; absent on the
	// last page.
	Next string `json:"next"`

	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// fetchPage fetches one page of a paginated resource. An empty next
// fetches endpoint relative to the base URL; otherwise next is
// followed as a ready URL. A response that does not decode as a page
// envelope is a transport failure.
func (c *Client) fetchPage(ctx context.Context, method, endpoint string, body any, next string) (*pageEnvelope, error) {
	url := next
	if url == "" {
		url = c.resolveURL(endpoint)
	}

	data, err := c.request(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	var page pageEnvelope
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decode page: %w", err)}
	}
	return &page, nil
}

// fetchAllPages follows the "next" cursor until it is absent or
// maxPages pages have been fetched (0 means unbounded), accumulating
// raw results. Cursor-following is strictly sequential; each page
// depends on the previous page's cursor.
func (c *Client) fetchAllPages(ctx context.Context, method, endpoint string, body any, maxPages int) ([]json.RawMessage, error) {
	var results []json.RawMessage

	next := ""
	for pages := 0; ; {
		page, err := c.fetchPage(ctx, method, endpoint, body, next)
		if err != nil {
			return nil, err
		}
		results = append(results, page.Results...)

		pages++
		next = page.Pagination.Next
		if next == "" || (maxPages > 0 && pages >= maxPages) {
			return results, nil
		}
	}
}
