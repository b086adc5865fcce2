package driven

import (
	"context"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

// SearchPage is one page of a paginated list response.
type SearchPage struct {
	// Results are the raw result objects of this page.
	Results []map[string]any

	// Next is the opaque absolute URL of the next page, or empty when
	// this page is the last one.
	Next string
}

// Gateway issues authenticated requests against the remote document
// service. Implementations own transport, auth header injection and
// response caching.
type Gateway interface {
	// Search fetches one page of annotation search results. An empty
	// next fetches the first page; otherwise next is the cursor URL
	// returned by the previous page.
	Search(ctx context.Context, query any, next string) (*SearchPage, error)

	// Annotations fetches one page of annotation metadata for an
	// explicit id list.
	Annotations(ctx context.Context, ids []string, next string) (*SearchPage, error)

	// AnnotationContent fetches the extracted field tree of one
	// annotation.
	AnnotationContent(ctx context.Context, id int64) ([]domain.FieldNode, error)

	// AnnotationPages fetches the full page geometry list of one
	// annotation, following inner pagination to the end.
	AnnotationPages(ctx context.Context, id int64) ([]domain.Page, error)

	// Queue fetches a queue resource by id.
	Queue(ctx context.Context, id string) (*domain.Queue, error)

	// HookByURL fetches a hook by its absolute resource URL.
	HookByURL(ctx context.Context, url string) (*domain.Hook, error)

	// Email fetches an outbound email by id.
	Email(ctx context.Context, id string) (*domain.Email, error)
}
