package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Annotation represents one harvested document and everything the
// harvest attaches to it. The search result supplies the metadata;
// content, pages, hooks and emails are nil until fetched.
type Annotation struct {
	// ID is the document identifier assigned by the remote service.
	ID int64

	// Metadata is the raw search result object, kept as-is so that
	// fields the harvest does not model stay addressable.
	Metadata map[string]any

	// Content is the extracted field tree. Nil until fetched.
	Content []FieldNode

	// Pages holds the per-page pixel geometry. Nil until fetched.
	Pages []Page

	// RelatedHookURLs are the hook resource URLs of the owning queue.
	// Nil until hooks are collected.
	RelatedHookURLs []string

	// RelatedEmails are the fetched outbound email payloads.
	RelatedEmails []Email
}

// NewAnnotation builds an Annotation from a raw search result object.
func NewAnnotation(metadata map[string]any) *Annotation {
	return &Annotation{
		ID:       idFromMetadata(metadata),
		Metadata: metadata,
	}
}

// Queue returns the identifier of the owning queue, taken from the
// last segment of the queue resource URL in the metadata.
func (a *Annotation) Queue() string {
	return lastURLSegment(stringField(a.Metadata, "queue"))
}

// QueueID returns the owning queue identifier as an integer.
// Hook configurations express queue allow/deny lists numerically.
func (a *Annotation) QueueID() (int64, error) {
	q := a.Queue()
	id, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse queue id %q: %w", q, err)
	}
	return id, nil
}

// Schema returns the schema identifier of the document, taken from
// the last segment of the schema resource URL in the metadata.
func (a *Annotation) Schema() string {
	return lastURLSegment(stringField(a.Metadata, "schema"))
}

// RelatedEmailIDs returns the identifiers of the related outbound
// emails referenced by the metadata.
func (a *Annotation) RelatedEmailIDs() []string {
	raw, ok := a.Metadata["related_emails"].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		url, ok := entry.(string)
		if !ok || url == "" {
			continue
		}
		ids = append(ids, lastURLSegment(url))
	}
	return ids
}

// Page is the pixel geometry of a single document page.
type Page struct {
	// ID is the page resource identifier.
	ID int64 `json:"id"`

	// Number is the 1-based page number, unique per document.
	Number int `json:"number"`

	// Width is the page width in pixels.
	Width float64 `json:"width"`

	// Height is the page height in pixels.
	Height float64 `json:"height"`
}

// PageByNumber returns the page with the given number, or nil if the
// document has no such page.
func (a *Annotation) PageByNumber(number int) *Page {
	for i := range a.Pages {
		if a.Pages[i].Number == number {
			return &a.Pages[i]
		}
	}
	return nil
}

// Collection maps document identifiers to their annotations. It is
// owned by the harvest run that created it; after the fetch phase it
// is read-only.
type Collection map[int64]*Annotation

// SortedIDs returns the document identifiers in ascending order.
// Batch operations iterate in this order so results are stable.
func (c Collection) SortedIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Queue is the subset of the queue resource the harvest consumes.
type Queue struct {
	// ID is the queue identifier.
	ID int64 `json:"id"`

	// Name is the human-readable queue name.
	Name string `json:"name"`

	// Hooks lists the hook resource URLs attached to the queue.
	Hooks []string `json:"hooks"`
}

// Email is an outbound email payload related to an annotation.
type Email struct {
	// ID is the email identifier.
	ID int64 `json:"id"`

	// URL is the email resource URL.
	URL string `json:"url"`

	// Subject is the email subject line.
	Subject string `json:"subject"`

	// Raw is the full response object for fields not modelled here.
	Raw map[string]any `json:"-"`
}

func idFromMetadata(metadata map[string]any) int64 {
	switch v := metadata["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return id
		}
	}
	return 0
}

func stringField(metadata map[string]any, key string) string {
	s, _ := metadata[key].(string)
	return s
}

func lastURLSegment(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
