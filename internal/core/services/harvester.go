package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/altum-labs/docharvest/internal/core/domain"
	"github.com/altum-labs/docharvest/internal/core/ports/driven"
	"github.com/altum-labs/docharvest/internal/gather"
	"github.com/altum-labs/docharvest/internal/logger"
	"github.com/altum-labs/docharvest/internal/metrics"
)

// Cursor-following pacing. Long searches pause periodically so the
// outer pagination stays inside the same rate budget as the fan-out.
const (
	pacingShortEvery = 10
	pacingShortPause = 2 * time.Second
	pacingLongEvery  = 100
	pacingLongPause  = 5 * time.Second
)

// ItemError is a per-document failure collected during a fan-out
// phase. The batch keeps the successfully fetched entities.
type ItemError struct {
	ID  int64
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("annotation %d: %v", e.ID, e.Err)
}

// Harvester populates a document collection end to end: search,
// cursor-following, and throttled fan-out of per-document detail
// fetches. Fatal errors (bad configuration, failed search pagination)
// abort the harvest; per-document fetch failures are collected.
type Harvester struct {
	gw    driven.Gateway
	runID uuid.UUID

	chunkSize int
	cooldown  time.Duration

	// pause is swapped out in tests; pacing sleeps go through it.
	pause func(ctx context.Context, d time.Duration) error
}

// HarvesterOption configures a Harvester.
type HarvesterOption func(*Harvester)

// WithChunkSize caps how many detail fetches run concurrently. The
// same cap governs every fan-out phase of the run.
func WithChunkSize(n int) HarvesterOption {
	return func(h *Harvester) {
		if n > 0 {
			h.chunkSize = n
		}
	}
}

// WithCooldown sets the pause between fan-out chunks.
func WithCooldown(d time.Duration) HarvesterOption {
	return func(h *Harvester) {
		if d > 0 {
			h.cooldown = d
		}
	}
}

// NewHarvester creates a harvester over the given gateway.
func NewHarvester(gw driven.Gateway, opts ...HarvesterOption) *Harvester {
	h := &Harvester{
		gw:        gw,
		runID:     uuid.New(),
		chunkSize: gather.DefaultChunkSize,
		cooldown:  gather.DefaultCooldown,
		pause:     sleepCtx,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RunID identifies this harvest run in logs.
func (h *Harvester) RunID() uuid.UUID {
	return h.runID
}

// SearchOptions control cursor-following of the search endpoint.
type SearchOptions struct {
	// AllPages keeps following the "next" cursor after the first page.
	AllPages bool

	// PageMax caps the total number of fetched pages when AllPages is
	// set. Zero means no cap. The first page counts as page one.
	PageMax int
}

// Search issues the search and builds one annotation per result,
// keyed by id. Duplicate ids across pages overwrite the earlier
// entity; that is a property of the upstream cursor contract, not an
// error. Search failures are fatal: no partial collection is
// returned.
func (h *Harvester) Search(ctx context.Context, query any, opts SearchOptions) (domain.Collection, error) {
	collection := domain.Collection{}

	page, err := h.gw.Search(ctx, query, "")
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	addResults(collection, page.Results)

	pageCount := 1
	if opts.AllPages {
		for page.Next != "" && (opts.PageMax == 0 || pageCount < opts.PageMax) {
			if err := h.pace(ctx, pageCount); err != nil {
				return nil, err
			}
			page, err = h.gw.Search(ctx, query, page.Next)
			if err != nil {
				return nil, fmt.Errorf("search page %d: %w", pageCount+1, err)
			}
			addResults(collection, page.Results)
			pageCount++
		}
	}

	logger.Info("harvest %s: search yielded %d annotations over %d pages", h.runID, len(collection), pageCount)
	return collection, nil
}

// LookupByIDs fetches annotation metadata for an explicit id list and
// builds a collection, following pagination to the end.
func (h *Harvester) LookupByIDs(ctx context.Context, ids []string) (domain.Collection, error) {
	collection := domain.Collection{}

	page, err := h.gw.Annotations(ctx, ids, "")
	if err != nil {
		return nil, fmt.Errorf("lookup annotations: %w", err)
	}
	addResults(collection, page.Results)

	for pageCount := 1; page.Next != ""; pageCount++ {
		if err := h.pace(ctx, pageCount); err != nil {
			return nil, err
		}
		page, err = h.gw.Annotations(ctx, ids, page.Next)
		if err != nil {
			return nil, fmt.Errorf("lookup annotations page %d: %w", pageCount+1, err)
		}
		addResults(collection, page.Results)
	}

	return collection, nil
}

// FetchContentFor fetches every annotation's field tree under the
// fan-out cap and attaches it. Failures are collected per annotation;
// partial results remain useful to the caller.
func (h *Harvester) FetchContentFor(ctx context.Context, collection domain.Collection) ([]ItemError, error) {
	ids := collection.SortedIDs()
	tasks := make([]gather.Task[[]domain.FieldNode], len(ids))
	for i, id := range ids {
		id := id
		tasks[i] = func(ctx context.Context) ([]domain.FieldNode, error) {
			return h.gw.AnnotationContent(ctx, id)
		}
	}

	results, err := gather.Throttled(ctx, tasks, h.gatherOptions())
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}

	var itemErrs []ItemError
	for i, result := range results {
		if result.Err != nil {
			metrics.FanoutTasks.WithLabelValues("content", "error").Inc()
			itemErrs = append(itemErrs, ItemError{ID: ids[i], Err: result.Err})
			continue
		}
		metrics.FanoutTasks.WithLabelValues("content", "success").Inc()
		collection[ids[i]].Content = result.Value
	}
	return itemErrs, nil
}

// FetchPagesFor fetches every annotation's full page geometry list
// under the fan-out cap and attaches it. The inner pagination of each
// page resource is independent of the outer search cursor.
func (h *Harvester) FetchPagesFor(ctx context.Context, collection domain.Collection) ([]ItemError, error) {
	ids := collection.SortedIDs()
	tasks := make([]gather.Task[[]domain.Page], len(ids))
	for i, id := range ids {
		id := id
		tasks[i] = func(ctx context.Context) ([]domain.Page, error) {
			return h.gw.AnnotationPages(ctx, id)
		}
	}

	results, err := gather.Throttled(ctx, tasks, h.gatherOptions())
	if err != nil {
		return nil, fmt.Errorf("fetch pages: %w", err)
	}

	var itemErrs []ItemError
	for i, result := range results {
		if result.Err != nil {
			metrics.FanoutTasks.WithLabelValues("pages", "error").Inc()
			itemErrs = append(itemErrs, ItemError{ID: ids[i], Err: result.Err})
			continue
		}
		metrics.FanoutTasks.WithLabelValues("pages", "success").Inc()
		collection[ids[i]].Pages = result.Value
	}
	return itemErrs, nil
}

// FetchHooksFor collects the hooks of every annotation's queue. Queue
// lookups are sequential (the queue set is small and the response is
// cached per queue); the de-duplicated hook fetches fan out under the
// shared cap. The returned set holds every distinct hook.
func (h *Harvester) FetchHooksFor(ctx context.Context, collection domain.Collection) (*domain.HookSet, []ItemError, error) {
	var itemErrs []ItemError

	seen := make(map[string]struct{})
	var hookURLs []string
	for _, id := range collection.SortedIDs() {
		a := collection[id]
		queue, err := h.gw.Queue(ctx, a.Queue())
		if err != nil {
			itemErrs = append(itemErrs, ItemError{ID: id, Err: fmt.Errorf("queue %s: %w", a.Queue(), err)})
			continue
		}
		a.RelatedHookURLs = queue.Hooks
		for _, url := range queue.Hooks {
			if _, ok := seen[url]; !ok {
				seen[url] = struct{}{}
				hookURLs = append(hookURLs, url)
			}
		}
	}

	tasks := make([]gather.Task[*domain.Hook], len(hookURLs))
	for i, url := range hookURLs {
		url := url
		tasks[i] = func(ctx context.Context) (*domain.Hook, error) {
			return h.gw.HookByURL(ctx, url)
		}
	}

	results, err := gather.Throttled(ctx, tasks, h.gatherOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("fetch hooks: %w", err)
	}

	hooks := domain.NewHookSet()
	for i, result := range results {
		if result.Err != nil {
			metrics.FanoutTasks.WithLabelValues("hooks", "error").Inc()
			logger.Warn("hook %s: %v", hookURLs[i], result.Err)
			continue
		}
		metrics.FanoutTasks.WithLabelValues("hooks", "success").Inc()
		if err := hooks.Add(result.Value); err != nil {
			logger.Warn("hook %s: %v", hookURLs[i], err)
		}
	}

	logger.Info("harvest %s: collected %d hooks", h.runID, hooks.Len())
	return hooks, itemErrs, nil
}

// FetchEmailsFor fetches the related outbound emails referenced by
// each annotation's metadata and attaches the payloads.
func (h *Harvester) FetchEmailsFor(ctx context.Context, collection domain.Collection) ([]ItemError, error) {
	type emailRef struct {
		annotationID int64
		emailID      string
	}

	var refs []emailRef
	for _, id := range collection.SortedIDs() {
		for _, emailID := range collection[id].RelatedEmailIDs() {
			refs = append(refs, emailRef{annotationID: id, emailID: emailID})
		}
	}

	tasks := make([]gather.Task[*domain.Email], len(refs))
	for i, ref := range refs {
		ref := ref
		tasks[i] = func(ctx context.Context) (*domain.Email, error) {
			return h.gw.Email(ctx, ref.emailID)
		}
	}

	results, err := gather.Throttled(ctx, tasks, h.gatherOptions())
	if err != nil {
		return nil, fmt.Errorf("fetch emails: %w", err)
	}

	var itemErrs []ItemError
	for i, result := range results {
		if result.Err != nil {
			metrics.FanoutTasks.WithLabelValues("emails", "error").Inc()
			itemErrs = append(itemErrs, ItemError{ID: refs[i].annotationID, Err: result.Err})
			continue
		}
		metrics.FanoutTasks.WithLabelValues("emails", "success").Inc()
		a := collection[refs[i].annotationID]
		a.RelatedEmails = append(a.RelatedEmails, *result.Value)
	}
	return itemErrs, nil
}

func (h *Harvester) gatherOptions() gather.Options {
	return gather.Options{
		ChunkSize: h.chunkSize,
		Cooldown:  h.cooldown,
		Policy:    gather.Collect,
	}
}

// pace sleeps on the cursor-following cadence: a short pause every
// tenth page, a long one every hundredth.
func (h *Harvester) pace(ctx context.Context, pageCount int) error {
	switch {
	case pageCount%pacingLongEvery == 0:
		logger.Debug("harvest %s: page %d, pausing %s", h.runID, pageCount, pacingLongPause)
		return h.pause(ctx, pacingLongPause)
	case pageCount%pacingShortEvery == 0:
		logger.Debug("harvest %s: page %d, pausing %s", h.runID, pageCount, pacingShortPause)
		return h.pause(ctx, pacingShortPause)
	}
	return nil
}

func addResults(collection domain.Collection, results []map[string]any) {
	for _, result := range results {
		a := domain.NewAnnotation(result)
		collection[a.ID] = a
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
