package search

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"mercari-search/internal/common/config"
	apperrors "mercari-search/internal/common/errors"
	"mercari-search/internal/common/logger"
	"mercari-search/internal/common/metrics"
	"mercari-search/internal/mercari"
)

// Market is the marketplace surface the orchestrator depends on.
type Market interface {
	Stream(criteria mercari.SearchCriteria) SummaryStream
	Enrich(ctx context.Context, id string) (*mercari.EnrichedRecord, error)
	ProductURL(id string) string
}

// APIMarket adapts *mercari.API to the Market interface.
type APIMarket struct {
	api *mercari.API
}

func NewAPIMarket(api *mercari.API) *APIMarket {
	return &APIMarket{api: api}
}

func (m *APIMarket) Stream(criteria mercari.SearchCriteria) SummaryStream {
	return m.api.Stream(criteria)
}

func (m *APIMarket) Enrich(ctx context.Context, id string) (*mercari.EnrichedRecord, error) {
	return m.api.Enrich(ctx, id)
}

func (m *APIMarket) ProductURL(id string) string {
	return m.api.ProductURL(id)
}

// Query is the public entry point's input.
type Query struct {
	Keyword         string `json:"keyword" validate:"required"`
	ExcludeKeywords string `json:"exclude_keywords"`
	MinPrice        *int   `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice        *int   `json:"max_price" validate:"omitempty,gte=0"`
}

// Item is one aggregated result row, a plain key-value record.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	CategoryID string `json:"category_id,omitempty"`
}

// Diagnostics summarizes what happened during one call, for operability.
type Diagnostics struct {
	SampledCategories []string               `json:"sampled_categories"`
	LowConfidence     bool                   `json:"low_confidence"`
	SampleAttempts    int                    `json:"sample_attempts"`
	SampleSuccesses   int                    `json:"sample_successes"`
	Enriched          int                    `json:"enriched"`
	Returned          int                    `json:"returned"`
	FailuresByKind    map[apperrors.Kind]int `json:"failures_by_kind"`
}

// Orchestrator runs the two-phase search: DISCOVERY samples the
// dominant categories from a broad relevance-sorted stream, REFINED
// re-issues a price-ascending, category-filtered search and enriches
// every hit. There is no loop-back between phases.
type Orchestrator struct {
	market   Market
	cfg      config.SearchConfig
	validate *validator.Validate
	logger   logger.Logger
}

func New(market Market, cfg config.SearchConfig, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		market:   market,
		cfg:      cfg,
		validate: validator.New(),
		logger:   log,
	}
}

// Run executes one search call. It never returns an error for expected
// failure classes: the result is best-effort, possibly empty, with
// diagnostics carrying the per-kind failure counts.
func (o *Orchestrator) Run(ctx context.Context, q Query) ([]Item, Diagnostics) {
	metrics.SearchesStarted.Inc()
	diag := Diagnostics{FailuresByKind: make(map[apperrors.Kind]int)}

	if err := o.validate.Struct(q); err != nil {
		o.logger.Error("invalid search query", map[string]interface{}{
			"error": err.Error(),
		})
		return []Item{}, diag
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		o.logger.Error("invalid price range", map[string]interface{}{
			"minPrice": *q.MinPrice,
			"maxPrice": *q.MaxPrice,
		})
		return []Item{}, diag
	}

	categories := o.discover(ctx, q, &diag)

	items, fatal := o.refine(ctx, q, categories, &diag)
	if fatal != nil {
		o.logger.Error("refined search failed", map[string]interface{}{
			"error": fatal.Error(),
		})
		return []Item{}, diag
	}

	o.logger.Info("search completed", map[string]interface{}{
		"keyword":    q.Keyword,
		"categories": categories,
		"returned":   len(items),
		"failures":   diag.FailuresByKind,
	})
	return items, diag
}

// discover runs the DISCOVERY phase. Any failure here degrades to an
// empty category set; it is never fatal for the call.
func (o *Orchestrator) discover(ctx context.Context, q Query, diag *Diagnostics) []string {
	start := time.Now()
	defer func() {
		metrics.SearchPhaseDuration.WithLabelValues("discovery").Observe(time.Since(start).Seconds())
	}()

	criteria, err := mercari.NewSearchCriteria(
		q.Keyword, q.ExcludeKeywords,
		mercari.SortScore, mercari.OrderDesc, mercari.StatusOnSale,
		o.cfg.PageSize,
	)
	if err != nil {
		o.logger.Warn("discovery skipped", map[string]interface{}{"error": err.Error()})
		return nil
	}

	sampler := NewSampler(o.market, SamplerConfig{
		TargetSuccesses: o.cfg.SampleTarget,
		AttemptCeiling:  o.cfg.AttemptCeiling,
		TopN:            o.cfg.TopCategories,
		MinReliable:     o.cfg.MinReliableSample,
	}, o.logger, o.pace)

	sample, err := sampler.Sample(ctx, o.market.Stream(criteria))

	diag.SampledCategories = sample.TopCategories
	diag.LowConfidence = sample.LowConfidence
	diag.SampleAttempts = sample.Attempts
	diag.SampleSuccesses = sample.Successes
	for kind, n := range sample.FailuresByKind {
		diag.FailuresByKind[kind] += n
	}

	if err != nil {
		// A broken discovery stream means the sample is truncated;
		// filtering on it could wrongly exclude valid results. The
		// refined search runs unfiltered and the partial tally stays
		// visible in diagnostics only.
		o.logger.Warn("category discovery degraded", map[string]interface{}{
			"error":     err.Error(),
			"successes": sample.Successes,
			"attempts":  sample.Attempts,
		})
		return nil
	}

	if sample.LowConfidence {
		o.logger.Warn("category sample below reliability threshold", map[string]interface{}{
			"successes": sample.Successes,
			"threshold": o.cfg.MinReliableSample,
		})
	}
	return sample.TopCategories
}

// refine runs the REFINED SEARCH phase: price-ascending, filtered by the
// discovered categories when non-empty, enriching every hit. A
// stream-level failure is fatal for the call; per-item failures only
// shrink the result set.
func (o *Orchestrator) refine(ctx context.Context, q Query, categories []string, diag *Diagnostics) ([]Item, error) {
	start := time.Now()
	defer func() {
		metrics.SearchPhaseDuration.WithLabelValues("refine").Observe(time.Since(start).Seconds())
	}()

	criteria, err := mercari.NewSearchCriteria(
		q.Keyword, q.ExcludeKeywords,
		mercari.SortPrice, mercari.OrderAsc, mercari.StatusOnSale,
		o.cfg.PageSize,
	)
	if err != nil {
		return nil, apperrors.NewOrchestrationError("refine", err)
	}
	if len(categories) > 0 {
		criteria = criteria.WithCategories(categories)
	}

	stream := o.market.Stream(criteria)
	items := []Item{}

	for {
		// Cooperative cancellation point between per-item enrichments.
		if ctx.Err() != nil {
			return nil, apperrors.NewOrchestrationError("refine", ctx.Err())
		}

		summary, ok, err := stream.Next(ctx)
		if err != nil {
			return nil, apperrors.NewOrchestrationError("refine", err)
		}
		if !ok {
			break
		}

		record, err := o.market.Enrich(ctx, summary.ID)
		o.pace(ctx)
		if err != nil {
			kind := apperrors.Classify(err)
			diag.FailuresByKind[kind]++
			metrics.EnrichmentFailures.WithLabelValues("refine", string(kind)).Inc()
			o.logger.Warn("enrichment failed, skipping item", map[string]interface{}{
				"itemId": summary.ID,
				"kind":   string(kind),
				"error":  err.Error(),
			})
			continue
		}

		diag.Enriched++
		metrics.ItemsEnriched.WithLabelValues("refine", "success").Inc()

		if !priceWithin(record.Price, q.MinPrice, q.MaxPrice) {
			continue
		}

		items = append(items, Item{
			ID:         record.ID,
			Name:       record.Name,
			Price:      record.Price,
			URL:        o.market.ProductURL(record.ID),
			Status:     string(record.Status),
			CategoryID: record.Category.ID,
		})
	}

	diag.Returned = len(items)
	return items, nil
}

// pace applies the fixed inter-call delay after every enrichment call,
// cooperative against remote anti-automation defenses.
func (o *Orchestrator) pace(ctx context.Context) {
	delay := o.cfg.Pacing()
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func priceWithin(price int, min, max *int) bool {
	if min != nil && price < *min {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}
