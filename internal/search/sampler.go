// Package search composes the marketplace client into the two-phase
// sample, refine and enrich pipeline.
package search

import (
	"context"
	"sort"

	apperrors "mercari-search/internal/common/errors"
	"mercari-search/internal/common/logger"
	"mercari-search/internal/common/metrics"
	"mercari-search/internal/mercari"
)

// SummaryStream is the lazy sequence of search hits consumed by the
// sampler and the orchestrator.
type SummaryStream interface {
	Next(ctx context.Context) (mercari.ResultSummary, bool, error)
}

// Enricher fetches the full detail record for one identifier.
type Enricher interface {
	Enrich(ctx context.Context, id string) (*mercari.EnrichedRecord, error)
}

// SamplerConfig carries the sampling constants. They are empirically
// chosen and tunable, not invariants.
type SamplerConfig struct {
	TargetSuccesses int // stop after this many successful enrichments
	AttemptCeiling  int // hard cap on attempts, successes and failures both counted
	TopN            int // how many leading categories to report
	MinReliable     int // below this many successes the sample is low-confidence
}

// CategorySample is the outcome of one discovery pass.
type CategorySample struct {
	// TopCategories holds the most frequent leaf category IDs in
	// descending count order, ties broken by first-seen order.
	TopCategories  []string
	Counts         map[string]int
	Successes      int
	Attempts       int
	LowConfidence  bool
	FailuresByKind map[apperrors.Kind]int
}

// Sampler draws a bounded sample from a search stream, enriches each
// hit and tallies the leaf category identifiers to estimate the
// dominant categories for a keyword.
type Sampler struct {
	enricher Enricher
	cfg      SamplerConfig
	logger   logger.Logger
	pace     func(ctx context.Context)
}

// NewSampler builds a sampler. pace, when non-nil, is invoked after
// every enrichment call (success or failure); the orchestrator supplies
// it to enforce the inter-call delay policy.
func NewSampler(enricher Enricher, cfg SamplerConfig, log logger.Logger, pace func(ctx context.Context)) *Sampler {
	return &Sampler{enricher: enricher, cfg: cfg, logger: log, pace: pace}
}

// Sample drains the stream until the success target or the attempt
// ceiling is reached, whichever comes first. An exhausted stream or
// all-failing enrichments yield an empty category set, which is not an
// error. A stream-level failure returns the partial sample alongside
// the error so the caller can degrade gracefully.
func (s *Sampler) Sample(ctx context.Context, stream SummaryStream) (*CategorySample, error) {
	sample := &CategorySample{
		Counts:         make(map[string]int),
		FailuresByKind: make(map[apperrors.Kind]int),
	}
	var firstSeen []string

	for sample.Successes < s.cfg.TargetSuccesses && sample.Attempts < s.cfg.AttemptCeiling {
		summary, ok, err := stream.Next(ctx)
		if err != nil {
			s.finish(sample, firstSeen)
			return sample, err
		}
		if !ok {
			break
		}

		sample.Attempts++
		record, err := s.enricher.Enrich(ctx, summary.ID)
		if s.pace != nil {
			s.pace(ctx)
		}
		if err != nil {
			kind := apperrors.Classify(err)
			sample.FailuresByKind[kind]++
			metrics.EnrichmentFailures.WithLabelValues("discovery", string(kind)).Inc()
			s.logger.Warn("sample enrichment failed", map[string]interface{}{
				"itemId": summary.ID,
				"kind":   string(kind),
				"error":  err.Error(),
			})
			continue
		}

		sample.Successes++
		metrics.ItemsEnriched.WithLabelValues("discovery", "success").Inc()

		categoryID := record.Category.ID
		if categoryID == "" {
			continue
		}
		if _, seen := sample.Counts[categoryID]; !seen {
			firstSeen = append(firstSeen, categoryID)
		}
		sample.Counts[categoryID]++
	}

	s.finish(sample, firstSeen)
	return sample, nil
}

func (s *Sampler) finish(sample *CategorySample, firstSeen []string) {
	sample.LowConfidence = sample.Successes < s.cfg.MinReliable
	if sample.LowConfidence {
		metrics.LowConfidenceSamples.Inc()
	}

	// Stable sort over first-seen order: equal counts keep discovery
	// precedence.
	ranked := append([]string(nil), firstSeen...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return sample.Counts[ranked[i]] > sample.Counts[ranked[j]]
	})
	if len(ranked) > s.cfg.TopN {
		ranked = ranked[:s.cfg.TopN]
	}
	sample.TopCategories = ranked
}
