package mercari

import (
	"context"

	"mercari-search/internal/common/metrics"
)

// SearchPage fetches a single page of results for callers that want
// explicit pagination control. Passing an empty cursor requests the
// first page. The returned cursor is empty when there are no more
// pages; that is the unambiguous end-of-results signal. Transport and
// authentication errors surface undecorated.
func (a *API) SearchPage(ctx context.Context, criteria SearchCriteria, cursor string) ([]ResultSummary, string, error) {
	body := searchRequestBody(criteria, cursor)

	resp, err := a.doer.PostJSON(ctx, a.searchURL, body)
	if err != nil {
		return nil, "", err
	}
	metrics.SearchPagesFetched.Inc()

	rawItems, _ := resp["items"].([]interface{})
	if len(rawItems) == 0 {
		return nil, "", nil
	}

	summaries := make([]ResultSummary, 0, len(rawItems))
	for i, raw := range rawItems {
		m, ok := raw.(map[string]interface{})
		if !ok {
			a.logger.Warn("skipping non-object search hit", map[string]interface{}{
				"index": i,
			})
			continue
		}
		summary, err := NormalizeSummary(m)
		if err != nil {
			a.logger.Warn("skipping malformed search hit", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		summaries = append(summaries, summary)
	}

	next := ""
	if meta, ok := resp["meta"].(map[string]interface{}); ok {
		next = CoerceID(meta["nextPageToken"])
	}
	return summaries, next, nil
}

// SearchStream is an ordered, lazily-produced, non-restartable sequence
// of result summaries. Each Stream call opens a fresh server-side
// session; a stream instance cannot be rewound.
type SearchStream struct {
	api      *API
	criteria SearchCriteria
	cursor   string
	buf      []ResultSummary
	pages    int
	done     bool
}

// Stream opens a new lazy search over the given criteria. Pages are
// requested strictly sequentially because each request depends on the
// prior page's cursor; summaries preserve server-returned order.
func (a *API) Stream(criteria SearchCriteria) *SearchStream {
	return &SearchStream{api: a, criteria: criteria, cursor: firstPageCursor}
}

// Pages reports how many page requests the stream has issued.
func (s *SearchStream) Pages() int { return s.pages }

// Next yields the next summary. ok is false once the stream is
// exhausted: the server returned a page with no items, stopped
// returning a cursor, or repeated the cursor. Errors surface
// undecorated and end the stream; the caller decides whether to abandon
// the whole search.
func (s *SearchStream) Next(ctx context.Context) (ResultSummary, bool, error) {
	for len(s.buf) == 0 {
		if s.done {
			return ResultSummary{}, false, nil
		}

		summaries, next, err := s.api.SearchPage(ctx, s.criteria, s.cursor)
		if err != nil {
			s.done = true
			return ResultSummary{}, false, err
		}
		s.pages++

		// An empty cursor means the server reported the end; a repeated
		// cursor would otherwise loop forever. A page whose hits were all
		// skipped as malformed is neither: the stream moves on to the
		// next page.
		if next == "" || next == s.cursor {
			s.done = true
		}
		s.cursor = next
		s.buf = summaries
	}

	summary := s.buf[0]
	s.buf = s.buf[1:]
	return summary, true, nil
}
