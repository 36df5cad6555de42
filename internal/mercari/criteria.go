package mercari

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// Accepted page size range of the remote search API.
	minPageSize = 1
	maxPageSize = 120

	// Well-known first-page cursor sentinel.
	firstPageCursor = "v1:0"

	// Courtesy prefix so the marketplace can attribute our traffic.
	botIDPrefix = "MERCARI_BOT_"
)

// SearchCriteria describes one search call. It is constructed once per
// call and never mutated afterwards.
type SearchCriteria struct {
	Keyword        string
	ExcludeKeyword string
	Sort           Sort
	Order          Order
	Status         SearchStatus
	CategoryIDs    []string
	BrandIDs       []string
	PageSize       int
}

// NewSearchCriteria validates the enum fields and clamps the page size.
// The keyword must be non-empty.
func NewSearchCriteria(keyword string, exclude string, sort Sort, order Order, status SearchStatus, pageSize int) (SearchCriteria, error) {
	if strings.TrimSpace(keyword) == "" {
		return SearchCriteria{}, fmt.Errorf("keyword must be non-empty")
	}
	if err := validateEnums(sort, order, status); err != nil {
		return SearchCriteria{}, err
	}
	return SearchCriteria{
		Keyword:        keyword,
		ExcludeKeyword: exclude,
		Sort:           sort,
		Order:          order,
		Status:         status,
		PageSize:       ClampPageSize(pageSize),
	}, nil
}

// WithCategories returns a copy filtered by the given category IDs.
func (c SearchCriteria) WithCategories(categoryIDs []string) SearchCriteria {
	c.CategoryIDs = append([]string(nil), categoryIDs...)
	return c
}

// WithBrands returns a copy filtered by the given brand IDs.
func (c SearchCriteria) WithBrands(brandIDs []string) SearchCriteria {
	c.BrandIDs = append([]string(nil), brandIDs...)
	return c
}

// ClampPageSize bounds the page size to the remote API's accepted range,
// regardless of caller input.
func ClampPageSize(n int) int {
	if n < minPageSize {
		return minPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// searchRequestBody builds the POST body for one page request. Category
// and brand IDs travel as integers on the wire; non-numeric IDs are
// dropped rather than failing the whole request.
func searchRequestBody(c SearchCriteria, pageToken string) map[string]interface{} {
	condition := map[string]interface{}{
		"keyword":        c.Keyword,
		"sort":           string(c.Sort),
		"order":          string(c.Order),
		"status":         []string{string(c.Status)},
		"excludeKeyword": c.ExcludeKeyword,
	}

	if ids := numericIDs(c.CategoryIDs); len(ids) > 0 {
		condition["categoryIds"] = ids
	}
	if ids := numericIDs(c.BrandIDs); len(ids) > 0 {
		condition["brandIds"] = ids
	}

	if pageToken == "" {
		pageToken = firstPageCursor
	}

	return map[string]interface{}{
		"userId":          botIDPrefix + uuid.NewString(),
		"pageSize":        ClampPageSize(c.PageSize),
		"pageToken":       pageToken,
		"searchSessionId": botIDPrefix + uuid.NewString(),
		"indexRouting":    "INDEX_ROUTING_UNSPECIFIED",
		"searchCondition": condition,
		"withAuction":     true,
		// Hardcoded in the marketplace frontend; queried datasets.
		"defaultDatasets": []string{"DATASET_TYPE_MERCARI", "DATASET_TYPE_BEYOND"},
	}
}

func numericIDs(ids []string) []int {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil {
			out = append(out, n)
		}
	}
	return out
}
