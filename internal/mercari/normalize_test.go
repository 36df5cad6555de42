package mercari

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercari-search/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

func rawRecord(overrides map[string]interface{}) map[string]interface{} {
	raw := map[string]interface{}{
		"id":      "m12345",
		"name":    "iPhone15 Pro 256GB",
		"price":   float64(128000),
		"status":  "ITEM_STATUS_ON_SALE",
		"created": float64(1700000000),
		"updated": float64(1700001000),
	}
	for k, v := range overrides {
		if v == nil {
			delete(raw, k)
			continue
		}
		raw[k] = v
	}
	return raw
}

func fieldPaths(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok, "expected a ValidationError, got %v", err)
	return ve.FieldPaths()
}

// ==========================
// Identifier Coercion
// ==========================

func TestCoerceID(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"string stays unchanged", "m12345", "m12345"},
		{"integer becomes string", float64(12345), "12345"},
		{"large integer keeps digits", float64(1234567890), "1234567890"},
		{"nil becomes empty", nil, ""},
		{"empty stays empty", "", ""},
		{"json number", json.Number("987654"), "987654"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoerceID(tt.input))
		})
	}
}

func TestCoerceID_Idempotent(t *testing.T) {
	once := CoerceID(float64(42))
	assert.Equal(t, once, CoerceID(once))
}

// ==========================
// Record Normalization
// ==========================

func TestNormalizeRecord_OptionalDefaults(t *testing.T) {
	rec, err := NormalizeRecord(rawRecord(nil))
	require.NoError(t, err)

	assert.Equal(t, "m12345", rec.ID)
	assert.Equal(t, "", rec.Description)
	assert.Equal(t, 0, rec.NumLikes)
	assert.Equal(t, 0, rec.NumComments)
	assert.False(t, rec.Liked)
	assert.Empty(t, rec.Photos)
	assert.Empty(t, rec.Thumbnails)
	assert.Nil(t, rec.Auction)

	// Absent nested objects stay at their zero-value sentinel.
	assert.Equal(t, Seller{}, rec.Seller)
	assert.Equal(t, ItemCategory{}, rec.Category)
	assert.Equal(t, ItemCondition{}, rec.Condition)
	assert.Equal(t, ShippingClass{}, rec.ShippingClass)
}

func TestNormalizeRecord_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name        string
		overrides   map[string]interface{}
		wantMissing []string
	}{
		{"absent price", map[string]interface{}{"price": nil}, []string{"price"}},
		{"absent name", map[string]interface{}{"name": nil}, []string{"name"}},
		{"absent id", map[string]interface{}{"id": nil}, []string{"id"}},
		{
			"multiple absences reported together",
			map[string]interface{}{"price": nil, "status": nil, "updated": nil},
			[]string{"price", "status", "updated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NormalizeRecord(rawRecord(tt.overrides))
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.ElementsMatch(t, tt.wantMissing, fieldPaths(t, err))

			ve, _ := apperrors.AsValidation(err)
			assert.True(t, ve.MissingOnly())
		})
	}
}

func TestNormalizeRecord_TypeMismatch(t *testing.T) {
	rec, err := NormalizeRecord(rawRecord(map[string]interface{}{
		"price": "expensive",
	}))
	require.Error(t, err)
	assert.Nil(t, rec)

	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "price", ve.Fields[0].Path)
	assert.Equal(t, apperrors.FieldTypeMismatch, ve.Fields[0].Kind)
	assert.False(t, ve.MissingOnly())
}

func TestNormalizeRecord_UnknownFieldsDropped(t *testing.T) {
	rec, err := NormalizeRecord(rawRecord(map[string]interface{}{
		"some_future_field":  "whatever",
		"another_new_object": map[string]interface{}{"x": float64(1)},
	}))
	require.NoError(t, err)
	assert.Equal(t, "m12345", rec.ID)
}

func TestNormalizeRecord_NestedObjects(t *testing.T) {
	rec, err := NormalizeRecord(rawRecord(map[string]interface{}{
		"seller": map[string]interface{}{
			"id":             float64(777),
			"name":           "tanaka",
			"num_sell_items": float64(12),
			"score":          99.5,
			"is_official":    true,
			"ratings": map[string]interface{}{
				"good":   float64(40),
				"normal": float64(2),
				"bad":    float64(1),
			},
		},
		"item_category": map[string]interface{}{
			"id":                 float64(88),
			"name":               "Smartphones",
			"parent_category_id": float64(7),
			"root_category_id":   float64(1),
		},
		"item_condition": map[string]interface{}{
			"id":   float64(2),
			"name": "Almost new",
		},
		"shipping_duration": map[string]interface{}{
			"id":       float64(3),
			"name":     "1-2 days",
			"min_days": float64(1),
			"max_days": float64(2),
		},
	}))
	require.NoError(t, err)

	assert.Equal(t, "777", rec.Seller.ID)
	assert.Equal(t, "tanaka", rec.Seller.Name)
	assert.True(t, rec.Seller.IsOfficial)
	assert.Equal(t, 40, rec.Seller.Ratings.Good)
	assert.Equal(t, "88", rec.Category.ID)
	assert.Equal(t, "7", rec.Category.ParentCategoryID)
	assert.Equal(t, "1", rec.Category.RootCategoryID)
	assert.Equal(t, "2", rec.Condition.ID)
	assert.Equal(t, 2, rec.ShippingDuration.MaxDays)
}

func TestNormalizeRecord_NestedFailurePropagated(t *testing.T) {
	rec, err := NormalizeRecord(rawRecord(map[string]interface{}{
		"seller": map[string]interface{}{
			"id":   float64(777),
			"name": float64(12345), // wrong type inside nested object
		},
	}))
	require.Error(t, err)
	assert.Nil(t, rec)

	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "seller.name", ve.Fields[0].Path)
	assert.Equal(t, apperrors.FieldNested, ve.Fields[0].Kind)
}

func TestNormalizeRecord_NestedObjectWrongShape(t *testing.T) {
	_, err := NormalizeRecord(rawRecord(map[string]interface{}{
		"seller": "not an object",
	}))
	require.Error(t, err)

	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "seller", ve.Fields[0].Path)
	assert.Equal(t, apperrors.FieldTypeMismatch, ve.Fields[0].Kind)
}

func TestNormalizeRecord_AuctionBidCoercion(t *testing.T) {
	tests := []struct {
		name        string
		auction     map[string]interface{}
		wantTotal   string
		wantHighest string
	}{
		{
			"integer bids become strings",
			map[string]interface{}{
				"id":          float64(9),
				"total_bid":   float64(15),
				"highest_bid": float64(132000),
			},
			"15", "132000",
		},
		{
			"absent bids fall back to zero",
			map[string]interface{}{"id": float64(9)},
			"0", "0",
		},
		{
			"null bids fall back to zero",
			map[string]interface{}{
				"id":          float64(9),
				"total_bid":   nil,
				"highest_bid": nil,
			},
			"0", "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NormalizeRecord(rawRecord(map[string]interface{}{
				"auction": tt.auction,
			}))
			require.NoError(t, err)
			require.NotNil(t, rec.Auction)
			assert.Equal(t, "9", rec.Auction.ID)
			assert.Equal(t, tt.wantTotal, rec.Auction.TotalBid)
			assert.Equal(t, tt.wantHighest, rec.Auction.HighestBid)
		})
	}
}

func TestNormalizeRecord_ListsAndAttributes(t *testing.T) {
	rec, err := NormalizeRecord(rawRecord(map[string]interface{}{
		"photos":     []interface{}{"https://img/1.jpg", "https://img/2.jpg"},
		"thumbnails": []interface{}{"https://thumb/1.jpg"},
		"item_attributes": []interface{}{
			map[string]interface{}{
				"id":   float64(5),
				"text": "Color",
				"values": []interface{}{
					map[string]interface{}{"id": float64(50), "text": "Black"},
				},
			},
		},
		"comments": []interface{}{
			map[string]interface{}{"id": float64(301), "created": float64(1700000500)},
		},
	}))
	require.NoError(t, err)

	assert.Len(t, rec.Photos, 2)
	assert.Equal(t, "https://thumb/1.jpg", rec.Thumbnails[0])
	require.Len(t, rec.Attributes, 1)
	assert.Equal(t, "5", rec.Attributes[0].ID)
	require.Len(t, rec.Attributes[0].Values, 1)
	assert.Equal(t, "Black", rec.Attributes[0].Values[0].Text)
	require.Len(t, rec.Comments, 1)
	assert.Equal(t, "301", rec.Comments[0].ID)
}

// ==========================
// Summary Normalization
// ==========================

func TestNormalizeSummary(t *testing.T) {
	raw := rawRecord(map[string]interface{}{
		"thumbnails": []interface{}{"https://thumb/1.jpg", "https://thumb/2.jpg"},
	})

	s, err := NormalizeSummary(raw)
	require.NoError(t, err)
	assert.Equal(t, "m12345", s.ID)
	assert.Equal(t, 128000, s.Price)
	assert.Equal(t, ItemStatusOnSale, s.Status)
	assert.Equal(t, "https://thumb/1.jpg", s.ImageURL)
	assert.Nil(t, s.Auction)
}

func TestNormalizeSummary_MissingPrice(t *testing.T) {
	_, err := NormalizeSummary(rawRecord(map[string]interface{}{"price": nil}))
	require.Error(t, err)
	assert.Equal(t, []string{"price"}, fieldPaths(t, err))
}

func TestNormalizeSummary_WithAuction(t *testing.T) {
	s, err := NormalizeSummary(rawRecord(map[string]interface{}{
		"auction": map[string]interface{}{
			"id":          float64(4),
			"total_bid":   float64(3),
			"highest_bid": float64(900),
		},
	}))
	require.NoError(t, err)
	require.NotNil(t, s.Auction)
	assert.Equal(t, "900", s.Auction.HighestBid)
}
