package mercari

import (
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "mercari-search/internal/common/errors"
)

// CoerceID converts any identifier-shaped value (integer, string, null,
// absent) to its string form. Absent, null and empty all coerce to ""
// and never fail. The coercion is idempotent for string input.
func CoerceID(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// coerceBid converts an auction bid amount to its string representation,
// preserving values that may exceed safe integer precision downstream.
// Absent and null fall back to "0".
func coerceBid(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "0"
	case string:
		if val == "" {
			return "0"
		}
		return val
	default:
		return CoerceID(val)
	}
}

// fieldSet accumulates every offending field of one raw record so a
// single validation pass reports all failures at once. Unknown fields
// are never touched and therefore silently dropped.
type fieldSet struct {
	raw  map[string]interface{}
	errs []apperrors.FieldError
}

func newFieldSet(raw map[string]interface{}) *fieldSet {
	return &fieldSet{raw: raw}
}

func (f *fieldSet) addErr(path string, kind apperrors.FieldErrorKind, detail string) {
	f.errs = append(f.errs, apperrors.FieldError{Path: path, Kind: kind, Detail: detail})
}

// err returns the aggregated ValidationError, or nil on success.
func (f *fieldSet) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return apperrors.NewValidationError(f.errs...)
}

func (f *fieldSet) requireID(key string) string {
	v, ok := f.raw[key]
	if !ok {
		f.addErr(key, apperrors.FieldMissingRequired, "required identifier absent")
		return ""
	}
	return CoerceID(v)
}

func (f *fieldSet) id(key string) string {
	return CoerceID(f.raw[key])
}

func (f *fieldSet) requireString(key string) string {
	v, ok := f.raw[key]
	if !ok {
		f.addErr(key, apperrors.FieldMissingRequired, "required field absent")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected string, got %T", v))
		return ""
	}
	return s
}

func (f *fieldSet) optString(key string) string {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected string, got %T", v))
		return ""
	}
	return s
}

func (f *fieldSet) requireInt(key string) int {
	v, ok := f.raw[key]
	if !ok {
		f.addErr(key, apperrors.FieldMissingRequired, "required field absent")
		return 0
	}
	n, ok := toInt64(v)
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected integer, got %T", v))
		return 0
	}
	return int(n)
}

func (f *fieldSet) requireInt64(key string) int64 {
	v, ok := f.raw[key]
	if !ok {
		f.addErr(key, apperrors.FieldMissingRequired, "required field absent")
		return 0
	}
	n, ok := toInt64(v)
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected integer, got %T", v))
		return 0
	}
	return n
}

func (f *fieldSet) optInt(key string) int {
	return int(f.optInt64(key))
}

func (f *fieldSet) optInt64(key string) int64 {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return 0
	}
	n, ok := toInt64(v)
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected integer, got %T", v))
		return 0
	}
	return n
}

func (f *fieldSet) optFloat(key string) float64 {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		out, err := n.Float64()
		if err == nil {
			return out
		}
	case int:
		return float64(n)
	}
	f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected number, got %T", v))
	return 0
}

func (f *fieldSet) optBool(key string) bool {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected boolean, got %T", v))
		return false
	}
	return b
}

func (f *fieldSet) stringList(key string) []string {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return []string{}
	}
	list, ok := v.([]interface{})
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected list, got %T", v))
		return []string{}
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			f.addErr(fmt.Sprintf("%s.%d", key, i), apperrors.FieldTypeMismatch,
				fmt.Sprintf("expected string, got %T", item))
			continue
		}
		out = append(out, s)
	}
	return out
}

// object returns the nested mapping for key, or ok=false when the field
// is absent or null. A present non-object value is a type mismatch.
func (f *fieldSet) object(key string) (map[string]interface{}, bool) {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected object, got %T", v))
		return nil, false
	}
	return m, true
}

func (f *fieldSet) objectList(key string) []map[string]interface{} {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		f.addErr(key, apperrors.FieldTypeMismatch, fmt.Sprintf("expected list, got %T", v))
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			f.addErr(fmt.Sprintf("%s.%d", key, i), apperrors.FieldTypeMismatch,
				fmt.Sprintf("expected object, got %T", item))
			continue
		}
		out = append(out, m)
	}
	return out
}

// nested attaches the failures of an independently validated nested
// object under the parent field path. The caller decides whether to
// abort or skip the whole record.
func (f *fieldSet) nested(key string, errs []apperrors.FieldError) {
	for _, e := range errs {
		f.errs = append(f.errs, apperrors.FieldError{
			Path:   key + "." + e.Path,
			Kind:   apperrors.FieldNested,
			Detail: fmt.Sprintf("%s: %s", e.Kind, e.Detail),
		})
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		out, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return out, true
	case string:
		out, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return out, true
	default:
		return 0, false
	}
}

// NormalizeSummary converts one raw search hit into a ResultSummary or
// fails with the full set of offending field paths.
func NormalizeSummary(raw map[string]interface{}) (ResultSummary, error) {
	f := newFieldSet(raw)

	s := ResultSummary{
		ID:      f.requireID("id"),
		Name:    f.requireString("name"),
		Price:   f.requireInt("price"),
		Status:  ItemStatus(f.requireString("status")),
		Created: f.requireInt64("created"),
		Updated: f.requireInt64("updated"),
	}

	if thumbs := f.stringList("thumbnails"); len(thumbs) > 0 {
		s.ImageURL = thumbs[0]
	}

	if m, ok := f.object("auction"); ok {
		auction, errs := normalizeAuction(m)
		f.nested("auction", errs)
		s.Auction = &auction
	}

	if err := f.err(); err != nil {
		return ResultSummary{}, err
	}
	return s, nil
}

// NormalizeRecord converts one raw item-detail payload into an
// EnrichedRecord. Only the six required top-level fields can fail the
// record outright; everything else defaults or reports its own path.
func NormalizeRecord(raw map[string]interface{}) (*EnrichedRecord, error) {
	f := newFieldSet(raw)

	rec := &EnrichedRecord{
		ID:          f.requireID("id"),
		Name:        f.requireString("name"),
		Price:       f.requireInt("price"),
		Status:      ItemStatus(f.requireString("status")),
		Created:     f.requireInt64("created"),
		Updated:     f.requireInt64("updated"),
		Description: f.optString("description"),
		NumLikes:    f.optInt("num_likes"),
		NumComments: f.optInt("num_comments"),
		Photos:      f.stringList("photos"),
		Thumbnails:  f.stringList("thumbnails"),

		Liked:               f.optBool("liked"),
		IsOfferable:         f.optBool("is_offerable"),
		IsAnonymousShipping: f.optBool("is_anonymous_shipping"),
		IsWebVisible:        f.optBool("is_web_visible"),
		IsStockItem:         f.optBool("is_stock_item"),
	}

	if m, ok := f.object("item_condition"); ok {
		rec.Condition, _ = normalizeCondition(m)
	}
	if m, ok := f.object("item_category"); ok {
		category, errs := normalizeCategory(m)
		f.nested("item_category", errs)
		rec.Category = category
	}
	if m, ok := f.object("seller"); ok {
		seller, errs := normalizeSeller(m)
		f.nested("seller", errs)
		rec.Seller = seller
	}
	if m, ok := f.object("converted_price"); ok {
		converted, errs := normalizeConvertedPrice(m)
		f.nested("converted_price", errs)
		rec.ConvertedPrice = converted
	}
	if m, ok := f.object("shipping_payer"); ok {
		sub := newFieldSet(m)
		rec.ShippingPayer = ShippingPayer{
			ID:   sub.id("id"),
			Name: sub.optString("name"),
			Code: sub.optString("code"),
		}
		f.nested("shipping_payer", sub.errs)
	}
	if m, ok := f.object("shipping_method"); ok {
		sub := newFieldSet(m)
		rec.ShippingMethod = ShippingMethod{
			ID:           sub.id("id"),
			Name:         sub.optString("name"),
			IsDeprecated: sub.optBool("is_deprecated"),
		}
		f.nested("shipping_method", sub.errs)
	}
	if m, ok := f.object("shipping_from_area"); ok {
		sub := newFieldSet(m)
		rec.ShippingFromArea = ShippingFromArea{
			ID:   sub.id("id"),
			Name: sub.optString("name"),
		}
		f.nested("shipping_from_area", sub.errs)
	}
	if m, ok := f.object("shipping_duration"); ok {
		sub := newFieldSet(m)
		rec.ShippingDuration = ShippingDuration{
			ID:      sub.id("id"),
			Name:    sub.optString("name"),
			MinDays: sub.optInt("min_days"),
			MaxDays: sub.optInt("max_days"),
		}
		f.nested("shipping_duration", sub.errs)
	}
	if m, ok := f.object("shipping_class"); ok {
		sub := newFieldSet(m)
		rec.ShippingClass = ShippingClass{
			ID:          sub.id("id"),
			Fee:         sub.optInt("fee"),
			ShippingFee: sub.optInt("shipping_fee"),
			PickupFee:   sub.optInt("pickup_fee"),
			TotalFee:    sub.optInt("total_fee"),
			IsPickup:    sub.optBool("is_pickup"),
		}
		f.nested("shipping_class", sub.errs)
	}
	if m, ok := f.object("auction"); ok {
		auction, errs := normalizeAuction(m)
		f.nested("auction", errs)
		rec.Auction = &auction
	}

	for _, m := range f.objectList("parent_categories_ntiers") {
		sub := newFieldSet(m)
		rec.ParentCategories = append(rec.ParentCategories, ParentCategoryTier{
			ID:           sub.id("id"),
			Name:         sub.optString("name"),
			DisplayOrder: sub.optInt("display_order"),
		})
	}
	for _, m := range f.objectList("colors") {
		sub := newFieldSet(m)
		rec.Colors = append(rec.Colors, Color{
			ID:   sub.id("id"),
			Name: sub.optString("name"),
			RGB:  sub.optString("rgb"),
		})
	}
	for i, m := range f.objectList("item_attributes") {
		attr, errs := normalizeAttribute(m)
		f.nested(fmt.Sprintf("item_attributes.%d", i), errs)
		rec.Attributes = append(rec.Attributes, attr)
	}
	for i, m := range f.objectList("comments") {
		sub := newFieldSet(m)
		rec.Comments = append(rec.Comments, Comment{
			ID:      sub.id("id"),
			Created: sub.optInt64("created"),
		})
		f.nested(fmt.Sprintf("comments.%d", i), sub.errs)
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return rec, nil
}

func normalizeCondition(raw map[string]interface{}) (ItemCondition, []apperrors.FieldError) {
	f := newFieldSet(raw)
	c := ItemCondition{
		ID:   f.id("id"),
		Name: f.optString("name"),
	}
	return c, f.errs
}

func normalizeCategory(raw map[string]interface{}) (ItemCategory, []apperrors.FieldError) {
	f := newFieldSet(raw)
	c := ItemCategory{
		ID:                 f.id("id"),
		Name:               f.optString("name"),
		DisplayOrder:       f.optInt("display_order"),
		ParentCategoryID:   f.id("parent_category_id"),
		ParentCategoryName: f.optString("parent_category_name"),
		RootCategoryID:     f.id("root_category_id"),
		RootCategoryName:   f.optString("root_category_name"),
		BrandGroupID:       f.id("brand_group_id"),
	}
	return c, f.errs
}

func normalizeSeller(raw map[string]interface{}) (Seller, []apperrors.FieldError) {
	f := newFieldSet(raw)
	s := Seller{
		ID:           f.id("id"),
		Name:         f.optString("name"),
		Created:      f.optInt64("created"),
		NumSellItems: f.optInt("num_sell_items"),
		NumRatings:   f.optInt("num_ratings"),
		Score:        f.optFloat("score"),
		StarRating:   f.optFloat("star_rating_score"),
		IsOfficial:   f.optBool("is_official"),
		QuickShipper: f.optBool("quick_shipper"),
		IsBlocked:    f.optBool("is_blocked"),
	}
	if m, ok := f.object("ratings"); ok {
		sub := newFieldSet(m)
		s.Ratings = Ratings{
			Good:   sub.optInt("good"),
			Normal: sub.optInt("normal"),
			Bad:    sub.optInt("bad"),
		}
		f.nested("ratings", sub.errs)
	}
	return s, f.errs
}

func normalizeConvertedPrice(raw map[string]interface{}) (ConvertedPrice, []apperrors.FieldError) {
	f := newFieldSet(raw)
	c := ConvertedPrice{
		Price:        f.optInt("price"),
		CurrencyCode: f.optString("currency_code"),
		RateUpdated:  f.optInt64("rate_updated"),
	}
	return c, f.errs
}

func normalizeAuction(raw map[string]interface{}) (Auction, []apperrors.FieldError) {
	f := newFieldSet(raw)
	a := Auction{
		ID:          f.id("id"),
		BidDeadline: f.optString("bid_deadline"),
		TotalBid:    coerceBid(raw["total_bid"]),
		HighestBid:  coerceBid(raw["highest_bid"]),
	}
	return a, f.errs
}

func normalizeAttribute(raw map[string]interface{}) (ItemAttribute, []apperrors.FieldError) {
	f := newFieldSet(raw)
	a := ItemAttribute{
		ID:   f.id("id"),
		Text: f.optString("text"),
	}
	for _, m := range f.objectList("values") {
		sub := newFieldSet(m)
		a.Values = append(a.Values, ItemAttributeValue{
			ID:   sub.id("id"),
			Text: sub.optString("text"),
		})
	}
	return a, f.errs
}
