package mercari

import (
	"context"

	apperrors "mercari-search/internal/common/errors"
)

// Enrich fetches and normalizes the full detail record for one listing
// identifier. This is the isolation boundary: callers enriching many
// items must catch each call's failure individually so one bad item
// never aborts a batch. The failure class (validation, missing-field,
// transport, auth) is derivable from the returned error's type.
//
// Pacing between calls is deliberately not handled here; the
// orchestrator applies the fixed inter-call delay.
func (a *API) Enrich(ctx context.Context, id string) (*EnrichedRecord, error) {
	query := map[string]interface{}{
		"id":                                id,
		"country_code":                      a.countryCode,
		"include_item_attributes":           true,
		"include_product_page_component":    true,
		"include_non_ui_item_attributes":    true,
		"include_donation":                  true,
		"include_offer_like_coupon_display": true,
		"include_offer_coupon_display":      true,
		"include_item_attributes_sections":  true,
		"include_auction":                   true,
	}

	resp, err := a.doer.GetJSON(ctx, a.itemInfoURL, query)
	if err != nil {
		return nil, err
	}

	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Path:   "data",
			Kind:   apperrors.FieldMissingRequired,
			Detail: "item detail envelope missing",
		})
	}

	// The detail endpoint ships auction data under auction_info; fold it
	// into the canonical auction field before normalization.
	if auction, ok := data["auction_info"]; ok && auction != nil {
		if _, exists := data["auction"]; !exists {
			data["auction"] = auction
		}
	}

	record, err := NormalizeRecord(data)
	if err != nil {
		if ve, ok := apperrors.AsValidation(err); ok {
			fieldErrors := make([]string, 0, len(ve.Fields))
			for _, fe := range ve.Fields {
				fieldErrors = append(fieldErrors, fe.String())
			}
			a.logger.Error("item detail failed validation", map[string]interface{}{
				"itemId":      id,
				"errorCount":  len(ve.Fields),
				"fieldErrors": fieldErrors,
			})
		}
		return nil, err
	}
	return record, nil
}
