package mercari

import "fmt"

// Sort selects the search ranking key.
type Sort string

const (
	SortDefault     Sort = "SORT_DEFAULT"
	SortCreatedTime Sort = "SORT_CREATED_TIME"
	SortNumLikes    Sort = "SORT_NUM_LIKES"
	SortScore       Sort = "SORT_SCORE"
	SortPrice       Sort = "SORT_PRICE"
)

func (s Sort) Valid() bool {
	switch s {
	case SortDefault, SortCreatedTime, SortNumLikes, SortScore, SortPrice:
		return true
	}
	return false
}

// Order selects ascending or descending ranking.
type Order string

const (
	OrderDesc Order = "ORDER_DESC"
	OrderAsc  Order = "ORDER_ASC"
)

func (o Order) Valid() bool {
	return o == OrderDesc || o == OrderAsc
}

// SearchStatus filters the search by listing status.
type SearchStatus string

const (
	StatusDefault SearchStatus = "STATUS_DEFAULT"
	StatusOnSale  SearchStatus = "STATUS_ON_SALE"
	StatusSoldOut SearchStatus = "STATUS_SOLD_OUT"
)

func (s SearchStatus) Valid() bool {
	switch s {
	case StatusDefault, StatusOnSale, StatusSoldOut:
		return true
	}
	return false
}

// ItemStatus is the per-listing status reported on summaries and records.
type ItemStatus string

const (
	ItemStatusUnspecified ItemStatus = "ITEM_STATUS_UNSPECIFIED"
	ItemStatusOnSale      ItemStatus = "ITEM_STATUS_ON_SALE"
	ItemStatusTrading     ItemStatus = "ITEM_STATUS_TRADING"
	ItemStatusSoldOut     ItemStatus = "ITEM_STATUS_SOLD_OUT"
	ItemStatusStop        ItemStatus = "ITEM_STATUS_STOP"
	ItemStatusCancel      ItemStatus = "ITEM_STATUS_CANCEL"
	ItemStatusAdminCancel ItemStatus = "ITEM_STATUS_ADMIN_CANCEL"
)

func validateEnums(sort Sort, order Order, status SearchStatus) error {
	if !sort.Valid() {
		return fmt.Errorf("invalid sort key: %q", sort)
	}
	if !order.Valid() {
		return fmt.Errorf("invalid sort order: %q", order)
	}
	if !status.Valid() {
		return fmt.Errorf("invalid status filter: %q", status)
	}
	return nil
}
