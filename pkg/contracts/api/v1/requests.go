// Package api holds the request and response shapes of the bondscope HTTP
// API, version v1.
package api

// Dataset names accepted by the heatmap and volume endpoints.
const (
	DatasetPurchases   = "purchases"
	DatasetRedemptions = "redemptions"
)

// DonorListQuery filters and pages the donor totals table.
type DonorListQuery struct {
	Limit  int    `query:"limit" validate:"min=0,max=10000"`
	Offset int    `query:"offset" validate:"min=0"`
	Tier   string `query:"tier" validate:"omitempty,tier"`
	Search string `query:"q" validate:"omitempty,max=256"`
}

// DonorNamesQuery filters the donor name list used for autocompletion.
type DonorNamesQuery struct {
	Prefix string `query:"prefix" validate:"omitempty,max=256"`
	Limit  int    `query:"limit" validate:"min=0,max=10000"`
}

// DonorPath is the {name} path parameter of the donor endpoints.
type DonorPath struct {
	Name string `query:"name" validate:"required,donorname"`
}
