// Package api contains the request and response contracts of the dashboard
// JSON API. Version v1 is the current stable API version.
package api

import (
	"time"

	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// DateRangeRequest is an optional inclusive date interval in yyyy-mm-dd form
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,isodate"`
	To   string `json:"to" query:"to" validate:"omitempty,isodate"`
}

// HistoryRequest selects one ticker and an optional date range
type HistoryRequest struct {
	Ticker string `json:"ticker" query:"ticker" validate:"required,ticker"`
	DateRangeRequest
}

// PivotExportRequest controls the pivot download
type PivotExportRequest struct {
	Format string `json:"format" query:"format" validate:"required,oneof=csv xlsx md"`
	BOM    bool   `json:"bom" query:"bom"`
}

// LoadsRequest limits the load journal listing
type LoadsRequest struct {
	Limit int `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
}

// DataResponse is the envelope of successful list responses
type DataResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  int         `json:"count"`
}

// ReloadResponse reports the outcome of a forced refresh
type ReloadResponse struct {
	Status  string                `json:"status"`
	Changed bool                  `json:"changed"`
	Dataset domain.DatasetSummary `json:"dataset"`
	At      time.Time             `json:"at"`
}
