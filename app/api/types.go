package api

import (
	"time"

	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/source"
)

type Handler struct {
	tenderRepo  database.TenderRepository
	sourceRepo  database.SourceRepository
	sourceCache *source.Cache
	userAgent   string
}

// SyncRequest is the body of POST /api/sync. All fields are optional; the
// source may be omitted when exactly one source is configured.
type SyncRequest struct {
	Source     string `json:"source"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
}

// Envelope is the JSON response wrapper used by the sync trigger boundary.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// allowed page sizes at the query boundary
var pageSizes = map[int]bool{12: true, 24: true, 48: true}
