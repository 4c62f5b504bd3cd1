package database

import (
	"context"
	"time"
)

// TenderRecord is a normalized tender ready for reconciliation, keyed by OCID.
type TenderRecord struct {
	OCID             string
	Title            string
	Description      *string
	BuyerName        string
	BuyerEmail       string
	BuyerPhone       string
	Province         string
	Industry         string
	ValueAmount      *float64
	Currency         string
	SubmissionMethod string
	DatePublished    time.Time
	DateClosing      time.Time
	Status           string

	Documents []DocumentRecord
}

type DocumentRecord struct {
	Title         string
	Description   *string
	URL           string
	Format        string
	DocumentType  string
	Language      string
	DatePublished *time.Time
	DateModified  *time.Time
}

// SearchQuery carries the query boundary parameters for ListTenders.
type SearchQuery struct {
	Text      string
	Province  string
	Industry  string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	ValueMin  *float64
	ValueMax  *float64
	Page      int
	PageSize  int
	SortField string
	SortOrder string
}

// FacetCounts holds per-value tender counts for one facet dimension.
type FacetCounts map[string]int

type Stats struct {
	Total      int
	ByStatus   FacetCounts
	ByProvince FacetCounts
	ByIndustry FacetCounts
	TotalValue float64
}

type TenderRepository interface {
	UpsertTender(ctx context.Context, record TenderRecord) (string, error)

	GetTenderByOCID(ctx context.Context, ocid string) (*Tender, error)
	GetDocuments(ctx context.Context, tenderID string) ([]TenderDocument, error)
	ListTenders(ctx context.Context, q SearchQuery) ([]Tender, int, error)

	GetTenderCount(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*Stats, error)
}

type SourceRepository interface {
	UpsertSource(ctx context.Context, name, feedURL string) error
	GetSource(ctx context.Context, name string) (*Source, error)
	UpdateSourceRun(ctx context.Context, name string, processed, failed int, nextFetch time.Time) error
}
