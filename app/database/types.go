package database

import (
	"time"
)

// Tender is a canonical tender row. Exactly one exists per OCID.
type Tender struct {
	ID               string // Database UUID
	OCID             string // Stable external identifier from the OCDS feed
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
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TenderDocument is one attachment owned by a tender. The document set is
// replaced as a unit on every re-sync of the owning OCID.
type TenderDocument struct {
	ID            string
	TenderID      string
	Title         string
	Description   *string
	URL           string
	Format        string
	DocumentType  string
	Language      string
	DatePublished *time.Time
	DateModified  *time.Time
	CreatedAt     time.Time
}

// Source is a registered feed source row, one per source configuration file.
type Source struct {
	ID            string
	Name          string
	FeedURL       string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	LastProcessed int
	LastFailed    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
