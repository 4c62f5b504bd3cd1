package ocds

import (
	"time"
)

// Release is one OCDS release as published by the feed. Only the fields the
// sync pipeline reads are mapped; unknown fields are ignored by encoding/json.
type Release struct {
	OCID    string    `json:"ocid"`
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Tag     []string  `json:"tag"`
	Parties []Party   `json:"parties"`
	Buyer   *OrgRef   `json:"buyer"`
	Tender  Tender    `json:"tender"`
	Awards  []Award   `json:"awards"`
}

type Party struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Roles        []string      `json:"roles"`
	Address      *Address      `json:"address"`
	ContactPoint *ContactPoint `json:"contactPoint"`
}

// HasRole reports whether the party carries the given OCDS role.
func (p Party) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type OrgRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Address struct {
	StreetAddress string `json:"streetAddress"`
	Locality      string `json:"locality"`
	Region        string `json:"region"`
	PostalCode    string `json:"postalCode"`
	CountryName   string `json:"countryName"`
}

type ContactPoint struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

type Tender struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Value            *Value     `json:"value"`
	SubmissionMethod []string   `json:"submissionMethod"`
	TenderPeriod     *Period    `json:"tenderPeriod"`
	Items            []Item     `json:"items"`
	Documents        []Document `json:"documents"`
}

type Value struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Period struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type Item struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Classification *Classification `json:"classification"`
}

type Classification struct {
	Scheme      string `json:"scheme"`
	ID          string `json:"id"`
	Description string `json:"description"`
}

type Document struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	URL           string     `json:"url"`
	Format        string     `json:"format"`
	DocumentType  string     `json:"documentType"`
	Language      string     `json:"language"`
	DatePublished *time.Time `json:"datePublished"`
	DateModified  *time.Time `json:"dateModified"`
}

type Award struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Date   *time.Time `json:"date"`
	Value  *Value     `json:"value"`
}

// releasePage is the wire shape of the feed's paginated list endpoint.
type releasePage struct {
	Releases []Release `json:"releases"`
}
