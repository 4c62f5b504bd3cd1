package tender

import (
	"errors"
	"testing"
	"time"

	"github.com/tendersza/tender-sync/app/ocds"
)

var normNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func validRelease() ocds.Release {
	closing := normNow.Add(31 * 24 * time.Hour)
	return ocds.Release{
		OCID: "ocds-1",
		Date: normNow.Add(-24 * time.Hour),
		Parties: []ocds.Party{
			{
				Name:  "City of Cape Town",
				Roles: []string{"buyer"},
				Address: &ocds.Address{
					Region: "Western Cape",
				},
				ContactPoint: &ocds.ContactPoint{
					Email:     "scm@capetown.gov.za",
					Telephone: "+27 21 400 1234",
				},
			},
		},
		Tender: ocds.Tender{
			Title:        "Road construction project",
			Status:       "active",
			TenderPeriod: &ocds.Period{EndDate: &closing},
		},
	}
}

func TestNormalize_ExampleScenario(t *testing.T) {
	record, err := Normalize(validRelease(), normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.OCID != "ocds-1" {
		t.Errorf("Expected OCID 'ocds-1', got %q", record.OCID)
	}
	if record.Province != "Western Cape" {
		t.Errorf("Expected province 'Western Cape', got %q", record.Province)
	}
	if record.Industry != "Construction & Infrastructure" {
		t.Errorf("Expected industry 'Construction & Infrastructure', got %q", record.Industry)
	}
	if record.Status != "open" {
		t.Errorf("Expected status 'open', got %q", record.Status)
	}
	if record.BuyerName != "City of Cape Town" {
		t.Errorf("Expected buyer 'City of Cape Town', got %q", record.BuyerName)
	}
	if record.BuyerEmail != "scm@capetown.gov.za" {
		t.Errorf("Expected buyer email, got %q", record.BuyerEmail)
	}
}

func TestNormalize_ExampleScenarioWithAward(t *testing.T) {
	release := validRelease()
	release.Awards = []ocds.Award{{ID: "a1", Status: "active"}}

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.Status != "awarded" {
		t.Errorf("Expected status 'awarded', got %q", record.Status)
	}
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ocds.Release)
		field  string
	}{
		{"missing ocid", func(r *ocds.Release) { r.OCID = "  " }, "ocid"},
		{"missing title", func(r *ocds.Release) { r.Tender.Title = "" }, "tender.title"},
		{"missing buyer", func(r *ocds.Release) { r.Parties = nil; r.Buyer = nil }, "buyer"},
	}

	for _, tc := range cases {
		release := validRelease()
		tc.mutate(&release)

		_, err := Normalize(release, normNow)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}

		var normErr *NormalizationError
		if !errors.As(err, &normErr) {
			t.Errorf("%s: expected NormalizationError, got %T", tc.name, err)
			continue
		}
		if normErr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, normErr.Field)
		}
	}
}

func TestNormalize_BuyerReferenceFallback(t *testing.T) {
	release := validRelease()
	release.Parties = nil
	release.Buyer = &ocds.OrgRef{Name: "Department of Public Works"}

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.BuyerName != "Department of Public Works" {
		t.Errorf("Expected buyer from release reference, got %q", record.BuyerName)
	}
	if record.BuyerEmail != "" || record.BuyerPhone != "" {
		t.Errorf("Buyer reference carries no contact details")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	release := validRelease()
	release.Tender.TenderPeriod = nil
	release.Tender.Value = nil
	release.Tender.SubmissionMethod = nil

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.Currency != DefaultCurrency {
		t.Errorf("Expected default currency %q, got %q", DefaultCurrency, record.Currency)
	}
	if record.ValueAmount != nil {
		t.Errorf("Expected nil value amount, got %v", *record.ValueAmount)
	}
	if record.SubmissionMethod != "Not specified" {
		t.Errorf("Expected 'Not specified', got %q", record.SubmissionMethod)
	}

	expectedClosing := release.Date.Add(DefaultClosingOffset)
	if !record.DateClosing.Equal(expectedClosing) {
		t.Errorf("Expected closing %v (publication + 30 days), got %v", expectedClosing, record.DateClosing)
	}
}

func TestNormalize_CurrencyHandling(t *testing.T) {
	release := validRelease()
	release.Tender.Value = &ocds.Value{Amount: 1500000, Currency: "usd"}

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.Currency != "USD" {
		t.Errorf("Expected normalized 'USD', got %q", record.Currency)
	}
	if record.ValueAmount == nil || *record.ValueAmount != 1500000 {
		t.Errorf("Expected value amount 1500000, got %v", record.ValueAmount)
	}

	// Unparseable currency codes degrade to the default.
	release.Tender.Value = &ocds.Value{Amount: 100, Currency: "not-a-code"}
	record, err = Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if record.Currency != DefaultCurrency {
		t.Errorf("Expected fallback to %q, got %q", DefaultCurrency, record.Currency)
	}
}

func TestNormalize_SubmissionMethodJoin(t *testing.T) {
	release := validRelease()
	release.Tender.SubmissionMethod = []string{"electronicSubmission", "written"}

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.SubmissionMethod != "electronicSubmission, written" {
		t.Errorf("Expected joined submission methods, got %q", record.SubmissionMethod)
	}
}

func TestNormalize_Documents(t *testing.T) {
	published := normNow.Add(-48 * time.Hour)
	release := validRelease()
	release.Tender.Documents = []ocds.Document{
		{
			Title:         "Bid specification",
			Description:   "Scope of works",
			URL:           "https://example.org/spec.pdf",
			Format:        "application/pdf",
			DocumentType:  "biddingDocuments",
			Language:      "en",
			DatePublished: &published,
		},
		{
			Title: "Site plan",
			URL:   "https://example.org/plan.dwg",
		},
	}

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(record.Documents) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(record.Documents))
	}

	first := record.Documents[0]
	if first.Description == nil || *first.Description != "Scope of works" {
		t.Errorf("Expected document description to pass through")
	}
	if first.DatePublished == nil || !first.DatePublished.Equal(published) {
		t.Errorf("Expected document published date to pass through")
	}

	second := record.Documents[1]
	if second.Language != "en" {
		t.Errorf("Expected default language 'en', got %q", second.Language)
	}
	if second.Description != nil {
		t.Errorf("Expected nil description for document without one")
	}
}

func TestNormalize_NilDescriptionPassthrough(t *testing.T) {
	release := validRelease()
	release.Tender.Description = ""

	record, err := Normalize(release, normNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if record.Description != nil {
		t.Errorf("Expected nil description, got %q", *record.Description)
	}
}
