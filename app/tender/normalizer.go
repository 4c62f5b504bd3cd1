package tender

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/tendersza/tender-sync/app/classify"
	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/ocds"
)

const (
	// DefaultCurrency is assumed when the source omits or mangles the
	// currency code.
	DefaultCurrency = "ZAR"

	// DefaultClosingOffset is added to the publication date when the source
	// omits a closing date.
	DefaultClosingOffset = 30 * 24 * time.Hour

	defaultDocumentLanguage = "en"
	noSubmissionMethod      = "Not specified"
)

// NormalizationError reports a release that cannot be normalized because a
// required field is entirely absent. Local to one record; never fatal to a
// batch.
type NormalizationError struct {
	OCID  string
	Field string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize release %q: missing required field %q", e.OCID, e.Field)
}

// Normalize transforms one raw release into a reconciliation-ready record.
// Malformed optional data degrades to defaults; only an absent OCID, title or
// buyer reference fails the record.
func Normalize(release ocds.Release, now time.Time) (*database.TenderRecord, error) {
	if strings.TrimSpace(release.OCID) == "" {
		return nil, &NormalizationError{OCID: release.OCID, Field: "ocid"}
	}
	if strings.TrimSpace(release.Tender.Title) == "" {
		return nil, &NormalizationError{OCID: release.OCID, Field: "tender.title"}
	}

	record := &database.TenderRecord{
		OCID:     release.OCID,
		Title:    release.Tender.Title,
		Province: classify.DeriveProvince(release),
		Industry: classify.CategorizeIndustry(release),
		Status:   string(ResolveStatus(release, now)),
	}

	if release.Tender.Description != "" {
		desc := release.Tender.Description
		record.Description = &desc
	}

	buyer := findBuyer(release)
	if buyer == nil {
		return nil, &NormalizationError{OCID: release.OCID, Field: "buyer"}
	}
	record.BuyerName = buyer.Name
	if buyer.ContactPoint != nil {
		record.BuyerEmail = buyer.ContactPoint.Email
		record.BuyerPhone = buyer.ContactPoint.Telephone
	}

	record.Currency = DefaultCurrency
	if release.Tender.Value != nil {
		amount := release.Tender.Value.Amount
		record.ValueAmount = &amount
		if unit, err := currency.ParseISO(release.Tender.Value.Currency); err == nil {
			record.Currency = unit.String()
		}
	}

	if len(release.Tender.SubmissionMethod) > 0 {
		record.SubmissionMethod = strings.Join(release.Tender.SubmissionMethod, ", ")
	} else {
		record.SubmissionMethod = noSubmissionMethod
	}

	record.DatePublished = release.Date
	if release.Tender.TenderPeriod != nil && release.Tender.TenderPeriod.EndDate != nil {
		record.DateClosing = *release.Tender.TenderPeriod.EndDate
	} else {
		record.DateClosing = release.Date.Add(DefaultClosingOffset)
	}

	record.Documents = normalizeDocuments(release.Tender.Documents)

	return record, nil
}

// findBuyer prefers the party carrying the buyer role; a release that only
// names a buyer reference still normalizes, just without contact details.
func findBuyer(release ocds.Release) *ocds.Party {
	for i := range release.Parties {
		if release.Parties[i].HasRole("buyer") {
			return &release.Parties[i]
		}
	}
	if release.Buyer != nil && strings.TrimSpace(release.Buyer.Name) != "" {
		return &ocds.Party{Name: release.Buyer.Name}
	}
	return nil
}

func normalizeDocuments(docs []ocds.Document) []database.DocumentRecord {
	if len(docs) == 0 {
		return nil
	}

	out := make([]database.DocumentRecord, 0, len(docs))
	for _, doc := range docs {
		record := database.DocumentRecord{
			Title:         doc.Title,
			URL:           doc.URL,
			Format:        doc.Format,
			DocumentType:  doc.DocumentType,
			Language:      doc.Language,
			DatePublished: doc.DatePublished,
			DateModified:  doc.DateModified,
		}
		if record.Language == "" {
			record.Language = defaultDocumentLanguage
		}
		if doc.Description != "" {
			desc := doc.Description
			record.Description = &desc
		}
		out = append(out, record)
	}
	return out
}
