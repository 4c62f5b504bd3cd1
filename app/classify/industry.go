package classify

import (
	"strings"

	"github.com/tendersza/tender-sync/app/ocds"
)

// IndustryOther is returned when no category keyword matches.
const IndustryOther = "Other"

type industryEntry struct {
	category string
	keywords []string
}

// industryTable is an ordered association list. When keywords from several
// categories co-occur in a tender's text the first category in declaration
// order wins; the order itself is the tie-break policy.
var industryTable = []industryEntry{
	{"Construction & Infrastructure", []string{
		"construction", "building", "renovation", "civil works", "roadworks",
		"road", "bridge", "paving", "earthworks", "infrastructure", "plumbing",
		"electrical installation", "fencing", "demolition",
	}},
	{"Information Technology", []string{
		"software", "hardware", "ict", "information technology", "computer",
		"network", "server", "website", "system development", "licenses",
		"data centre", "cybersecurity", "it support",
	}},
	{"Healthcare & Medical", []string{
		"medical", "hospital", "clinic", "pharmaceutical", "health",
		"medicine", "surgical", "ambulance", "laboratory", "nursing",
	}},
	{"Education & Training", []string{
		"training", "education", "school", "learnership", "skills development",
		"curriculum", "tuition", "workshop facilitation",
	}},
	{"Transportation & Logistics", []string{
		"transport", "logistics", "fleet", "vehicle", "courier", "freight",
		"shuttle", "bus service", "delivery service",
	}},
	{"Security & Safety", []string{
		"security", "guarding", "surveillance", "cctv", "access control",
		"fire protection", "alarm", "safety equipment",
	}},
	{"Professional Services", []string{
		"consulting", "consultancy", "legal services", "audit", "accounting",
		"advisory", "research", "feasibility study", "actuarial",
	}},
	{"Utilities & Energy", []string{
		"electricity", "water supply", "sanitation", "energy", "solar",
		"generator", "sewerage", "borehole", "power supply",
	}},
	{"Food & Catering", []string{
		"catering", "food", "meals", "kitchen", "canteen", "groceries",
	}},
	{"Office Supplies & Equipment", []string{
		"stationery", "furniture", "office supplies", "printer", "photocopier",
		"office equipment", "toner",
	}},
	{"Cleaning & Maintenance", []string{
		"cleaning", "hygiene", "maintenance", "gardening", "landscaping",
		"pest control", "waste removal", "refuse",
	}},
}

// Categories returns the fixed category labels in declaration order,
// excluding the "Other" fallback.
func Categories() []string {
	out := make([]string, 0, len(industryTable))
	for _, entry := range industryTable {
		out = append(out, entry.category)
	}
	return out
}

// CategorizeIndustry assigns a release to an industry category by substring
// matching over the tender title, description and the first line item's
// classification description. Total: returns "Other" when nothing matches.
func CategorizeIndustry(release ocds.Release) string {
	text := release.Tender.Title + " " + release.Tender.Description
	if len(release.Tender.Items) > 0 && release.Tender.Items[0].Classification != nil {
		text += " " + release.Tender.Items[0].Classification.Description
	}
	text = strings.ToLower(text)

	for _, entry := range industryTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.category
			}
		}
	}

	return IndustryOther
}
