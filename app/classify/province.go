package classify

import (
	"strings"

	"github.com/tendersza/tender-sync/app/ocds"
)

// ProvinceNational is returned when no geographic signal can be derived.
const ProvinceNational = "National"

type provinceEntry struct {
	keyword  string
	province string
}

// provinceTable maps lower-cased region, locality and free-text keywords to
// provinces. Ordered: earlier entries win when several keywords co-occur, so
// full province names come before city names and abbreviations.
var provinceTable = []provinceEntry{
	{"western cape", "Western Cape"},
	{"eastern cape", "Eastern Cape"},
	{"northern cape", "Northern Cape"},
	{"kwazulu-natal", "KwaZulu-Natal"},
	{"kwazulu natal", "KwaZulu-Natal"},
	{"free state", "Free State"},
	{"north west", "North West"},
	{"north-west", "North West"},
	{"mpumalanga", "Mpumalanga"},
	{"limpopo", "Limpopo"},
	{"gauteng", "Gauteng"},

	// Abbreviations
	{"kzn", "KwaZulu-Natal"},
	{"gp", "Gauteng"},
	{"wc", "Western Cape"},
	{"ec", "Eastern Cape"},
	{"nc", "Northern Cape"},
	{"fs", "Free State"},
	{"nw", "North West"},
	{"mp", "Mpumalanga"},

	// Major cities and metros
	{"johannesburg", "Gauteng"},
	{"pretoria", "Gauteng"},
	{"tshwane", "Gauteng"},
	{"ekurhuleni", "Gauteng"},
	{"soweto", "Gauteng"},
	{"midrand", "Gauteng"},
	{"sandton", "Gauteng"},
	{"cape town", "Western Cape"},
	{"stellenbosch", "Western Cape"},
	{"george", "Western Cape"},
	{"paarl", "Western Cape"},
	{"durban", "KwaZulu-Natal"},
	{"ethekwini", "KwaZulu-Natal"},
	{"pietermaritzburg", "KwaZulu-Natal"},
	{"richards bay", "KwaZulu-Natal"},
	{"port elizabeth", "Eastern Cape"},
	{"gqeberha", "Eastern Cape"},
	{"east london", "Eastern Cape"},
	{"mthatha", "Eastern Cape"},
	{"bhisho", "Eastern Cape"},
	{"bloemfontein", "Free State"},
	{"welkom", "Free State"},
	{"kimberley", "Northern Cape"},
	{"upington", "Northern Cape"},
	{"polokwane", "Limpopo"},
	{"thohoyandou", "Limpopo"},
	{"nelspruit", "Mpumalanga"},
	{"mbombela", "Mpumalanga"},
	{"witbank", "Mpumalanga"},
	{"emalahleni", "Mpumalanga"},
	{"mahikeng", "North West"},
	{"mafikeng", "North West"},
	{"rustenburg", "North West"},
	{"potchefstroom", "North West"},
}

// DeriveProvince resolves a release to a South African province. Priority:
// buyer party region, then buyer party locality (both exact table lookups),
// then a substring scan over the tender title and description. Falls back to
// "National" so it always returns a value.
func DeriveProvince(release ocds.Release) string {
	if buyer := findBuyerParty(release); buyer != nil && buyer.Address != nil {
		if p, ok := lookupProvince(buyer.Address.Region); ok {
			return p
		}
		if p, ok := lookupProvince(buyer.Address.Locality); ok {
			return p
		}
	}

	text := strings.ToLower(release.Tender.Title + " " + release.Tender.Description)
	for _, entry := range provinceTable {
		// Two- and three-letter abbreviations are only safe as exact region
		// lookups; scanning them as substrings would match unrelated words.
		if len(entry.keyword) <= 3 {
			continue
		}
		if strings.Contains(text, entry.keyword) {
			return entry.province
		}
	}

	return ProvinceNational
}

func lookupProvince(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	for _, entry := range provinceTable {
		if entry.keyword == value {
			return entry.province, true
		}
	}
	return "", false
}

func findBuyerParty(release ocds.Release) *ocds.Party {
	for i := range release.Parties {
		if release.Parties[i].HasRole("buyer") {
			return &release.Parties[i]
		}
	}
	return nil
}
