package classify

import (
	"testing"

	"github.com/tendersza/tender-sync/app/ocds"
)

func buyerWithRegion(region, locality string) ocds.Party {
	return ocds.Party{
		Name:    "Test Buyer",
		Roles:   []string{"buyer"},
		Address: &ocds.Address{Region: region, Locality: locality},
	}
}

func TestDeriveProvince_BuyerRegion(t *testing.T) {
	release := ocds.Release{
		Parties: []ocds.Party{buyerWithRegion("Western Cape", "")},
	}

	if got := DeriveProvince(release); got != "Western Cape" {
		t.Errorf("Expected 'Western Cape', got %q", got)
	}
}

func TestDeriveProvince_RegionCasingAndWhitespace(t *testing.T) {
	cases := []string{"western cape", "WESTERN CAPE", "  Western Cape  ", "WeStErN cApE"}

	for _, region := range cases {
		release := ocds.Release{
			Parties: []ocds.Party{buyerWithRegion(region, "")},
		}
		if got := DeriveProvince(release); got != "Western Cape" {
			t.Errorf("Region %q: expected 'Western Cape', got %q", region, got)
		}
	}
}

func TestDeriveProvince_RegionOutranksText(t *testing.T) {
	// The buyer's region wins even when the tender text names another province.
	release := ocds.Release{
		Parties: []ocds.Party{buyerWithRegion("Western Cape", "")},
		Tender: ocds.Tender{
			Title:       "Road maintenance in Gauteng",
			Description: "Work to be performed in Johannesburg",
		},
	}

	if got := DeriveProvince(release); got != "Western Cape" {
		t.Errorf("Expected region to take priority, got %q", got)
	}
}

func TestDeriveProvince_LocalityFallback(t *testing.T) {
	release := ocds.Release{
		Parties: []ocds.Party{buyerWithRegion("", "Durban")},
	}

	if got := DeriveProvince(release); got != "KwaZulu-Natal" {
		t.Errorf("Expected 'KwaZulu-Natal' from locality, got %q", got)
	}
}

func TestDeriveProvince_Abbreviation(t *testing.T) {
	release := ocds.Release{
		Parties: []ocds.Party{buyerWithRegion("KZN", "")},
	}

	if got := DeriveProvince(release); got != "KwaZulu-Natal" {
		t.Errorf("Expected 'KwaZulu-Natal' from abbreviation, got %q", got)
	}
}

func TestDeriveProvince_TextScan(t *testing.T) {
	release := ocds.Release{
		Tender: ocds.Tender{
			Title: "Supply of stationery to offices in Polokwane",
		},
	}

	if got := DeriveProvince(release); got != "Limpopo" {
		t.Errorf("Expected 'Limpopo' from text scan, got %q", got)
	}
}

func TestDeriveProvince_NationalFallback(t *testing.T) {
	releases := []ocds.Release{
		{},
		{Tender: ocds.Tender{Title: "Supply of office chairs", Description: "Standard supply"}},
		{Parties: []ocds.Party{buyerWithRegion("Nowhere Special", "")}},
	}

	for i, release := range releases {
		if got := DeriveProvince(release); got != ProvinceNational {
			t.Errorf("Release %d: expected %q, got %q", i, ProvinceNational, got)
		}
	}
}

func TestDeriveProvince_NonBuyerPartyIgnored(t *testing.T) {
	release := ocds.Release{
		Parties: []ocds.Party{
			{Name: "Supplier Co", Roles: []string{"supplier"}, Address: &ocds.Address{Region: "Gauteng"}},
		},
		Tender: ocds.Tender{Title: "Generic supply contract"},
	}

	if got := DeriveProvince(release); got != ProvinceNational {
		t.Errorf("Expected %q when only non-buyer parties carry a region, got %q", ProvinceNational, got)
	}
}

func TestDeriveProvince_ShortAbbreviationNotScannedInText(t *testing.T) {
	// "project" contains "ec" as a substring; the text scan must not read it
	// as the Eastern Cape abbreviation.
	release := ocds.Release{
		Tender: ocds.Tender{Title: "Generic supply project"},
	}

	if got := DeriveProvince(release); got != ProvinceNational {
		t.Errorf("Expected %q, got %q", ProvinceNational, got)
	}
}
