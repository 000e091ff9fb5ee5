// Package models contains database model definitions.
package models

// Region values. Coarse geographic classification derived from the office
// location, used for downstream authorization and reporting.
const (
	RegionAmer = "amer"
	RegionEmea = "emea"
)

// Regions lists all valid region values.
var Regions = []string{RegionAmer, RegionEmea}

// Confidentiality classes.
const (
	ConfidentialityClass1 = "Class 1"
	ConfidentialityClass2 = "Class 2"
	ConfidentialityClass3 = "Class 3"
)

// ConfidentialityClasses lists all valid confidentiality classes.
var ConfidentialityClasses = []string{
	ConfidentialityClass1,
	ConfidentialityClass2,
	ConfidentialityClass3,
}

// ValidConfidentiality reports whether value is an enumerated
// confidentiality class.
func ValidConfidentiality(value string) bool {
	for _, c := range ConfidentialityClasses {
		if c == value {
			return true
		}
	}

	return false
}

// Preferred language codes (ISO 639-1).
const (
	LanguageEnglish   = "en"
	LanguagePolish    = "pl"
	LanguageUkrainian = "ua"
	LanguageCzech     = "cs"
)

// Languages lists all valid preferred language codes.
var Languages = []string{
	LanguageEnglish,
	LanguagePolish,
	LanguageUkrainian,
	LanguageCzech,
}

// Color theme codes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Themes lists all valid color theme codes.
var Themes = []string{ThemeLight, ThemeDark}

// Known office locations.
const (
	OfficeBydgoszcz  = "Bydgoszcz Site (PL)"
	OfficeHavant     = "Havant Site (UK)"
	OfficePrague     = "Prague Site (CZ)"
	OfficeTallinn    = "Tallinn Site (EE)"
	OfficeZoetermeer = "Zoetermeer Site (NL)"
)

// OfficeLocations lists all known office locations.
var OfficeLocations = []string{
	OfficeBydgoszcz,
	OfficeHavant,
	OfficePrague,
	OfficeTallinn,
	OfficeZoetermeer,
}

// officeRegions maps each known office location to its region.
var officeRegions = map[string]string{
	OfficeBydgoszcz:  RegionEmea,
	OfficeHavant:     RegionEmea,
	OfficePrague:     RegionEmea,
	OfficeTallinn:    RegionEmea,
	OfficeZoetermeer: RegionEmea,
}

// RegionOfOffice returns the region of a known office location, or the
// empty string for an unknown one. Regions are always derived through this
// lookup and never taken from caller input or stored state.
func RegionOfOffice(officeLocation string) string {
	return officeRegions[officeLocation]
}
