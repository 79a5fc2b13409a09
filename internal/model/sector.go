package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Sector is one of the nine closed-set sector categories. Free-text
// sector/industry strings are mapped to a Sector upstream; the scoring
// engine only accepts the closed set.
type Sector string

const (
	SectorSaaS       Sector = "SaaS"
	SectorBiotech    Sector = "Biotech"
	SectorSpaceTech  Sector = "SpaceTech"
	SectorQuantum    Sector = "Quantum"
	SectorHardware   Sector = "Hardware"
	SectorFinTech    Sector = "FinTech"
	SectorConsumer   Sector = "Consumer"
	SectorIndustrial Sector = "Industrial"
	SectorOther      Sector = "Other"
)

// ErrUnknownSector is returned for sector tags outside the closed set.
// This is a programming error, not a data-quality condition.
var ErrUnknownSector = eris.New("model: unknown sector")

// AllSectors lists every valid sector tag.
func AllSectors() []Sector {
	return []Sector{
		SectorSaaS, SectorBiotech, SectorSpaceTech, SectorQuantum,
		SectorHardware, SectorFinTech, SectorConsumer, SectorIndustrial,
		SectorOther,
	}
}

// ParseSector maps a sector tag string to a Sector, case-insensitively.
func ParseSector(s string) (Sector, error) {
	for _, sec := range AllSectors() {
		if strings.EqualFold(s, string(sec)) {
			return sec, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownSector, "%q", s)
}

// Valid reports whether the sector is a member of the closed set.
func (s Sector) Valid() bool {
	for _, sec := range AllSectors() {
		if s == sec {
			return true
		}
	}
	return false
}
