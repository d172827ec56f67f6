package lore

import (
	"fmt"
	"strings"
)

// SourceType is the closed set of lore source categories. Text that names no
// known category decodes to SourceUnknown.
type SourceType uint8

const (
	SourceUnknown SourceType = iota
	SourceScientific
	SourceOfficial
	SourceHistorical
	SourceNewspaper
	SourceFieldNotes
	SourceIndigenous
	SourceOralTradition
	SourceEyewitness

	numSourceTypes
)

var sourceNames = [numSourceTypes]string{
	SourceUnknown:       "unknown",
	SourceScientific:    "scientific",
	SourceOfficial:      "official",
	SourceHistorical:    "historical",
	SourceNewspaper:     "newspaper",
	SourceFieldNotes:    "field_notes",
	SourceIndigenous:    "indigenous",
	SourceOralTradition: "oral_tradition",
	SourceEyewitness:    "eyewitness",
}

func (s SourceType) String() string {
	if s >= numSourceTypes {
		return sourceNames[SourceUnknown]
	}
	return sourceNames[s]
}

// ParseSourceType maps a category name onto its SourceType. ok is false (and
// SourceUnknown returned) for names outside the set.
func ParseSourceType(name string) (SourceType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sourceNames {
		if n == name {
			return SourceType(i), true
		}
	}
	return SourceUnknown, false
}

// SourceTypes lists every category, SourceUnknown first.
func SourceTypes() []SourceType {
	out := make([]SourceType, numSourceTypes)
	for i := range out {
		out[i] = SourceType(i)
	}
	return out
}

func (s SourceType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SourceType) UnmarshalText(b []byte) error {
	*s, _ = ParseSourceType(string(b))
	return nil
}

// CredibilityTable holds the base credibility weight of every source type.
// The SourceUnknown slot is the weight used for anything unrecognised.
type CredibilityTable [numSourceTypes]float64

// DefaultCredibilityTable ranks peer-reviewed and official sources highest
// and unattributed material lowest.
func DefaultCredibilityTable() CredibilityTable {
	return CredibilityTable{
		SourceUnknown:       0.3,
		SourceScientific:    1.0,
		SourceOfficial:      0.9,
		SourceHistorical:    0.8,
		SourceNewspaper:     0.7,
		SourceFieldNotes:    0.7,
		SourceIndigenous:    0.6,
		SourceOralTradition: 0.5,
		SourceEyewitness:    0.6,
	}
}

// Weight returns the base credibility for s.
func (t CredibilityTable) Weight(s SourceType) float64 {
	if s >= numSourceTypes {
		return t[SourceUnknown]
	}
	return t[s]
}

// WithOverrides returns a copy of t with weights replaced by name. Unknown
// names are an error.
func (t CredibilityTable) WithOverrides(byName map[string]float64) (CredibilityTable, error) {
	out := t
	for name, w := range byName {
		st, ok := ParseSourceType(name)
		if !ok {
			return t, fmt.Errorf("unknown source type %q", name)
		}
		out[st] = w
	}
	return out, nil
}
