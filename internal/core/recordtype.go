package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/importparser/internal/registry"
)

// ErrUnknownRecordType is returned for a record type that is not supported.
var ErrUnknownRecordType = errors.New("unknown record type")

// Record type names, as used for action file sections.
const (
	TypeSynthese             = "synthese"
	TypeSource               = "source"
	TypeDataset              = "dataset"
	TypeAcquisitionFramework = "acquisition_framework"
	TypeOrganism             = "organism"
	TypeUser                 = "user"
	TypeTaxrefRank           = "taxref_rank"
	TypeTaxref               = "taxref"
	TypeTheme                = "theme"
	TypeAttribute            = "attribute"
	TypeText                 = "text"
	TypeMedia                = "media"
)

// RecordType selects the stages and reference domains of an import.
type RecordType struct {
	Name    string
	Abbrev  string
	Domains []registry.Domain
}

// RecordTypes lists the supported record types.
var RecordTypes = []RecordType{
	{TypeSynthese, "s", []registry.Domain{
		registry.Datasets, registry.Modules, registry.Sources, registry.Nomenclatures,
		registry.Scinames, registry.Users, registry.Areas, registry.Organisms,
	}},
	{TypeSource, "so", nil},
	{TypeDataset, "d", []registry.Domain{registry.Nomenclatures, registry.AcquisitionFrameworks}},
	{TypeAcquisitionFramework, "af", []registry.Domain{registry.Nomenclatures}},
	{TypeOrganism, "o", nil},
	{TypeUser, "u", []registry.Domain{registry.Organisms}},
	{TypeTaxrefRank, "tr", nil},
	{TypeTaxref, "t", nil},
	{TypeTheme, "th", nil},
	{TypeAttribute, "a", []registry.Domain{registry.Themes}},
	{TypeText, "tx", []registry.Domain{registry.Attributes}},
	{TypeMedia, "m", []registry.Domain{registry.Taxa, registry.Scinames}},
}

// LookupRecordType finds a record type by name or abbreviation.
func LookupRecordType(s string) (RecordType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, rt := range RecordTypes {
		if rt.Name == s || rt.Abbrev == s {
			return rt, nil
		}
	}
	return RecordType{}, fmt.Errorf("%w: %q", ErrUnknownRecordType, s)
}

// NeedsRegistry reports whether the record type resolves any code.
func (rt RecordType) NeedsRegistry() bool {
	return len(rt.Domains) > 0
}

// shape wraps a record in the concrete row of the record type.
func (rt RecordType) shape(rec *Record) Row {
	switch rt.Name {
	case TypeSynthese:
		return Observation{rec}
	case TypeDataset:
		return Dataset{rec}
	case TypeAcquisitionFramework:
		return AcquisitionFramework{rec}
	case TypeUser:
		return User{rec}
	case TypeAttribute:
		return Attribute{rec}
	case TypeText:
		return AttributeText{rec}
	case TypeMedia:
		return Media{rec}
	}
	return Plain{rec}
}
