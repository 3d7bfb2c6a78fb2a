package core

// Column names read by the record type stages.
const (
	ColUniqueID             = "unique_id_sinp"
	ColSciname              = "cd_nom"
	ColDateMin              = "date_min"
	ColDateMax              = "date_max"
	ColLastAction           = "meta_last_action"
	ColAltitudeMin          = "altitude_min"
	ColAltitudeMax          = "altitude_max"
	ColDepthMin             = "depth_min"
	ColDepthMax             = "depth_max"
	ColDataset              = "code_dataset"
	ColModule               = "code_module"
	ColSource               = "code_source"
	ColOrganism             = "code_organism"
	ColDigitiser            = "code_digitiser"
	ColAcquisitionFramework = "code_acquisition_framework"
	ColTheme                = "theme_code"
	ColTaxon                = "cd_ref"

	// NomenclaturePrefix marks columns resolved through nomenclatures.
	NomenclaturePrefix = "code_nomenclature_"

	// AreaPrefix marks columns resolved through areas; the suffix is the
	// area type code.
	AreaPrefix = "code_area_"
)

// Observation is a synthese row.
type Observation struct{ *Record }

// LastAction returns the meta_last_action marker.
func (o Observation) LastAction() string {
	v, _ := o.Get(ColLastAction)
	return v
}

// Dates returns date_min and date_max with their presence.
func (o Observation) Dates() (dateMin string, okMin bool, dateMax string, okMax bool) {
	dateMin, okMin = o.Get(ColDateMin)
	dateMax, okMax = o.Get(ColDateMax)
	return
}

// Dataset is a dataset row.
type Dataset struct{ *Record }

// AcquisitionFramework is an acquisition framework row.
type AcquisitionFramework struct{ *Record }

// User is a user (role) row.
type User struct{ *Record }

// Attribute is a TaxHub attribute row.
type Attribute struct{ *Record }

// Media is a TaxHub media row.
type Media struct{ *Record }

// Taxon returns the cd_ref value.
func (m Media) Taxon() (string, bool) {
	return m.Get(ColTaxon)
}

// AttributeText is a TaxHub text row: one cd_ref column and one column per
// attribute name.
type AttributeText struct{ *Record }

// Plain is a row of a record type with no type specific stage.
type Plain struct{ *Record }
