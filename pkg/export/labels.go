// Package export renders finished translation results as downloadable
// artifacts (JSON and PDF).
package export

import "github.com/digibhoomi/record-translator/internal/models"

// FieldLabels maps extracted field names to the display labels used in
// rendered documents.
var FieldLabels = map[string]string{
	models.FieldSurveyNumber:       "Survey/Khasra Number",
	models.FieldOwnerName:          "Owner Name",
	models.FieldFatherName:         "Father's Name",
	models.FieldArea:               "Land Area",
	models.FieldLandType:           "Land Type",
	models.FieldVillage:            "Village",
	models.FieldTehsil:             "Tehsil",
	models.FieldDistrict:           "District",
	models.FieldState:              "State",
	models.FieldDate:               "Date",
	models.FieldRevenue:            "Revenue Amount",
	models.FieldRegistrationNumber: "Registration Number",
}

// FieldOrder fixes the rendering order of extracted fields.
var FieldOrder = []string{
	models.FieldSurveyNumber,
	models.FieldOwnerName,
	models.FieldFatherName,
	models.FieldVillage,
	models.FieldTehsil,
	models.FieldDistrict,
	models.FieldState,
	models.FieldArea,
	models.FieldLandType,
	models.FieldDate,
	models.FieldRevenue,
	models.FieldRegistrationNumber,
}

// Label returns the display label for a field, falling back to the raw name.
func Label(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}
