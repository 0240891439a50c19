package domain

import "strings"

// Vehicle is a fully resolved brand/model/year selection.
type Vehicle struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  string `json:"year"`
}

// Query returns the "{brand} {model} {year}" search string.
func (v Vehicle) Query() string {
	return strings.Join([]string{v.Brand, v.Model, v.Year}, " ")
}

func (v Vehicle) String() string {
	return v.Query()
}

// VehicleImage pairs a vehicle with the direct URL of its image.
type VehicleImage struct {
	Vehicle Vehicle `json:"vehicle"`
	URL     string  `json:"url"`
}

// Step identifies the stage of a selection dialogue.
type Step string

const (
	StepBrand Step = "brand"
	StepModel Step = "model"
	StepYear  Step = "year"
	StepDone  Step = "done"
)

func (s Step) String() string {
	return string(s)
}
