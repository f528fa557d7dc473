// Package models defines the profile domain types shared by the VitaShop
// client: the canonical server record, the editable draft and the error set.
package models

import (
	"slices"
)

// Gender is the self-reported gender on a profile.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the accepted gender values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Valid returns true if the gender is one of the accepted values.
func (g Gender) Valid() bool {
	return slices.Contains(Genders, g)
}

// String returns the display string for the gender.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	default:
		return "Not set"
	}
}

// Genotype is a hemoglobin genotype.
type Genotype string

const (
	GenotypeAA Genotype = "AA"
	GenotypeAS Genotype = "AS"
	GenotypeSS Genotype = "SS"
	GenotypeAC Genotype = "AC"
	GenotypeSC Genotype = "SC"
	GenotypeCC Genotype = "CC"
)

// Genotypes lists the accepted genotypes in display order.
var Genotypes = []Genotype{GenotypeAA, GenotypeAS, GenotypeSS, GenotypeAC, GenotypeSC, GenotypeCC}

// Valid returns true if the genotype is one of the accepted values.
func (g Genotype) Valid() bool {
	return slices.Contains(Genotypes, g)
}

// BloodGroup is an ABO/Rh blood group.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists the accepted blood groups in display order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg, BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg, BloodGroupOPos, BloodGroupONeg,
}

// Valid returns true if the blood group is one of the accepted values.
func (b BloodGroup) Valid() bool {
	return slices.Contains(BloodGroups, b)
}

// Profile is the canonical, server-owned health and demographic record.
// The client replaces it wholesale on every successful mutation and never
// writes the derived fields.
type Profile struct {
	// Identity
	ID string `json:"id"`

	// Demographic
	FullName              *string `json:"full_name"`
	DateOfBirth           *string `json:"date_of_birth"`
	Gender                *Gender `json:"gender"`
	City                  *string `json:"city"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`

	// Health
	Allergies  []string    `json:"allergies"`
	Genotype   *Genotype   `json:"genotype"`
	BloodGroup *BloodGroup `json:"blood_group"`
	HeightCM   *float64    `json:"height_cm"`
	WeightKG   *float64    `json:"weight_kg"`

	// Derived by the server
	Age           *int     `json:"age,omitempty"`
	BMI           *float64 `json:"bmi,omitempty"`
	HeightDisplay *string  `json:"height_display,omitempty"`
	WeightDisplay *string  `json:"weight_display,omitempty"`

	// Media
	ProfilePicture *string `json:"profile_picture"`
}

// Clone returns a deep copy so callers cannot mutate controller-owned state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.FullName = clonePtr(p.FullName)
	c.DateOfBirth = clonePtr(p.DateOfBirth)
	c.Gender = clonePtr(p.Gender)
	c.City = clonePtr(p.City)
	c.EmergencyContactPhone = clonePtr(p.EmergencyContactPhone)
	c.Allergies = slices.Clone(p.Allergies)
	c.Genotype = clonePtr(p.Genotype)
	c.BloodGroup = clonePtr(p.BloodGroup)
	c.HeightCM = clonePtr(p.HeightCM)
	c.WeightKG = clonePtr(p.WeightKG)
	c.Age = clonePtr(p.Age)
	c.BMI = clonePtr(p.BMI)
	c.HeightDisplay = clonePtr(p.HeightDisplay)
	c.WeightDisplay = clonePtr(p.WeightDisplay)
	c.ProfilePicture = clonePtr(p.ProfilePicture)
	return &c
}

// DisplayName returns the full name or a placeholder.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil || *p.FullName == "" {
		return "Unnamed"
	}
	return *p.FullName
}

// BMILabel returns the category label for the server-computed BMI, or ""
// when the server has not computed one.
func (p *Profile) BMILabel() string {
	if p == nil || p.BMI == nil {
		return ""
	}
	return BMICategory(*p.BMI)
}

// BMI category labels.
const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal weight"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// BMICategory maps a body mass index to its WHO category label.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
