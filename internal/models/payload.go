package models

import "strings"

// ProfilePayload is the body of PUT /profile/. Absent values are sent as
// explicit nulls.
type ProfilePayload struct {
	FullName              *string     `json:"full_name"`
	DateOfBirth           *string     `json:"date_of_birth"`
	Gender                *Gender     `json:"gender"`
	City                  *string     `json:"city"`
	EmergencyContactPhone *string     `json:"emergency_contact_phone"`
	Allergies             []string    `json:"allergies"`
	Genotype              *Genotype   `json:"genotype"`
	BloodGroup            *BloodGroup `json:"blood_group"`
	HeightCM              *float64    `json:"height_cm"`
	WeightKG              *float64    `json:"weight_kg"`
}

// Payload normalizes the draft for submission: blank strings become null
// and numeric text is parsed or nulled.
func (d Draft) Payload() ProfilePayload {
	return ProfilePayload{
		FullName:              nullable(d.FullName),
		DateOfBirth:           nullable(d.DateOfBirth),
		Gender:                nullableAs[Gender](d.Gender),
		City:                  nullable(d.City),
		EmergencyContactPhone: nullable(d.EmergencyContactPhone),
		Allergies:             SplitAllergies(d.Allergies),
		Genotype:              nullableAs[Genotype](d.Genotype),
		BloodGroup:            nullableAs[BloodGroup](d.BloodGroup),
		HeightCM:              ParseNumber(d.HeightCM),
		WeightKG:              ParseNumber(d.WeightKG),
	}
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nullableAs[T ~string](s string) *T {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v := T(s)
	return &v
}
