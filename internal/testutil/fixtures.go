package testutil

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/vitashop/vitashop/internal/media"
	"github.com/vitashop/vitashop/internal/models"
)

// PNGHeader is enough of a PNG file for MIME sniffing.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

// GIFHeader is enough of a GIF file for MIME sniffing.
var GIFHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")

// FixtureProfile creates a fully populated profile.
func FixtureProfile(overrides ...func(*models.Profile)) *models.Profile {
	gender := models.GenderFemale
	genotype := models.GenotypeAA
	blood := models.BloodGroupOPos

	profile := &models.Profile{
		ID:                    uuid.NewString(),
		FullName:              StringPtr("Ada Obi"),
		DateOfBirth:           StringPtr("1990-04-12"),
		Gender:                &gender,
		City:                  StringPtr("Lagos"),
		EmergencyContactPhone: StringPtr("+234 801 234 5678"),
		Allergies:             []string{"penicillin"},
		Genotype:              &genotype,
		BloodGroup:            &blood,
		HeightCM:              Float64Ptr(170),
		WeightKG:              Float64Ptr(64.7),
		Age:                   IntPtr(36),
		BMI:                   Float64Ptr(22.4),
		HeightDisplay:         StringPtr("170 cm"),
		WeightDisplay:         StringPtr("64.7 kg"),
		ProfilePicture:        StringPtr("https://cdn.vitashop.example/pictures/original.png"),
	}

	for _, override := range overrides {
		override(profile)
	}

	return profile
}

// FixturePicture creates an in-memory PNG selection.
func FixturePicture(name string) media.File {
	return media.FromBytes(name, PNGHeader)
}

// FixtureFile creates a selection with an explicit type and size. Data is
// zero-filled up to size.
func FixtureFile(name, mime string, size int64) media.File {
	return media.File{Name: name, MIME: mime, Size: size, Data: bytes.Repeat([]byte{0}, int(min(size, 64)))}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
