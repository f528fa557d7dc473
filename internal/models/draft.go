package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalRe is plain decimal notation. strconv alone also takes hex
// floats, underscores and the infinity spellings.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Field names an editable profile field. The values double as the JSON keys
// the backend uses when it reports field errors.
type Field string

const (
	FieldFullName              Field = "full_name"
	FieldDateOfBirth           Field = "date_of_birth"
	FieldGender                Field = "gender"
	FieldCity                  Field = "city"
	FieldEmergencyContactPhone Field = "emergency_contact_phone"
	FieldAllergies             Field = "allergies"
	FieldGenotype              Field = "genotype"
	FieldBloodGroup            Field = "blood_group"
	FieldHeightCM              Field = "height_cm"
	FieldWeightKG              Field = "weight_kg"

	// FieldGeneral holds a backend rejection that names no field.
	FieldGeneral Field = "general"
)

// EditableFields lists the draft fields in form order.
var EditableFields = []Field{
	FieldFullName,
	FieldDateOfBirth,
	FieldGender,
	FieldCity,
	FieldEmergencyContactPhone,
	FieldAllergies,
	FieldGenotype,
	FieldBloodGroup,
	FieldHeightCM,
	FieldWeightKG,
}

// Label returns the human-readable label for a field.
func (f Field) Label() string {
	switch f {
	case FieldFullName:
		return "Full Name"
	case FieldDateOfBirth:
		return "Date of Birth"
	case FieldGender:
		return "Gender"
	case FieldCity:
		return "City"
	case FieldEmergencyContactPhone:
		return "Emergency Phone"
	case FieldAllergies:
		return "Allergies"
	case FieldGenotype:
		return "Genotype"
	case FieldBloodGroup:
		return "Blood Group"
	case FieldHeightCM:
		return "Height (cm)"
	case FieldWeightKG:
		return "Weight (kg)"
	default:
		return string(f)
	}
}

// Draft is the string-typed working copy of a profile's editable fields.
// Numeric fields stay text until submission so partial input never breaks
// rendering. Allergies are held as comma separated text.
type Draft struct {
	FullName              string
	DateOfBirth           string
	Gender                string
	City                  string
	EmergencyContactPhone string
	Allergies             string
	Genotype              string
	BloodGroup            string
	HeightCM              string
	WeightKG              string
}

// DraftFromProfile seeds a draft verbatim from a profile; nil values become
// empty strings.
func DraftFromProfile(p *Profile) Draft {
	if p == nil {
		return Draft{}
	}
	return Draft{
		FullName:              deref(p.FullName),
		DateOfBirth:           deref(p.DateOfBirth),
		Gender:                string(deref(p.Gender)),
		City:                  deref(p.City),
		EmergencyContactPhone: deref(p.EmergencyContactPhone),
		Allergies:             JoinAllergies(p.Allergies),
		Genotype:              string(deref(p.Genotype)),
		BloodGroup:            string(deref(p.BloodGroup)),
		HeightCM:              formatNumber(p.HeightCM),
		WeightKG:              formatNumber(p.WeightKG),
	}
}

// Get returns the value of a draft field.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldFullName:
		return d.FullName
	case FieldDateOfBirth:
		return d.DateOfBirth
	case FieldGender:
		return d.Gender
	case FieldCity:
		return d.City
	case FieldEmergencyContactPhone:
		return d.EmergencyContactPhone
	case FieldAllergies:
		return d.Allergies
	case FieldGenotype:
		return d.Genotype
	case FieldBloodGroup:
		return d.BloodGroup
	case FieldHeightCM:
		return d.HeightCM
	case FieldWeightKG:
		return d.WeightKG
	default:
		return ""
	}
}

// Set assigns a draft field. It reports false for fields that are not
// editable.
func (d *Draft) Set(f Field, v string) bool {
	switch f {
	case FieldFullName:
		d.FullName = v
	case FieldDateOfBirth:
		d.DateOfBirth = v
	case FieldGender:
		d.Gender = v
	case FieldCity:
		d.City = v
	case FieldEmergencyContactPhone:
		d.EmergencyContactPhone = v
	case FieldAllergies:
		d.Allergies = v
	case FieldGenotype:
		d.Genotype = v
	case FieldBloodGroup:
		d.BloodGroup = v
	case FieldHeightCM:
		d.HeightCM = v
	case FieldWeightKG:
		d.WeightKG = v
	default:
		return false
	}
	return true
}

// Equal reports whether two drafts hold the same text in every field.
func (d Draft) Equal(other Draft) bool {
	return d == other
}

// ParseNumber parses decimal draft text. Blank, non-decimal and non-finite
// input all yield nil so NaN never reaches the wire.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// JoinAllergies renders a list as comma separated text. A comma or
// backslash inside an entry is escaped with a backslash, so SplitAllergies
// returns the original entries.
func JoinAllergies(list []string) string {
	escaped := make([]string, len(list))
	for i, item := range list {
		escaped[i] = allergyEscaper.Replace(item)
	}
	return strings.Join(escaped, ", ")
}

var allergyEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`)

// SplitAllergies turns comma separated text into a trimmed list without
// blanks. "\," is a literal comma and "\\" a literal backslash; any other
// backslash is kept as typed.
func SplitAllergies(s string) []string {
	var (
		out     []string
		current strings.Builder
	)
	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			out = append(out, part)
		}
		current.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\\' && i+1 < len(runes) && (runes[i+1] == ',' || runes[i+1] == '\\'):
			i++
			current.WriteRune(runes[i])
		case r == ',':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return out
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
