package models

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func fixtureProfile() *Profile {
	return &Profile{
		ID:                    "p-1",
		FullName:              ptr("Ada Obi"),
		DateOfBirth:           ptr("1990-04-12"),
		Gender:                ptr(GenderFemale),
		City:                  ptr("Lagos"),
		EmergencyContactPhone: ptr("+234 801 234 5678"),
		Allergies:             []string{"penicillin", "peanuts"},
		Genotype:              ptr(GenotypeAS),
		BloodGroup:            ptr(BloodGroupOPos),
		HeightCM:              ptr(172.5),
		WeightKG:              ptr(66.0),
		Age:                   ptr(36),
		BMI:                   ptr(22.2),
		ProfilePicture:        ptr("https://cdn.example.com/p-1.png"),
	}
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{17, BMIUnderweight},
		{18.49, BMIUnderweight},
		{18.5, BMINormal},
		{22.4, BMINormal},
		{24.99, BMINormal},
		{25, BMIOverweight},
		{29.9, BMIOverweight},
		{30, BMIObese},
		{31, BMIObese},
	}

	for _, tt := range tests {
		if got := BMICategory(tt.bmi); got != tt.want {
			t.Errorf("BMICategory(%v) = %q, want %q", tt.bmi, got, tt.want)
		}
	}
}

func TestProfile_BMILabel_NoBMI(t *testing.T) {
	p := fixtureProfile()
	p.BMI = nil

	if got := p.BMILabel(); got != "" {
		t.Errorf("expected empty label without server BMI, got %q", got)
	}

	var nilProfile *Profile
	if got := nilProfile.BMILabel(); got != "" {
		t.Errorf("expected empty label for nil profile, got %q", got)
	}
}

func TestProfile_Clone_IsDeep(t *testing.T) {
	p := fixtureProfile()
	c := p.Clone()

	*c.FullName = "Changed"
	c.Allergies[0] = "latex"
	*c.HeightCM = 100

	if *p.FullName != "Ada Obi" {
		t.Errorf("clone shares FullName with original")
	}
	if p.Allergies[0] != "penicillin" {
		t.Errorf("clone shares Allergies with original")
	}
	if *p.HeightCM != 172.5 {
		t.Errorf("clone shares HeightCM with original")
	}
}

func TestDraftFromProfile(t *testing.T) {
	d := DraftFromProfile(fixtureProfile())

	want := Draft{
		FullName:              "Ada Obi",
		DateOfBirth:           "1990-04-12",
		Gender:                "female",
		City:                  "Lagos",
		EmergencyContactPhone: "+234 801 234 5678",
		Allergies:             "penicillin, peanuts",
		Genotype:              "AS",
		BloodGroup:            "O+",
		HeightCM:              "172.5",
		WeightKG:              "66",
	}
	if d != want {
		t.Errorf("DraftFromProfile = %+v, want %+v", d, want)
	}
}

func TestDraftFromProfile_NilsBecomeEmpty(t *testing.T) {
	d := DraftFromProfile(&Profile{ID: "p-2"})
	if d != (Draft{}) {
		t.Errorf("expected empty draft, got %+v", d)
	}

	if d := DraftFromProfile(nil); d != (Draft{}) {
		t.Errorf("expected empty draft for nil profile, got %+v", d)
	}
}

func TestDraft_GetSet(t *testing.T) {
	var d Draft
	for i, f := range EditableFields {
		value := strings.Repeat("x", i+1)
		if !d.Set(f, value) {
			t.Fatalf("Set(%s) reported not editable", f)
		}
		if got := d.Get(f); got != value {
			t.Errorf("Get(%s) = %q, want %q", f, got, value)
		}
	}

	if d.Set(FieldGeneral, "x") {
		t.Error("expected general pseudo-field to be rejected")
	}
}

func TestDraft_Equal(t *testing.T) {
	seed := DraftFromProfile(fixtureProfile())
	edited := seed
	if !seed.Equal(edited) {
		t.Fatal("expected copies to be equal")
	}

	edited.Set(FieldCity, "Abuja")
	if seed.Equal(edited) {
		t.Error("expected edited draft to differ")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"   ", nil},
		{"abc", nil},
		{"NaN", nil},
		{"Inf", nil},
		{"-Inf", nil},
		{"Infinity", nil},
		{"0x1p7", nil},
		{"0X1P7", nil},
		{"1_0", nil},
		{"1e999", nil},
		{".", nil},
		{"172", ptr(172.0)},
		{" 64.5 ", ptr(64.5)},
		{".5", ptr(0.5)},
		{"1.75e2", ptr(175.0)},
	}

	for _, tt := range tests {
		got := ParseNumber(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseNumber(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

func TestDraft_Payload_NormalizesBlanks(t *testing.T) {
	d := Draft{
		FullName:  "  Ada Obi  ",
		City:      "   ",
		Allergies: " dust, , pollen ,",
		HeightCM:  "abc",
		WeightKG:  "70.5",
		Gender:    "female",
	}

	p := d.Payload()

	if p.FullName == nil || *p.FullName != "Ada Obi" {
		t.Errorf("expected trimmed full name, got %v", p.FullName)
	}
	if p.City != nil {
		t.Errorf("expected blank city to be null, got %q", *p.City)
	}
	if p.DateOfBirth != nil {
		t.Errorf("expected empty date of birth to be null")
	}
	if len(p.Allergies) != 2 || p.Allergies[0] != "dust" || p.Allergies[1] != "pollen" {
		t.Errorf("unexpected allergies %v", p.Allergies)
	}
	if p.HeightCM != nil {
		t.Errorf("expected unparsable height to be null, got %v", *p.HeightCM)
	}
	if p.WeightKG == nil || *p.WeightKG != 70.5 {
		t.Errorf("expected weight 70.5, got %v", p.WeightKG)
	}
	if p.Gender == nil || *p.Gender != GenderFemale {
		t.Errorf("expected gender female, got %v", p.Gender)
	}
}

func TestDraft_Payload_EncodesExplicitNulls(t *testing.T) {
	data, err := json.Marshal(Draft{FullName: "Ada"}.Payload())
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	body := string(data)
	for _, key := range []string{`"city":null`, `"height_cm":null`, `"allergies":null`} {
		if !strings.Contains(body, key) {
			t.Errorf("expected %s in %s", key, body)
		}
	}
	if strings.Contains(body, "NaN") {
		t.Errorf("payload must never carry NaN: %s", body)
	}
}

func TestErrorSet(t *testing.T) {
	var nilSet ErrorSet
	if !nilSet.Empty() {
		t.Error("nil set should be empty")
	}

	e := ErrorSet{FieldCity: "bad", FieldFullName: "short"}
	if !e.Has(FieldCity) || e.Has(FieldWeightKG) {
		t.Error("Has reported wrong membership")
	}

	c := e.Clone()
	delete(c, FieldCity)
	if !e.Has(FieldCity) {
		t.Error("Clone shares storage with original")
	}

	fields := e.Fields()
	if len(fields) != 2 || fields[0] != FieldCity || fields[1] != FieldFullName {
		t.Errorf("unexpected field order %v", fields)
	}
}

func TestSplitAllergies(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "penicillin, peanuts", []string{"penicillin", "peanuts"}},
		{"blanks dropped", " dust, , pollen ,", []string{"dust", "pollen"}},
		{"escaped comma", `Penicillin\, high dose, Peanuts`, []string{"Penicillin, high dose", "Peanuts"}},
		{"escaped backslash", `a\\, b`, []string{`a\`, "b"}},
		{"lone backslash kept", `latex\gloves`, []string{`latex\gloves`}},
		{"trailing backslash kept", `latex\`, []string{`latex\`}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitAllergies(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("SplitAllergies(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnchangedDraftKeepsAllergies(t *testing.T) {
	lists := [][]string{
		{"Penicillin, high dose", "Peanuts"},
		{`C:\pollen`, "dust,", ",mites"},
		{"penicillin"},
	}

	for _, list := range lists {
		p := fixtureProfile()
		p.Allergies = list

		got := DraftFromProfile(p).Payload().Allergies
		if !slices.Equal(got, list) {
			t.Errorf("allergies %q saved as %q", list, got)
		}
	}
}

func TestErrorSet_Displayable(t *testing.T) {
	tests := []struct {
		name string
		in   ErrorSet
		want ErrorSet
	}{
		{
			name: "editable fields kept",
			in:   ErrorSet{FieldCity: "Unknown city"},
			want: ErrorSet{FieldCity: "Unknown city"},
		},
		{
			name: "unknown key folded into general",
			in:   ErrorSet{"emergency_phone": "Enter a valid phone number."},
			want: ErrorSet{FieldGeneral: "emergency_phone: Enter a valid phone number."},
		},
		{
			name: "folded after existing general, ordered by key",
			in: ErrorSet{
				FieldGeneral: "Try again.",
				"zip":        "Required.",
				"email":      "Taken.",
				FieldCity:    "Unknown city",
			},
			want: ErrorSet{
				FieldGeneral: "Try again. email: Taken. zip: Required.",
				FieldCity:    "Unknown city",
			},
		},
		{
			name: "empty",
			in:   nil,
			want: ErrorSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Displayable()
			if !maps.Equal(got, tt.want) {
				t.Errorf("Displayable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnumValidity(t *testing.T) {
	if !GenderOther.Valid() || Gender("unknown").Valid() {
		t.Error("gender validity wrong")
	}
	if !GenotypeSC.Valid() || Genotype("XY").Valid() {
		t.Error("genotype validity wrong")
	}
	if !BloodGroupABNeg.Valid() || BloodGroup("C+").Valid() {
		t.Error("blood group validity wrong")
	}
}
