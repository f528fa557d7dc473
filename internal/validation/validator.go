// Package validation checks a profile draft before it is submitted.
//
// Validation is pure: the same draft and the same "today" always yield the
// same error set. Every rule is evaluated on every call; there is no
// incremental state.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vitashop/vitashop/internal/models"
	"github.com/vitashop/vitashop/internal/util"
)

// Messages surfaced for each rule.
const (
	MsgFullName    = "Full name must be at least 2 characters long"
	MsgDateOfBirth = "Please enter a valid date of birth"
	MsgFutureBirth = "Date of birth cannot be in the future"
	MsgHeight      = "Height must be between 30 and 300 cm"
	MsgWeight      = "Weight must be between 1 and 500 kg"
	MsgPhone       = "Please enter a valid phone number"
	MsgCity        = "City must be at least 2 characters long"
	MsgGender      = "Please select a valid gender"
	MsgGenotype    = "Please select a valid genotype"
	MsgBloodGroup  = "Please select a valid blood group"
)

// validator/v10 tags for each rule.
const (
	phoneTag          = "phone"
	heightRangeTag    = "gte=30,lte=300"
	weightRangeTag    = "gte=1,lte=500"
	ageRangeTag       = "gte=0,lte=150"
	minTwoCharsTag    = "min=2"
	requiredAndTwoTag = "required,min=2"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)

// Validator validates drafts against the profile field rules.
type Validator struct {
	clock util.Clock
	v     *validator.Validate
}

// New creates a Validator that measures dates against clock.
func New(clock util.Clock) *Validator {
	if clock == nil {
		clock = util.SystemClock{}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &Validator{clock: clock, v: v}
}

var defaultValidator = New(util.SystemClock{})

// Validate checks d against today's date on the system clock.
func Validate(d models.Draft) models.ErrorSet {
	return defaultValidator.Validate(d)
}

// Validate returns every rule violation in d. An empty set means d may be
// submitted.
func (val *Validator) Validate(d models.Draft) models.ErrorSet {
	errs := models.ErrorSet{}

	if val.v.Var(strings.TrimSpace(d.FullName), requiredAndTwoTag) != nil {
		errs[models.FieldFullName] = MsgFullName
	}

	if msg := val.checkDateOfBirth(d.DateOfBirth); msg != "" {
		errs[models.FieldDateOfBirth] = msg
	}

	if !val.inRange(d.HeightCM, heightRangeTag) {
		errs[models.FieldHeightCM] = MsgHeight
	}

	if !val.inRange(d.WeightKG, weightRangeTag) {
		errs[models.FieldWeightKG] = MsgWeight
	}

	if phone := strings.TrimSpace(d.EmergencyContactPhone); phone != "" {
		if val.v.Var(phone, phoneTag) != nil {
			errs[models.FieldEmergencyContactPhone] = MsgPhone
		}
	}

	if city := strings.TrimSpace(d.City); city != "" {
		if val.v.Var(city, minTwoCharsTag) != nil {
			errs[models.FieldCity] = MsgCity
		}
	}

	if g := strings.TrimSpace(d.Gender); g != "" && !models.Gender(g).Valid() {
		errs[models.FieldGender] = MsgGender
	}
	if g := strings.TrimSpace(d.Genotype); g != "" && !models.Genotype(g).Valid() {
		errs[models.FieldGenotype] = MsgGenotype
	}
	if b := strings.TrimSpace(d.BloodGroup); b != "" && !models.BloodGroup(b).Valid() {
		errs[models.FieldBloodGroup] = MsgBloodGroup
	}

	return errs
}

// ValidateField runs the full validation and returns the message for f
// only, or "" when f is valid.
func (val *Validator) ValidateField(d models.Draft, f models.Field) string {
	return val.Validate(d).Get(f)
}

// checkDateOfBirth returns the violation message for s, or "".
func (val *Validator) checkDateOfBirth(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	today := util.Today(val.clock)
	dob, err := time.ParseInLocation(util.DateFormat, s, today.Location())
	if err != nil {
		return MsgDateOfBirth
	}

	if dob.After(today) {
		return MsgFutureBirth
	}

	// Year difference only; the backend owns day-precise age.
	age := today.Year() - dob.Year()
	if val.v.Var(age, ageRangeTag) != nil {
		return MsgDateOfBirth
	}

	return ""
}

// inRange reports whether optional numeric text is blank, or is a finite
// decimal satisfying tag.
func (val *Validator) inRange(s, tag string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}

	n := models.ParseNumber(s)
	if n == nil {
		return false
	}

	return val.v.Var(*n, tag) == nil
}
