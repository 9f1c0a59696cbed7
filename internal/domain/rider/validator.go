package rider

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fieldMessages maps an Input field to the message reported when any of its rules fail
var fieldMessages = map[string]string{
	"Name":           "Name must be at least 2 characters long",
	"Email":          "Valid email is required",
	"Position":       "Position must be at least 2 characters long",
	"NRIC":           "NRIC must be at least 5 characters long",
	"Status":         "Status must be active, inactive, premium, or suspended",
	"Phone":          "Phone number must be at least 8 characters long",
	"Vehicle":        "Vehicle must be Motorcycle, Bicycle, or Car",
	"License":        "License must be at least 3 characters long",
	"Rating":         "Rating must be between 0 and 5",
	"RidesCompleted": "Rides completed cannot be negative",
}

// FieldValidator checks rider payloads against the roster's business rules.
// It is safe for concurrent use.
type FieldValidator struct {
	validate *validator.Validate
}

// NewFieldValidator creates a validator with the rider rules registered
func NewFieldValidator() *FieldValidator {
	v := validator.New()
	// RegisterValidation only fails on an empty tag or a builtin name clash
	_ = v.RegisterValidation("rider_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &FieldValidator{validate: v}
}

// Validate returns one message per failing field, in field order. An empty
// slice means the payload is acceptable. The input is normalized first.
func (fv *FieldValidator) Validate(in Input) []string {
	in = in.Normalize()
	problems := []string{}

	err := fv.validate.Struct(in)
	if err == nil {
		return problems
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return append(problems, err.Error())
	}

	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.StructField()
		if seen[field] {
			continue
		}
		seen[field] = true
		if msg, ok := fieldMessages[field]; ok {
			problems = append(problems, msg)
			continue
		}
		problems = append(problems, fe.Error())
	}
	return problems
}
