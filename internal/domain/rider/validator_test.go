package rider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validInput() Input {
	return Input{
		Name:     "John Doe",
		Email:    "john.doe@example.com",
		Position: "Senior Rider",
		NRIC:     "S1234567A",
		Phone:    "+1234567890",
		Vehicle:  "Motorcycle",
		License:  "MC123456",
	}
}

func TestFieldValidator_Valid(t *testing.T) {
	fv := NewFieldValidator()

	in := validInput()
	in.Status = strPtr("premium")
	in.Rating = floatPtr(5)
	in.RidesCompleted = intPtr(0)

	assert.Empty(t, fv.Validate(in))
	assert.NotNil(t, fv.Validate(in))
}

func TestFieldValidator_AllFieldsInvalid(t *testing.T) {
	fv := NewFieldValidator()

	problems := fv.Validate(Input{
		Name:           "J",
		Email:          "not-an-email",
		Position:       "X",
		NRIC:           "S12",
		Phone:          "123",
		Vehicle:        "Truck",
		License:        "AB",
		Status:         strPtr("retired"),
		Rating:         floatPtr(7),
		RidesCompleted: intPtr(-1),
	})

	assert.Equal(t, []string{
		"Name must be at least 2 characters long",
		"Valid email is required",
		"Position must be at least 2 characters long",
		"NRIC must be at least 5 characters long",
		"Status must be active, inactive, premium, or suspended",
		"Phone number must be at least 8 characters long",
		"Vehicle must be Motorcycle, Bicycle, or Car",
		"License must be at least 3 characters long",
		"Rating must be between 0 and 5",
		"Rides completed cannot be negative",
	}, problems)
}

func TestFieldValidator_Cases(t *testing.T) {
	fv := NewFieldValidator()

	tests := []struct {
		name   string
		mutate func(in *Input)
		want   []string
	}{
		{
			name:   "whitespace padded name is trimmed before length check",
			mutate: func(in *Input) { in.Name = "  J  " },
			want:   []string{"Name must be at least 2 characters long"},
		},
		{
			name:   "email without domain dot",
			mutate: func(in *Input) { in.Email = "john@example" },
			want:   []string{"Valid email is required"},
		},
		{
			name:   "email with inner space",
			mutate: func(in *Input) { in.Email = "john doe@example.com" },
			want:   []string{"Valid email is required"},
		},
		{
			name:   "missing email",
			mutate: func(in *Input) { in.Email = "" },
			want:   []string{"Valid email is required"},
		},
		{
			name:   "vehicle is case sensitive",
			mutate: func(in *Input) { in.Vehicle = "car" },
			want:   []string{"Vehicle must be Motorcycle, Bicycle, or Car"},
		},
		{
			name:   "missing vehicle",
			mutate: func(in *Input) { in.Vehicle = "" },
			want:   []string{"Vehicle must be Motorcycle, Bicycle, or Car"},
		},
		{
			name:   "negative rating",
			mutate: func(in *Input) { in.Rating = floatPtr(-0.1) },
			want:   []string{"Rating must be between 0 and 5"},
		},
		{
			name:   "zero rating is accepted",
			mutate: func(in *Input) { in.Rating = floatPtr(0) },
			want:   []string{},
		},
		{
			name:   "empty status is treated as absent",
			mutate: func(in *Input) { in.Status = strPtr("") },
			want:   []string{},
		},
		{
			name:   "data uri image is accepted",
			mutate: func(in *Input) { in.Image = strPtr("data:image/png;base64,iVBORw0KGgo=") },
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			assert.Equal(t, tt.want, fv.Validate(in))
		})
	}
}

func TestFieldValidator_DoesNotMutateInput(t *testing.T) {
	fv := NewFieldValidator()

	in := validInput()
	in.Email = "  John.Doe@Example.com "
	_ = fv.Validate(in)

	assert.Equal(t, "  John.Doe@Example.com ", in.Email)
}
