package rider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFromInput_Defaults(t *testing.T) {
	r := NewFromInput(validInput().Normalize())

	assert.Equal(t, DefaultImage, r.Image)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, VehicleMotorcycle, r.Vehicle)
	assert.Equal(t, 4.5, r.Rating)
	assert.Equal(t, 0, r.RidesCompleted)
	assert.Empty(t, r.ID)
}

func TestInput_Normalize(t *testing.T) {
	in := Input{
		Name:   "  Jane Smith ",
		Email:  " Jane.Smith@Example.COM ",
		NRIC:   " S7654321B",
		Status: strPtr(" inactive "),
	}

	out := in.Normalize()

	assert.Equal(t, "Jane Smith", out.Name)
	assert.Equal(t, "jane.smith@example.com", out.Email)
	assert.Equal(t, "S7654321B", out.NRIC)
	assert.Equal(t, "inactive", *out.Status)
	assert.Equal(t, " inactive ", *in.Status)
}

func TestInput_ApplyTo_KeepsAbsentOptionalFields(t *testing.T) {
	stored := &Rider{
		ID:             "abc",
		Image:          "https://example.com/me.png",
		Status:         StatusPremium,
		Vehicle:        VehicleCar,
		Rating:         4.9,
		RidesCompleted: 189,
	}

	in := validInput()
	in.Vehicle = "Bicycle"
	in.ApplyTo(stored)

	assert.Equal(t, "abc", stored.ID)
	assert.Equal(t, "John Doe", stored.Name)
	assert.Equal(t, VehicleBicycle, stored.Vehicle)
	assert.Equal(t, "https://example.com/me.png", stored.Image)
	assert.Equal(t, StatusPremium, stored.Status)
	assert.Equal(t, 4.9, stored.Rating)
	assert.Equal(t, 189, stored.RidesCompleted)

	in.RidesCompleted = intPtr(0)
	in.Rating = floatPtr(0)
	in.ApplyTo(stored)

	assert.Equal(t, 0, stored.RidesCompleted)
	assert.Equal(t, 0.0, stored.Rating)
}

func TestEnums(t *testing.T) {
	assert.True(t, StatusSuspended.IsValid())
	assert.False(t, Status("retired").IsValid())
	assert.True(t, VehicleBicycle.IsValid())
	assert.False(t, Vehicle("bicycle").IsValid())
}
