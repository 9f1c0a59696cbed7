package rider

import (
	"strings"
	"time"
)

// Status represents the roster status of a rider
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusPremium   Status = "premium"
	StatusSuspended Status = "suspended"
)

// Vehicle represents the vehicle a rider delivers with
type Vehicle string

const (
	VehicleMotorcycle Vehicle = "Motorcycle"
	VehicleBicycle    Vehicle = "Bicycle"
	VehicleCar        Vehicle = "Car"
)

const (
	DefaultImage          = "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg"
	DefaultStatus         = StatusActive
	DefaultVehicle        = VehicleMotorcycle
	DefaultRating         = 4.5
	DefaultRidesCompleted = 0
)

// Rider represents a courier on the roster
type Rider struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Position       string    `json:"position"`
	NRIC           string    `json:"nric"`
	Image          string    `json:"image"`
	Status         Status    `json:"status"`
	Phone          string    `json:"phone"`
	Vehicle        Vehicle   `json:"vehicle"`
	License        string    `json:"license"`
	Rating         float64   `json:"rating"`
	RidesCompleted int       `json:"ridesCompleted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPremium, StatusSuspended:
		return true
	}
	return false
}

// IsValid validates the vehicle
func (v Vehicle) IsValid() bool {
	switch v {
	case VehicleMotorcycle, VehicleBicycle, VehicleCar:
		return true
	}
	return false
}

// Input is the client payload for create and update. Optional fields are
// pointers so that an absent field can be told apart from a zero value.
type Input struct {
	Name           string   `json:"name" validate:"min=2"`
	Email          string   `json:"email" validate:"rider_email"`
	Position       string   `json:"position" validate:"min=2"`
	NRIC           string   `json:"nric" validate:"min=5"`
	Image          *string  `json:"image"`
	Status         *string  `json:"status" validate:"omitempty,oneof=active inactive premium suspended"`
	Phone          string   `json:"phone" validate:"min=8"`
	Vehicle        string   `json:"vehicle" validate:"oneof=Motorcycle Bicycle Car"`
	License        string   `json:"license" validate:"min=3"`
	Rating         *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	RidesCompleted *int     `json:"ridesCompleted" validate:"omitempty,gte=0"`
}

// Normalize returns a copy with text fields trimmed and the email lowercased.
func (in Input) Normalize() Input {
	out := in
	out.Name = strings.TrimSpace(in.Name)
	out.Email = strings.ToLower(strings.TrimSpace(in.Email))
	out.Position = strings.TrimSpace(in.Position)
	out.NRIC = strings.TrimSpace(in.NRIC)
	out.Phone = strings.TrimSpace(in.Phone)
	out.Vehicle = strings.TrimSpace(in.Vehicle)
	out.License = strings.TrimSpace(in.License)
	out.Status = trimmedOrNil(in.Status)
	out.Image = trimmedOrNil(in.Image)
	return out
}

// trimmedOrNil drops blank optional strings so they are treated as absent
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// NewFromInput builds a rider from a validated input, filling defaults for absent fields.
func NewFromInput(in Input) *Rider {
	r := &Rider{
		Image:          DefaultImage,
		Status:         DefaultStatus,
		Vehicle:        DefaultVehicle,
		Rating:         DefaultRating,
		RidesCompleted: DefaultRidesCompleted,
	}
	in.ApplyTo(r)
	return r
}

// ApplyTo copies the input onto r. Required fields are always copied;
// optional fields only when present in the payload.
func (in Input) ApplyTo(r *Rider) {
	r.Name = in.Name
	r.Email = in.Email
	r.Position = in.Position
	r.NRIC = in.NRIC
	r.Phone = in.Phone
	r.License = in.License
	if in.Vehicle != "" {
		r.Vehicle = Vehicle(in.Vehicle)
	}
	if in.Image != nil {
		r.Image = *in.Image
	}
	if in.Status != nil {
		r.Status = Status(*in.Status)
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.RidesCompleted != nil {
		r.RidesCompleted = *in.RidesCompleted
	}
}

// Clone returns a copy that shares no state with r
func (r *Rider) Clone() *Rider {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
