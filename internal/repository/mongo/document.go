package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gocomet/rider-roster/internal/domain/rider"
)

// riderDocument is the stored shape of a rider. Field names match the
// collection layout used by the roster frontend.
type riderDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Position       string             `bson:"position"`
	NRIC           string             `bson:"nric"`
	Image          string             `bson:"image"`
	Status         string             `bson:"status"`
	Phone          string             `bson:"phone"`
	Vehicle        string             `bson:"vehicle"`
	License        string             `bson:"license"`
	Rating         float64            `bson:"rating"`
	RidesCompleted int                `bson:"ridesCompleted"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toDocument(r *rider.Rider) riderDocument {
	doc := riderDocument{
		Name:           r.Name,
		Email:          r.Email,
		Position:       r.Position,
		NRIC:           r.NRIC,
		Image:          r.Image,
		Status:         string(r.Status),
		Phone:          r.Phone,
		Vehicle:        string(r.Vehicle),
		License:        r.License,
		Rating:         r.Rating,
		RidesCompleted: r.RidesCompleted,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(r.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func (d riderDocument) toRider() *rider.Rider {
	return &rider.Rider{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		Position:       d.Position,
		NRIC:           d.NRIC,
		Image:          d.Image,
		Status:         rider.Status(d.Status),
		Phone:          d.Phone,
		Vehicle:        rider.Vehicle(d.Vehicle),
		License:        d.License,
		Rating:         d.Rating,
		RidesCompleted: d.RidesCompleted,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}
