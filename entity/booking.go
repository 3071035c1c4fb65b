package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type AmenityBooking struct {
	UUID       string    `json:"uuid" bson:"uuid"`
	ResidentId string    `json:"resident_id" bson:"resident_id"`
	AmenityId  string    `json:"amenity_id" bson:"amenity_id" validate:"required"`
	Amenity    string    `json:"amenity" bson:"amenity"`
	Date       string    `json:"date" bson:"date" validate:"required"` // YYYY-MM-DD in property-local time
	SlotId     string    `json:"slot_id" bson:"slot_id" validate:"required"`
	SlotLabel  string    `json:"slot_label" bson:"slot_label"`
	Status     string    `json:"status" bson:"status"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func NewAmenityBooking(residentId string) *AmenityBooking {
	return &AmenityBooking{
		UUID:       uuid.NewString(),
		ResidentId: residentId,
		Status:     BookingConfirmed,
		CreatedAt:  time.Now(),
	}
}
