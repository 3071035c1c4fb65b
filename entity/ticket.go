package entity

import (
	"time"

	"github.com/google/uuid"
)

// Urgency levels for maintenance tickets.
const (
	UrgencyLow       = "low"
	UrgencyMedium    = "medium"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"
)

type MaintenanceTicket struct {
	UUID        string    `json:"uuid" bson:"uuid"`
	ResidentId  string    `json:"resident_id" bson:"resident_id"`
	Category    string    `json:"category" bson:"category" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required,min=5"`
	Urgency     string    `json:"urgency" bson:"urgency" validate:"oneof=low medium high emergency"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func NewMaintenanceTicket(residentId string) *MaintenanceTicket {
	return &MaintenanceTicket{
		UUID:       uuid.NewString(),
		ResidentId: residentId,
		Status:     TicketOpen,
		CreatedAt:  time.Now(),
	}
}

func (t *MaintenanceTicket) IsEmergency() bool {
	return t.Urgency == UrgencyEmergency
}
