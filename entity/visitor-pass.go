package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visitor types. Delivery and contractor visits are treated as
// single-entry by policy.
const (
	VisitorGuest      = "guest"
	VisitorDelivery   = "delivery"
	VisitorContractor = "contractor"
	VisitorService    = "service"
	VisitorOther      = "other"
)

// Pass statuses. "used" and "cancelled"/"revoked" are terminal.
// "expired" is computed from the validity window at read time and is
// never written back by the check-in path.
const (
	PassActive    = "active"
	PassUsed      = "used"
	PassExpired   = "expired"
	PassCancelled = "cancelled"
	PassRevoked   = "revoked"
)

// PassCodePrefix is the two-letter prefix every pass code starts with.
const PassCodePrefix = "VP"

type VisitorPass struct {
	UUID        string    `json:"uuid" bson:"uuid"`
	PassCode    string    `json:"pass_code" bson:"pass_code" validate:"required"`
	ResidentId  string    `json:"resident_id" bson:"resident_id"`
	VisitorName string    `json:"visitor_name" bson:"visitor_name" validate:"required,min=2"`
	VisitorType string    `json:"visitor_type" bson:"visitor_type" validate:"oneof=guest delivery contractor service other"`
	Phone       string    `json:"phone" bson:"phone" validate:"omitempty"`
	Purpose     string    `json:"purpose" bson:"purpose" validate:"omitempty"`
	ValidFrom   time.Time `json:"valid_from" bson:"valid_from"`
	ValidUntil  time.Time `json:"valid_until" bson:"valid_until"`
	SingleUse   bool      `json:"single_use" bson:"single_use"`
	UsedCount   int       `json:"used_count" bson:"used_count"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UsedAt      time.Time `json:"used_at" bson:"used_at"`
}

func NewVisitorPass(residentId, visitorName, visitorType string) *VisitorPass {
	return &VisitorPass{
		UUID:        uuid.NewString(),
		ResidentId:  residentId,
		VisitorName: visitorName,
		VisitorType: visitorType,
		Status:      PassActive,
		CreatedAt:   time.Now(),
	}
}

// NormalizeCode upper-cases a typed pass code so lookups are
// case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LooksLikeCode reports whether the text has the shape of a pass code.
func LooksLikeCode(code string) bool {
	code = NormalizeCode(code)
	return len(code) >= len(PassCodePrefix)+4 && strings.HasPrefix(code, PassCodePrefix)
}

// EffectiveStatus resolves the pass status at the given instant,
// overlaying time-based expiry on top of the stored status.
func (p *VisitorPass) EffectiveStatus(now time.Time) string {
	if p.Status == PassActive && now.After(p.ValidUntil) {
		return PassExpired
	}
	return p.Status
}
