package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceBridge stores a resident's home-automation bridge connection.
type DeviceBridge struct {
	UUID       string    `json:"uuid" bson:"uuid"`
	ResidentId string    `json:"resident_id" bson:"resident_id"`
	URL        string    `json:"url" bson:"url" validate:"required,url"`
	Token      string    `json:"token" bson:"token" validate:"required"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func NewDeviceBridge(residentId, url, token string) *DeviceBridge {
	return &DeviceBridge{
		UUID:       uuid.NewString(),
		ResidentId: residentId,
		URL:        url,
		Token:      token,
		CreatedAt:  time.Now(),
	}
}

// DeviceInventory is the summary fetched from a bridge after a
// successful connectivity check.
type DeviceInventory struct {
	Total    int            `json:"total"`
	ByDomain map[string]int `json:"by_domain"`
}

// Summary renders the inventory as a short chat message.
func (i *DeviceInventory) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d devices:\n", i.Total))

	domains := make([]string, 0, len(i.ByDomain))
	for d := range i.ByDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, d := range domains {
		sb.WriteString(fmt.Sprintf("• %s: %d\n", d, i.ByDomain[d]))
	}
	return sb.String()
}
