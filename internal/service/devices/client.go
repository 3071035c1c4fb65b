package devices

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"HomeDesk/entity"
	"HomeDesk/internal/lib/sl"
)

// Host shapes a resident is allowed to point the bot at: local
// addresses, mDNS bridge names, and the common cloud-relay domains.
var allowedHosts = []*regexp.Regexp{
	regexp.MustCompile(`^homeassistant(\.local)?$`),
	regexp.MustCompile(`^localhost$`),
	regexp.MustCompile(`^192\.168\.\d{1,3}\.\d{1,3}$`),
	regexp.MustCompile(`^10\.\d{1,3}\.\d{1,3}\.\d{1,3}$`),
	regexp.MustCompile(`^172\.(1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3}$`),
	regexp.MustCompile(`^[a-z0-9-]+\.ui\.nabu\.casa$`),
	regexp.MustCompile(`^[a-z0-9-]+\.duckdns\.org$`),
}

// Client talks to a resident's home-automation bridge.
type Client struct {
	http *http.Client
	log  *slog.Logger
}

func NewClient(timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log.With(sl.Module("device-client")),
	}
}

// ValidURL checks a bridge URL against the allow-list of local/cloud
// address shapes.
func ValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, re := range allowedHosts {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}

// SanitizeToken strips the decoration people paste along with a
// long-lived access token.
func SanitizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.Trim(token, `"'`)
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.TrimSpace(token)
}

// Connect performs the connectivity check and, on success, fetches the
// device inventory summary.
func (c *Client) Connect(ctx context.Context, bridgeURL, token string) (*entity.DeviceInventory, error) {
	base := strings.TrimRight(strings.TrimSpace(bridgeURL), "/")

	if err := c.ping(ctx, base, token); err != nil {
		return nil, err
	}
	return c.inventory(ctx, base, token)
}

func (c *Client) ping(ctx context.Context, base, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("bridge rejected the access token (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) inventory(ctx context.Context, base, token string) (*entity.DeviceInventory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/states", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching inventory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory returned status %d", resp.StatusCode)
	}

	var states []struct {
		EntityId string `json:"entity_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("decoding inventory: %w", err)
	}

	inv := &entity.DeviceInventory{ByDomain: make(map[string]int)}
	for _, st := range states {
		domain, _, found := strings.Cut(st.EntityId, ".")
		if !found || domain == "" {
			continue
		}
		inv.ByDomain[domain]++
		inv.Total++
	}

	c.log.Debug("bridge inventory fetched", slog.Int("total", inv.Total))
	return inv, nil
}
