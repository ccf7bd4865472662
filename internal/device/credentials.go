package device

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Credentials holds the identity a registered device authenticates
// with. DeviceID and Token are filled by the registration flow; the
// UDIDs are generated locally and stay stable across runs.
type Credentials struct {
	DeviceID   string `json:"device_id"`
	InstallID  string `json:"install_id"`
	CDID       string `json:"cdid"`
	OpenUDID   string `json:"openudid"`
	ClientUDID string `json:"clientudid"`
	Token      string `json:"token"`
}

// NewGenerated returns credentials with fresh locally generated device
// identifiers. DeviceID and Token remain empty until registration.
func NewGenerated() *Credentials {
	return &Credentials{
		CDID:       uuid.NewString(),
		OpenUDID:   generateOpenUDID(),
		ClientUDID: uuid.NewString(),
	}
}

// IsComplete reports whether the credentials can open a session.
func (c *Credentials) IsComplete() bool {
	return c.DeviceID != "" && c.Token != ""
}

// Save writes the credentials to path as JSON, readable only by the
// owner.
func (c *Credentials) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load reads credentials from path.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// generateOpenUDID returns 16 random hex characters.
func generateOpenUDID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
