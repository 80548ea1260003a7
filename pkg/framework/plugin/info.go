package plugin

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"strings"
)

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// UID derives a stable 16-byte class ID from the string ID, laid out as a
// name-based (version 5) UUID so hosts that display it see a valid UUID.
func (i Info) UID() [16]byte {
	sum := sha1.Sum([]byte(i.ID))

	var uid [16]byte
	copy(uid[:], sum[:16])
	uid[6] = (uid[6] & 0x0f) | 0x50
	uid[8] = (uid[8] & 0x3f) | 0x80
	return uid
}

// UIDString formats UID in the usual 8-4-4-4-12 form.
func (i Info) UIDString() string {
	u := i.UID()
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// Validate checks the fields a host needs to list the plugin.
func (i Info) Validate() error {
	var errs []error
	if strings.TrimSpace(i.ID) == "" {
		errs = append(errs, errors.New("plugin id is empty"))
	}
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, errors.New("plugin name is empty"))
	}
	if i.Category == "" {
		errs = append(errs, fmt.Errorf("plugin %q has no category", i.ID))
	}
	return errors.Join(errs...)
}
