package roles

import (
	"time"

	"github.com/pulse-news/pulse/internal/authz"
)

// Role is a named permission grouping. The three canonical roles are
// seeded at deployment; admins may add custom roles with arbitrary
// capability subsets.
type Role struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	DisplayName  string             `json:"display_name"`
	Description  string             `json:"description"`
	Capabilities []authz.Capability `json:"capabilities"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// CapabilitySet converts the stored grant list for evaluation.
func (r Role) CapabilitySet() authz.CapabilitySet {
	return authz.NewCapabilitySet(r.Capabilities...)
}
