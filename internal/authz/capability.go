package authz

import "sort"

// Capability is a named permission grant.
type Capability string

// Capabilities known to the platform.
const (
	CapArticleView      Capability = "article:view"
	CapArticleCreate    Capability = "article:create"
	CapArticleUpdate    Capability = "article:update"
	CapArticleUpdateOwn Capability = "article:update:own"
	CapArticleDelete    Capability = "article:delete"
	CapArticleDeleteOwn Capability = "article:delete:own"

	CapCommentView   Capability = "comment:view"
	CapCommentCreate Capability = "comment:create"
	CapCommentManage Capability = "comment:manage"

	CapContentModerate Capability = "content:moderate"
	CapUserManage      Capability = "user:manage"
	CapTaxonomyManage  Capability = "taxonomy:manage"
)

// Canonical role names. Custom roles may exist alongside them.
const (
	RoleReader = "reader"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// CapabilitySet holds the capabilities granted to an actor.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether the capability is granted.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the capabilities in sorted order.
func (s CapabilitySet) List() []Capability {
	caps := make([]Capability, 0, len(s))
	for c := range s {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// DefaultGrants returns the documented grant set for a canonical role.
// Unknown role names get no grants; custom roles carry their own set.
func DefaultGrants(role string) []Capability {
	switch role {
	case RoleReader:
		return []Capability{CapCommentCreate, CapCommentView}
	case RoleEditor:
		return append(DefaultGrants(RoleReader),
			CapArticleCreate,
			CapArticleUpdateOwn,
			CapArticleDeleteOwn,
			CapArticleView,
		)
	case RoleAdmin:
		return AllCapabilities()
	default:
		return nil
	}
}

// AllCapabilities lists every capability the platform defines.
func AllCapabilities() []Capability {
	return []Capability{
		CapArticleView,
		CapArticleCreate,
		CapArticleUpdate,
		CapArticleUpdateOwn,
		CapArticleDelete,
		CapArticleDeleteOwn,
		CapCommentView,
		CapCommentCreate,
		CapCommentManage,
		CapContentModerate,
		CapUserManage,
		CapTaxonomyManage,
	}
}
