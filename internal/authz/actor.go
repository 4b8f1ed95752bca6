package authz

// Actor describes the identity performing a request. Capabilities are
// derived at evaluation time from the role plus override flags, never
// stored on the user record.
type Actor struct {
	ID            int64
	Username      string
	Role          string
	Caps          CapabilitySet
	Staff         bool
	Superuser     bool
	Authenticated bool
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// Has reports whether the actor's role grants the capability.
// Override flags are handled by the evaluator, not here.
func (a Actor) Has(c Capability) bool {
	return a.Caps.Has(c)
}

// Privileged reports whether the actor bypasses role checks entirely.
func (a Actor) Privileged() bool {
	return a.Authenticated && (a.Staff || a.Superuser)
}

// Moderator reports whether the actor may act on content regardless of
// ownership.
func (a Actor) Moderator() bool {
	return a.Privileged() || (a.Authenticated && a.Has(CapContentModerate))
}
