package authz

// Action names an operation on a resource.
type Action string

const (
	ActionView     Action = "view"
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionPublish  Action = "publish"
	ActionModerate Action = "moderate"
	ActionRate     Action = "rate"
)

// Safe reports whether the action is a read.
func (a Action) Safe() bool {
	return a == ActionView || a == ActionList
}

// Reason codes attached to evaluator decisions.
type Reason string

const (
	ReasonSuperuserOverride Reason = "superuser_override"
	ReasonPublicRead        Reason = "public_read"
	ReasonAnonymousWrite    Reason = "anonymous_write"
	ReasonMissingCapability Reason = "missing_capability"
	ReasonCapabilityGranted Reason = "capability_granted"
	ReasonOwner             Reason = "owner"
	ReasonNotOwner          Reason = "not_owner"
	ReasonModeratorOverride Reason = "moderator_override"
	ReasonAuthenticated     Reason = "authenticated"
	ReasonUnsupportedAction Reason = "unsupported_action"
	ReasonDefaultDeny       Reason = "default_deny"
)

// Decision is the evaluator's verdict for one (actor, action, resource)
// triple.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow(r Reason) Decision { return Decision{Allowed: true, Reason: r} }
func deny(r Reason) Decision  { return Decision{Allowed: false, Reason: r} }

// requirement describes what an action on a kind demands of the actor.
type requirement struct {
	cap      Capability // full-scope capability, if any
	ownCap   Capability // "own" variant, satisfied only for owned resources
	authOnly bool       // any authenticated actor passes the capability check
	moderate bool       // content:moderate overrides capability and ownership
}

// requirements is the explicit capability table keyed by resource kind.
// Kinds or actions missing from the table are unsupported and denied.
var requirements = map[Kind]map[Action]requirement{
	KindArticle: {
		ActionView:    {cap: CapArticleView, moderate: true},
		ActionList:    {cap: CapArticleView, moderate: true},
		ActionCreate:  {cap: CapArticleCreate},
		ActionUpdate:  {cap: CapArticleUpdate, ownCap: CapArticleUpdateOwn, moderate: true},
		ActionPublish: {cap: CapArticleUpdate, ownCap: CapArticleUpdateOwn, moderate: true},
		ActionDelete:  {cap: CapArticleDelete, ownCap: CapArticleDeleteOwn, moderate: true},
		ActionRate:    {authOnly: true},
	},
	KindComment: {
		ActionView:     {cap: CapCommentView, moderate: true},
		ActionList:     {cap: CapCommentView, moderate: true},
		ActionCreate:   {authOnly: true},
		ActionUpdate:   {cap: CapCommentManage, ownCap: CapCommentCreate, moderate: true},
		ActionDelete:   {cap: CapCommentManage, ownCap: CapCommentCreate, moderate: true},
		ActionModerate: {cap: CapContentModerate},
	},
	KindReaction: {
		ActionView:   {authOnly: true},
		ActionList:   {authOnly: true},
		ActionCreate: {authOnly: true},
		ActionUpdate: {authOnly: true},
		ActionDelete: {authOnly: true},
	},
	KindBookmark: {
		ActionView:   {authOnly: true},
		ActionList:   {authOnly: true},
		ActionCreate: {authOnly: true},
		ActionDelete: {authOnly: true},
	},
	KindCategory: {
		ActionView:   {authOnly: true},
		ActionList:   {authOnly: true},
		ActionCreate: {cap: CapTaxonomyManage},
		ActionUpdate: {cap: CapTaxonomyManage},
		ActionDelete: {cap: CapTaxonomyManage},
	},
	KindTag: {
		ActionView:   {authOnly: true},
		ActionList:   {authOnly: true},
		ActionCreate: {cap: CapTaxonomyManage},
		ActionUpdate: {cap: CapTaxonomyManage},
		ActionDelete: {cap: CapTaxonomyManage},
	},
}

// Can evaluates whether the actor may perform the action on the resource.
// Evaluation is first match wins, in the documented order. The evaluator
// is a pure predicate: it performs no I/O and records nothing.
func Can(actor Actor, action Action, res Resource) Decision {
	if actor.Privileged() {
		return allow(ReasonSuperuserOverride)
	}
	if action.Safe() && res.Public() {
		return allow(ReasonPublicRead)
	}
	if !actor.Authenticated {
		if !action.Safe() {
			return deny(ReasonAnonymousWrite)
		}
		// Non-public read without an identity.
		return deny(ReasonMissingCapability)
	}

	kindReqs, ok := requirements[res.Kind]
	if !ok {
		return deny(ReasonUnsupportedAction)
	}
	req, ok := kindReqs[action]
	if !ok {
		return deny(ReasonUnsupportedAction)
	}

	if req.authOnly {
		// Rating and comment creation only require authentication, but
		// owner-scoped kinds still guard mutation of existing records.
		if ownerScoped(res.Kind) && !action.Safe() && action != ActionCreate && !res.OwnedBy(actor) {
			return deny(ReasonNotOwner)
		}
		return allow(ReasonAuthenticated)
	}

	if req.moderate && actor.Moderator() {
		return allow(ReasonModeratorOverride)
	}
	if req.cap != "" && actor.Has(req.cap) {
		return allow(ReasonCapabilityGranted)
	}
	if req.ownCap != "" && actor.Has(req.ownCap) {
		if res.OwnedBy(actor) {
			return allow(ReasonOwner)
		}
		return deny(ReasonNotOwner)
	}
	if req.cap != "" || req.ownCap != "" {
		return deny(ReasonMissingCapability)
	}
	return deny(ReasonDefaultDeny)
}

// Allowed is a convenience wrapper around Can.
func Allowed(actor Actor, action Action, res Resource) bool {
	return Can(actor, action, res).Allowed
}

func ownerScoped(k Kind) bool {
	return k == KindReaction || k == KindBookmark
}
