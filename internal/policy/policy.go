// Package policy decides whether an identity may perform an action on the blog.
package policy

import "scaffold/internal/models"

// Action is an operation gated by the policy.
type Action string

const (
	ActionView          Action = "view"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionTogglePublish Action = "toggle_publish"
	ActionViewAdminList Action = "view_admin_list"
	ActionUploadAsset   Action = "upload_asset"
)

// Reason explains a Decision.
type Reason string

const (
	ReasonOK Reason = "ok"
	// ReasonLoginRequired: the identity is anonymous and must authenticate first.
	ReasonLoginRequired Reason = "login_required"
	// ReasonForbidden: the identity is known but lacks the admin capability.
	ReasonForbidden Reason = "forbidden"
	// ReasonNotFound: the resource must look absent to this identity.
	ReasonNotFound Reason = "not_found"
)

// Decision is the outcome of a guard. Denial is a normal value, not an error.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true, Reason: ReasonOK}

// Authorize evaluates action for identity. post is only consulted for
// ActionView and may be nil for every other action.
func Authorize(identity models.Identity, action Action, post *models.BlogPost) Decision {
	if action == ActionView {
		if post != nil && post.Published {
			return allow
		}
		if identity.IsAdmin() {
			return allow
		}
		return Decision{Reason: ReasonNotFound}
	}

	return RequireAdmin(identity)
}

// Can is the boolean form of Authorize.
func Can(identity models.Identity, action Action, post *models.BlogPost) bool {
	return Authorize(identity, action, post).Allowed
}

// RequireLogin passes any authenticated identity.
func RequireLogin(identity models.Identity) Decision {
	if !identity.Authenticated() {
		return Decision{Reason: ReasonLoginRequired}
	}
	return allow
}

// RequireAdmin passes authenticated admins; anonymous identities are sent to
// login first, authenticated non-admins are forbidden.
func RequireAdmin(identity models.Identity) Decision {
	if d := RequireLogin(identity); !d.Allowed {
		return d
	}
	if !identity.Admin {
		return Decision{Reason: ReasonForbidden}
	}
	return allow
}

// Err converts a denial into the matching AppError; it returns nil when the
// decision allows the action.
func (d Decision) Err(resource string, id interface{}) error {
	switch d.Reason {
	case ReasonOK:
		return nil
	case ReasonNotFound:
		return models.NewNotFoundError(resource, id)
	case ReasonLoginRequired:
		return models.NewUnauthorizedError("Login required")
	default:
		return models.NewForbiddenError("Admin access required")
	}
}
