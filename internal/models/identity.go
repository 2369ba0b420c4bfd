package models

// Identity is the acting principal of a request. The zero value is the
// anonymous identity.
type Identity struct {
	UserID   uint
	Username string
	Admin    bool
}

// Anonymous is the identity of a request without a valid session.
var Anonymous = Identity{}

// IdentityFromUser builds the identity for an authenticated user.
func IdentityFromUser(u *User) Identity {
	if u == nil {
		return Anonymous
	}
	return Identity{UserID: u.ID, Username: u.Username, Admin: u.Admin}
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// IsAdmin reports whether the identity is an authenticated admin.
func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Admin
}
