package entity

// Identity is the per-request resolution result of the incoming session
// credential. Resolution never fails hard: a missing, malformed, expired or
// unknown token yields Anonymous.
type Identity struct {
	User *User // nil when anonymous
}

// Anonymous is the zero identity used when no valid session is present.
var Anonymous = Identity{}

// Authenticated wraps a resolved user record.
func Authenticated(user *User) Identity {
	return Identity{User: user}
}

// IsAuthenticated reports whether the identity carries a user.
func (i Identity) IsAuthenticated() bool {
	return i.User != nil
}
