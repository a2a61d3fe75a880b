package domain

// Actor is the identity behind a request as reported by the auth layer.
type Actor struct {
	UserID int64
	Admin  bool
}

// Owns reports whether the actor may act on behalf of a passenger owned by userID.
func (a Actor) Owns(userID *int64) bool {
	if a.Admin {
		return true
	}
	return userID != nil && *userID == a.UserID
}
