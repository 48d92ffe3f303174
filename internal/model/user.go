package model

// User is a member of the group. ID is the stable external identifier.
type User struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Is reports whether u and o are the same member.
func (u User) Is(o User) bool {
	return u.ID == o.ID
}
