package model

// User is managed outside this service; study groups only reference it.
// Groups is derived from memberships and is not authoritative.
type User struct {
	ID        int
	Email     string
	FirstName string
	LastName  string
	Groups    []int
}

// Clone returns a copy that does not share the Groups slice.
func (u User) Clone() User {
	if u.Groups != nil {
		u.Groups = append([]int(nil), u.Groups...)
	}
	return u
}

// UserResponse is the wire form of a user. Groups are ids only.
type UserResponse struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Groups    []int  `json:"groups"`
}

// ToResponse converts a user into its wire form.
func (u User) ToResponse() UserResponse {
	groups := u.Groups
	if groups == nil {
		groups = []int{}
	}
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Groups:    groups,
	}
}
