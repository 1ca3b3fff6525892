package users

// Representation is the wire form of a user
type Representation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Serialize converts a stored user into its wire representation
func Serialize(u *User) Representation {
	return Representation{
		ID:   u.ID,
		Name: u.Name,
		Age:  u.Age,
	}
}

// SerializeMany converts users preserving order. It never returns nil, so an
// empty store encodes as [] rather than null.
func SerializeMany(users []*User) []Representation {
	out := make([]Representation, 0, len(users))
	for _, u := range users {
		out = append(out, Serialize(u))
	}
	return out
}
