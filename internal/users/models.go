package users

// User represents a stored user record
type User struct {
	ID   int64
	Name string
	Age  int
}

// UserInput is a validated, id-less user payload ready to be written.
// The validate tags carry the schema bounds checked by Validate.
type UserInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Age  int64  `json:"age" validate:"min=-2147483648,max=2147483647"`
}

// Apply copies the validated fields onto an existing record, keeping its ID.
func (in UserInput) Apply(u *User) {
	u.Name = in.Name
	u.Age = int(in.Age)
}

// ToUser builds a record that has not been assigned an ID yet.
func (in UserInput) ToUser() *User {
	u := &User{}
	in.Apply(u)
	return u
}
