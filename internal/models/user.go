package models

// Role identifies which data view a user operates under.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known role ids.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleParent, RoleAdmin:
		return true
	}
	return false
}

// DisplayName returns the human-facing label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	case RoleParent:
		return "Parent"
	case RoleAdmin:
		return "Administrator"
	}
	return "User"
}

// UserProfile is the server-issued identity record. It is immutable once
// fetched and replaced wholesale on re-login.
type UserProfile struct {
	ID        int64  `json:"id"`
	Role      Role   `json:"role"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}
