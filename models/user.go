package models

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User kako ga server vraća. Starije verzije API-ja umesto imenovane
// uloge vraćaju samo is_staff flag.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     *Role  `json:"role,omitempty"`
	IsStaff  *bool  `json:"is_staff,omitempty"`
}

// RoleName resolves the named role, mapping the legacy is_staff flag
// onto admin/member.
func (u User) RoleName() string {
	if u.Role != nil {
		return u.Role.Name
	}
	if u.IsStaff != nil {
		if *u.IsStaff {
			return RoleAdmin
		}
		return RoleMember
	}
	return ""
}

// UserInput su polja koja klijent sme da piše. Password se nikada ne
// čita nazad sa servera; prazan password znači "ostavi nepromenjeno".
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	RoleID   *int   `json:"role_id,omitempty"`
	IsStaff  *bool  `json:"is_staff,omitempty"`
}
