package models

// User is a locally registered account. The password is kept only as an
// argon2id hash of the password and Salt.
type User struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Salt         string `json:"salt"`
}

// DisplayName returns the user's name, or "User" when none is set.
func (u *User) DisplayName() string {
	if u == nil || u.FullName == "" {
		return "User"
	}
	return u.FullName
}
