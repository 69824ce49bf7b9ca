package common

// Well-known keys of the persistence port. Contact collections live under
// "<namespace>_<userID>", see services.ContactService.
const (
	UsersKey         = "users"
	TokenKey         = "auth-token"
	SigningKeyKey    = "session-signing-key"
	DefaultNamespace = "dragon-contacts"
)
