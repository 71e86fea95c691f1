package service

// Role claims issued by the external identity provider.  The core never
// manages credentials; it only consumes the verified claims.
const (
    RolePassenger = "PASSENGER"
    RoleDriver    = "DRIVER"
    RoleAdmin     = "ADMIN"
)

// Identity is the authenticated caller as seen by every authorization
// check: the subject id plus the role claim from the bearer token.
type Identity struct {
    UserID uint64
    Role   string
}

// Admin reports whether the identity carries the admin role.
func (id Identity) Admin() bool { return id.Role == RoleAdmin }
