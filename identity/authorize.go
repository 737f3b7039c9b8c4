package identity

import (
	"fmt"

	"github.com/jrsteele09/impact-portal/users"
)

// Authorize is the role check used by every handler. A nil identity is
// unauthenticated; an identity whose role is not in allowed is forbidden.
func Authorize(id *Identity, allowed ...users.RoleType) error {
	if id == nil || id.Subject == "" {
		return ErrInvalidToken
	}
	for _, role := range allowed {
		if id.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q", ErrForbidden, id.Role)
}
