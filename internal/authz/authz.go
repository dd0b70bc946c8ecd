// Package authz holds the authorization rules applied by every protected
// handler. The predicates are pure and run before any mutating store call.
package authz

import (
	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
)

// Session is the identity carried by a verified session token.
type Session struct {
	UserID   string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// IsAdmin reports whether the session holds the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnerID() string
}

// RequireAdmin fails with ErrAdminRequired unless the session is an ADMIN.
func RequireAdmin(s *Session) error {
	if !s.IsAdmin() {
		return apperrors.ErrAdminRequired
	}
	return nil
}

// CanMutateOwnedResource reports whether s may modify or delete r: the
// session user owns it or is an ADMIN.
func CanMutateOwnedResource(r Owned, s *Session) bool {
	if s == nil || r == nil {
		return false
	}
	return r.OwnerID() == s.UserID || s.IsAdmin()
}

// PreventSelfDeletion refuses deleting the session's own account, whatever
// the role.
func PreventSelfDeletion(targetID string, s *Session) error {
	if s == nil || targetID == s.UserID {
		return apperrors.ErrCannotDeleteUser
	}
	return nil
}

// CanDeleteUser combines the admin and self-deletion rules for user removal.
func CanDeleteUser(targetID string, s *Session) error {
	if err := PreventSelfDeletion(targetID, s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return apperrors.ErrCannotDeleteUser
	}
	return nil
}
