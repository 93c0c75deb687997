// Package directory resolves user ids to display names and email addresses.
// The user directory itself is owned by the surrounding identity system;
// this package only consumes its lookup API.
package directory

import "context"

// User is a directory entry.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Directory looks up one user by id.
type Directory interface {
	ResolveUser(ctx context.Context, userID string) (*User, error)
}

// Static is a map-backed Directory for development and tests.
type Static struct {
	Users map[string]User
}

func (s *Static) ResolveUser(ctx context.Context, userID string) (*User, error) {
	if user, ok := s.Users[userID]; ok {
		return &user, nil
	}
	return nil, ErrUnknownUser
}
