// Package users stores account identities: email, display name and the
// encoded credential hash.
package users

import (
	"context"

	"github.com/dmitrijs2005/chatserver/internal/server/models"
)

// Repository persists users. Create returns common.ErrDuplicateEmail when
// the email is taken; FindByEmail returns common.ErrorNotFound when absent.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
