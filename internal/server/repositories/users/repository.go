package users

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

// Repository stores the users allowed to sign in. Emails are compared
// case-insensitively within a company.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, companyID int64, email string) (*models.User, error)
}
