package users

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

type userKey struct {
	company int64
	email   string
}

// MemoryRepository keeps users in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byKey  map[userKey]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byKey: map[userKey]models.User{}}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	key := userKey{user.CompanyID, user.Email}
	if _, ok := r.byKey[key]; ok {
		return nil, fmt.Errorf("%w: user %s", common.ErrorAlreadyExists, user.Email)
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.byKey[key] = *user
	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, companyID int64, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byKey[userKey{companyID, strings.ToLower(email)}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
