package service

import (
	"context"

	"github.com/google/uuid"

	"gidxpay/internal/model"
	"gidxpay/internal/repository"
)

// CustomerIdentityProvider resolves the provider-side customer identifier
// for a user, creating one on first use.
type CustomerIdentityProvider interface {
	GetOrCreateCustomerID(ctx context.Context, user *model.User) (string, error)
}

type customerIdentityProvider struct {
	userRepo repository.UserRepository
}

func NewCustomerIdentityProvider(userRepo repository.UserRepository) CustomerIdentityProvider {
	return &customerIdentityProvider{userRepo: userRepo}
}

func (p *customerIdentityProvider) GetOrCreateCustomerID(ctx context.Context, user *model.User) (string, error) {
	if user.HasMerchantCustomerID() {
		return *user.MerchantCustomerID, nil
	}
	id := uuid.NewString()
	user.MerchantCustomerID = &id
	if err := p.userRepo.Update(ctx, user); err != nil {
		return "", err
	}
	return id, nil
}
