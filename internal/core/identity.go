package core

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jobportal/aggregator/internal/store"
)

// Well-known identity that owns every aggregated posting.
const (
	SystemUserEmail       = "system@jobportal.com"
	systemUserName        = "Job Portal System"
	systemUserRole        = "employer"
	systemCompanyName     = "Job Portal"
	systemCompanyDescText = "Aggregated job listings"
)

// IdentityStore is the slice of the store the resolver needs.
type IdentityStore interface {
	UpsertSystemUser(ctx context.Context, u store.User) (primitive.ObjectID, error)
}

// IdentityResolver returns the singleton aggregator owner, creating it on
// first use. The upsert keys on the unique email index, so concurrent
// resolvers end up with the same document.
type IdentityResolver struct {
	store IdentityStore
}

func NewIdentityResolver(s IdentityStore) *IdentityResolver {
	return &IdentityResolver{store: s}
}

func (r *IdentityResolver) Resolve(ctx context.Context) (primitive.ObjectID, error) {
	id, err := r.store.UpsertSystemUser(ctx, store.User{
		Name:               systemUserName,
		Email:              SystemUserEmail,
		Role:               systemUserRole,
		CompanyName:        systemCompanyName,
		CompanyDescription: systemCompanyDescText,
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("resolve system identity: %w", err)
	}
	return id, nil
}
