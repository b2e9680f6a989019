package payments

import (
	"context"

	"github.com/tgarrido/payments-api/products"
	"github.com/tgarrido/payments-api/users"
)

// Store is the narrow persistence interface the payment workflow depends on
type Store interface {
	Create(ctx context.Context, userID, productID, amount int64) (*Payment, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context) ([]*Payment, error)
	Update(ctx context.Context, id int64, productID, amount int64) (*Payment, error)
	SetAccepted(ctx context.Context, id int64, accepted bool) error
	Delete(ctx context.Context, id int64) error
}

// UserDirectory resolves user references. Lookups must return
// users.ErrUserNotFound for absent ids.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

// ProductCatalog resolves product references. Lookups must return
// products.ErrProductNotFound for absent ids.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (*products.Product, error)
}
