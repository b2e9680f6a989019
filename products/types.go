package products

import (
	"context"
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a purchasable item referenced by payments. The payment workflow
// only ever reads products; mutation happens through the catalog endpoints.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // smallest currency unit
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the POST /api/products body
type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// UpdateProductRequest is the PUT /api/products/{id} body
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// ProductService defines the business logic interface
type ProductService interface {
	FindAllProducts(ctx context.Context) ([]*Product, error)
	FindProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Store is the narrow persistence interface for the product catalog.
// PostgresStore implements it directly; CachedStore wraps it with Redis.
type Store interface {
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, name, description string, price int64) (*Product, error)
	Update(ctx context.Context, id int64, name, description string, price int64) (*Product, error)
	Delete(ctx context.Context, id int64) error
}
