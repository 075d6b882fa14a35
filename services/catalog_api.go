package services

import (
	"context"

	"catalog-admin/models"
)

// CatalogAPI is the part of the remote catalog the services depend on.
// *clients.CatalogClient satisfies it.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, payload models.ProductPayload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, payload models.ProductPayload) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, payload models.CategoryPayload) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, payload models.CategoryPayload) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Publisher receives catalog change events. A nil Publisher is allowed.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

const (
	SubjectProductCreated  = "catalog.product.created"
	SubjectProductUpdated  = "catalog.product.updated"
	SubjectProductDeleted  = "catalog.product.deleted"
	SubjectCategoryCreated = "catalog.category.created"
	SubjectCategoryUpdated = "catalog.category.updated"
	SubjectCategoryDeleted = "catalog.category.deleted"
)
