package services

import (
	"context"

	"catalog-admin/models"
	"catalog-admin/repositories"

	"github.com/sirupsen/logrus"
)

const (
	productsCacheKey   = "products"
	categoriesCacheKey = "categories"
)

// CatalogService serves the product and category lists and records the
// results of edits against them.
type CatalogService struct {
	api        CatalogAPI
	products   *ListView[models.Product]
	categories *ListView[models.Category]
	events     Publisher
	log        logrus.FieldLogger
}

func NewCatalogService(api CatalogAPI, cache repositories.CollectionCache, pageSize int, events Publisher, log logrus.FieldLogger) *CatalogService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogService{
		api: api,
		products: NewListView(ListViewConfig[models.Product]{
			Key:      productsCacheKey,
			Cache:    cache,
			Fetch:    api.ListProducts,
			Remove:   api.DeleteProduct,
			PageSize: pageSize,
			Logger:   log,
		}),
		categories: NewListView(ListViewConfig[models.Category]{
			Key:      categoriesCacheKey,
			Cache:    cache,
			Fetch:    api.ListCategories,
			Remove:   api.DeleteCategory,
			PageSize: pageSize,
			Logger:   log,
		}),
		events: events,
		log:    log,
	}
}

func (s *CatalogService) Products(ctx context.Context, page int) (Page[models.Product], error) {
	return s.products.Page(ctx, page)
}

func (s *CatalogService) RefreshProducts(ctx context.Context) error {
	return s.products.Refresh(ctx)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, SubjectProductDeleted, map[string]string{"id": id})
	return nil
}

// ApplyProduct records a submit result in the product list.
func (s *CatalogService) ApplyProduct(ctx context.Context, p models.Product, created bool) {
	s.products.Apply(ctx, p)
	subject := SubjectProductUpdated
	if created {
		subject = SubjectProductCreated
	}
	s.publish(ctx, subject, p)
}

func (s *CatalogService) Categories(ctx context.Context, page int) (Page[models.Category], error) {
	return s.categories.Page(ctx, page)
}

// AllCategories feeds the category picker of the product editor.
func (s *CatalogService) AllCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.All(ctx)
}

func (s *CatalogService) RefreshCategories(ctx context.Context) error {
	return s.categories.Refresh(ctx)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, SubjectCategoryDeleted, map[string]string{"id": id})
	return nil
}

func (s *CatalogService) ApplyCategory(ctx context.Context, c models.Category, created bool) {
	s.categories.Apply(ctx, c)
	subject := SubjectCategoryUpdated
	if created {
		subject = SubjectCategoryCreated
	}
	s.publish(ctx, subject, c)
}

func (s *CatalogService) Tags(ctx context.Context) ([]models.Tag, error) {
	return s.api.ListTags(ctx)
}

func (s *CatalogService) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.log.WithError(err).WithField("subject", subject).Warn("failed to publish catalog event")
	}
}
