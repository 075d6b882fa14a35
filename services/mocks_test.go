package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"catalog-admin/clients"
	"catalog-admin/models"

	"github.com/stretchr/testify/mock"
)

// MockCatalogAPI is a mock implementation of CatalogAPI
type MockCatalogAPI struct {
	mock.Mock
}

func (m *MockCatalogAPI) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogAPI) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogAPI) CreateProduct(ctx context.Context, payload models.ProductPayload) (*models.Product, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogAPI) UpdateProduct(ctx context.Context, id string, payload models.ProductPayload) (*models.Product, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogAPI) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogAPI) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCatalogAPI) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogAPI) CreateCategory(ctx context.Context, payload models.CategoryPayload) (*models.Category, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogAPI) UpdateCategory(ctx context.Context, id string, payload models.CategoryPayload) (*models.Category, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogAPI) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogAPI) ListTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

type fakeUploader struct {
	mu      sync.Mutex
	urls    []string
	err     error
	batches [][]string
	block   chan struct{}
}

func (u *fakeUploader) Upload(_ context.Context, files []clients.UploadFile) ([]string, error) {
	if u.block != nil {
		<-u.block
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := io.ReadAll(f.Body); err != nil {
			return nil, err
		}
		names = append(names, f.Filename)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.batches = append(u.batches, names)
	if u.err != nil {
		return nil, u.err
	}
	return u.urls, nil
}

type memStaging struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  bool
}

func newMemStaging() *memStaging {
	return &memStaging{files: make(map[string][]byte)}
}

func (s *memStaging) Save(id, filename string, r io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	path := id + filepath.Ext(filename)
	s.mu.Lock()
	s.files[path] = data
	s.mu.Unlock()
	return path, nil
}

func (s *memStaging) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStaging) Delete(path string) error {
	s.mu.Lock()
	delete(s.files, path)
	s.mu.Unlock()
	return nil
}

func (s *memStaging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func pngInput(name string, size int64) StageInput {
	return StageInput{Filename: name, ContentType: "image/png", Size: size, Body: bytes.NewReader([]byte("png-bytes"))}
}
