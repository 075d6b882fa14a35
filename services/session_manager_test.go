package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"catalog-admin/config"
	"catalog-admin/models"
	"catalog-admin/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestManager(api *MockCatalogAPI) (*SessionManager, *repositories.MemoryDraftRepository, *memStaging) {
	drafts := repositories.NewMemoryDraftRepository()
	staging := newMemStaging()
	m := NewSessionManager(SessionManagerConfig{
		API:      api,
		Catalog:  NewCatalogService(api, repositories.NewMemoryCollectionCache(time.Minute), 10, nil, nil),
		Drafts:   drafts,
		Staging:  staging,
		Uploader: &fakeUploader{urls: []string{"https://cdn.test/1.png"}},
		RegionID: config.DefaultRegionID,
		MaxSize:  5 * mb,
		Policy:   config.MediaPolicyLocked,
	})
	return m, drafts, staging
}

func TestSessionManager_SessionsAreOwned(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return([]models.Tag{}, nil)
	m, _, _ := newTestManager(api)

	s := m.OpenProductDraft(context.Background(), "alice")

	got, err := m.Product("alice", s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Product("bob", s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.CloseProduct(context.Background(), "bob", s.ID), ErrSessionNotFound)
}

func TestSessionManager_TagFetchFailureStillOpens(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return(nil, errors.New("offline"))
	m, _, _ := newTestManager(api)

	s := m.OpenProductDraft(context.Background(), "alice")
	assert.Empty(t, s.SuggestTags("a"))
	assert.Equal(t, ModeCreate, s.Mode())
}

func TestSessionManager_EditSeedsDraftAndClosesOnSuccess(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return([]models.Tag{{ID: "t1", Value: "organic"}}, nil)
	api.On("GetProduct", mock.Anything, "prod_9").Return(&models.Product{
		ID:          "prod_9",
		Title:       "Carrot",
		Description: "<p>fresh</p>",
		Thumbnail:   "url_a",
		Images:      []models.Image{{URL: "url_b"}},
		Categories:  []models.Category{{ID: "cat_1"}},
		Tags:        []models.Tag{{ID: "t1", Value: "organic"}},
		Variants:    []models.ProductVariant{{Title: "1kg", Prices: []models.MoneyAmount{{Amount: 40}}}},
	}, nil)
	api.On("UpdateProduct", mock.Anything, "prod_9", mock.Anything).Return(&models.Product{ID: "prod_9", Title: "Carrot"}, nil).Once()
	m, drafts, _ := newTestManager(api)
	ctx := context.Background()

	s, err := m.EditProduct(ctx, "alice", "prod_9")
	require.NoError(t, err)

	view := s.View()
	assert.Equal(t, ModeEdit, view.Mode)
	assert.Equal(t, "cat_1", view.Draft.Category)
	assert.Equal(t, []string{"organic"}, view.Draft.Tags)
	assert.Equal(t, []models.Variant{{Name: "1kg", Price: "40"}}, view.Draft.Variants)

	_, err = s.UpdateFields(models.UpdateDraftRequest{Description: strPtr("<p>crunchy</p>")})
	require.NoError(t, err)
	records, err := drafts.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "prod_9", records[0].ProductID)

	product, mode, err := m.SubmitProduct(ctx, "alice", s.ID)
	require.NoError(t, err)
	assert.Equal(t, ModeEdit, mode)
	assert.Equal(t, "prod_9", product.ID)

	_, err = m.Product("alice", s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	records, err = drafts.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSessionManager_FailedUpdateKeepsSession(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return([]models.Tag{}, nil)
	api.On("GetProduct", mock.Anything, "prod_9").Return(&models.Product{
		ID:          "prod_9",
		Title:       "Carrot",
		Description: "<p>fresh</p>",
		Thumbnail:   "url_a",
		Images:      []models.Image{{URL: "url_b"}},
		Categories:  []models.Category{{ID: "cat_1"}},
		Variants:    []models.ProductVariant{{Title: "1kg", Prices: []models.MoneyAmount{{Amount: 40}}}},
	}, nil)
	api.On("UpdateProduct", mock.Anything, "prod_9", mock.Anything).Return(nil, errors.New("boom")).Once()
	m, _, _ := newTestManager(api)
	ctx := context.Background()

	s, err := m.EditProduct(ctx, "alice", "prod_9")
	require.NoError(t, err)

	_, _, err = m.SubmitProduct(ctx, "alice", s.ID)
	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, "Failed to update product. Please try again.", submitErr.Message)

	got, err := m.Product("alice", s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carrot", got.View().Draft.Name)
}

func TestSessionManager_CreateKeepsSessionOpen(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return([]models.Tag{}, nil)
	api.On("CreateProduct", mock.Anything, mock.Anything).Return(&models.Product{ID: "prod_1"}, nil).Once()
	m, _, _ := newTestManager(api)
	ctx := context.Background()

	s := m.OpenProductDraft(ctx, "alice")
	d := carrotDraft()
	_, err := s.UpdateFields(models.UpdateDraftRequest{Name: &d.Name, Description: &d.Description, Category: &d.Category})
	require.NoError(t, err)
	_, err = s.AddVariant()
	require.NoError(t, err)
	_, err = s.UpdateVariant(0, models.VariantRequest{Name: strPtr("1kg"), Price: strPtr("40")})
	require.NoError(t, err)
	_, err = s.StageImages([]StageInput{pngInput("a.png", mb)})
	require.NoError(t, err)
	_, err = s.Upload(ctx, SlotImages)
	require.NoError(t, err)
	_, err = s.StageThumbnail([]StageInput{pngInput("t.png", mb)})
	require.NoError(t, err)
	_, err = s.Upload(ctx, SlotThumbnail)
	require.NoError(t, err)

	_, mode, err := m.SubmitProduct(ctx, "alice", s.ID)
	require.NoError(t, err)
	assert.Equal(t, ModeCreate, mode)

	got, err := m.Product("alice", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NewDraftProduct(), got.View().Draft)

	records, err := m.Drafts(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSessionManager_ResumeFromSnapshot(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return([]models.Tag{}, nil)
	m, drafts, _ := newTestManager(api)
	ctx := context.Background()

	id := uuid.New()
	d := models.NewDraftProduct()
	d.Name = "Kale"
	require.NoError(t, drafts.Save(ctx, repositories.DraftRecord{SessionID: id, OwnerID: "alice", Draft: d}))

	s, err := m.ResumeProductDraft(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "Kale", s.View().Draft.Name)

	again, err := m.ResumeProductDraft(ctx, "alice", id)
	require.NoError(t, err)
	assert.Same(t, s, again)

	_, err = m.ResumeProductDraft(ctx, "bob", id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_PreviewServesOwnerOnly(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("ListTags", mock.Anything).Return([]models.Tag{}, nil)
	m, _, staging := newTestManager(api)
	ctx := context.Background()

	s := m.OpenProductDraft(ctx, "alice")
	view, err := s.StageImages([]StageInput{pngInput("a.png", mb)})
	require.NoError(t, err)
	previewID := view.Media.Images.Items[0].ID

	rc, contentType, err := m.Preview("alice", previewID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)

	_, _, err = m.Preview("bob", previewID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	require.NoError(t, m.CloseProduct(ctx, "alice", s.ID))
	_, _, err = m.Preview("alice", previewID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	assert.Equal(t, 0, staging.Len())
}

func TestSessionManager_CategoryEditClosesOnSuccess(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("GetCategory", mock.Anything, "cat_1").Return(&models.Category{ID: "cat_1", Name: "Fruit"}, nil)
	api.On("UpdateCategory", mock.Anything, "cat_1", mock.Anything).Return(&models.Category{ID: "cat_1", Name: "Fruits"}, nil).Once()
	m, _, _ := newTestManager(api)
	ctx := context.Background()

	s, err := m.EditCategory(ctx, "alice", "cat_1")
	require.NoError(t, err)
	_, err = s.UpdateFields(models.UpdateCategoryDraftRequest{Name: strPtr("Fruits")})
	require.NoError(t, err)

	category, mode, err := m.SubmitCategory(ctx, "alice", s.ID)
	require.NoError(t, err)
	assert.Equal(t, ModeEdit, mode)
	assert.Equal(t, "Fruits", category.Name)

	_, err = m.Category("alice", s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
