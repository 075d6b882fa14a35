package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catalog-admin/config"
	"catalog-admin/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func carrotDraft() models.DraftProduct {
	d := models.NewDraftProduct()
	d.Name = "Carrot"
	d.Description = "<p>fresh</p>"
	d.Category = "cat_1"
	d.Thumbnail = "url_a"
	d.Images = []string{"url_b"}
	d.Variants = []models.Variant{{Name: "1kg", Price: "40"}}
	return d
}

func newTestSession(draft models.DraftProduct, tags []models.Tag) (*ProductSession, *fakeUploader, *memStaging) {
	staging := newMemStaging()
	uploader := &fakeUploader{urls: []string{"https://cdn.test/1.png", "https://cdn.test/2.png"}}
	s := NewProductSession(uuid.New(), ProductSessionConfig{
		Owner: "user_1",
		Draft: draft,
		Tags:  NewTagResolver(tags),
		Media: NewMediaStager(MediaStagerConfig{
			Owner:    "user_1",
			Staging:  staging,
			Uploader: uploader,
			MaxSize:  5 * mb,
			Policy:   config.MediaPolicyLocked,
		}),
		RegionID: config.DefaultRegionID,
	})
	return s, uploader, staging
}

func TestSubmit_CreatesCarrotWithOneCall(t *testing.T) {
	api := new(MockCatalogAPI)
	s, _, _ := newTestSession(carrotDraft(), nil)

	expected := models.ProductPayload{
		Title:       "Carrot",
		Description: "<p>fresh</p>",
		Categories:  []models.IDRef{{ID: "cat_1"}},
		Variants: []models.VariantPayload{{
			Title:  "1kg",
			Prices: []models.PricePayload{{Amount: 40, RegionID: config.DefaultRegionID}},
		}},
		Thumbnail: "url_a",
		Images:    []string{"url_b"},
		Tags:      []models.TagRef{},
		Status:    "published",
	}
	api.On("CreateProduct", mock.Anything, expected).Return(&models.Product{ID: "prod_1", Title: "Carrot"}, nil).Once()

	product, err := s.Submit(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, "prod_1", product.ID)

	api.AssertNumberOfCalls(t, "CreateProduct", 1)
	api.AssertExpectations(t)

	view := s.View()
	assert.Equal(t, models.NewDraftProduct(), view.Draft)
	assert.Empty(t, view.Error)
	assert.Equal(t, ModeCreate, view.Mode)
}

func TestSubmit_InvalidDraftMakesNoCall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *models.DraftProduct)
		msg    string
	}{
		{"missing name", func(d *models.DraftProduct) { d.Name = "" }, models.MsgRequiredFields},
		{"missing description", func(d *models.DraftProduct) { d.Description = "" }, models.MsgRequiredFields},
		{"missing category", func(d *models.DraftProduct) { d.Category = "" }, models.MsgRequiredFields},
		{"missing thumbnail", func(d *models.DraftProduct) { d.Thumbnail = "" }, models.MsgRequiredFields},
		{"no images", func(d *models.DraftProduct) { d.Images = []string{} }, models.MsgRequiredFields},
		{"no variants", func(d *models.DraftProduct) { d.Variants = []models.Variant{} }, models.MsgRequiredFields},
		{"non numeric price", func(d *models.DraftProduct) { d.Variants[0].Price = "forty" }, models.MsgInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockCatalogAPI)
			draft := carrotDraft()
			tt.mutate(&draft)
			s, _, _ := newTestSession(draft, nil)

			_, err := s.Submit(context.Background(), api)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, tt.msg, s.View().Error)

			api.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
			api.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_CreateFailureKeepsDraft(t *testing.T) {
	api := new(MockCatalogAPI)
	s, _, _ := newTestSession(carrotDraft(), nil)
	api.On("CreateProduct", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := s.Submit(context.Background(), api)

	var subErr *SubmitError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "Failed to add product. Please try again.", subErr.Message)

	view := s.View()
	assert.Equal(t, carrotDraft(), view.Draft)
	assert.False(t, view.Submitting)
	assert.Equal(t, "Failed to add product. Please try again.", view.Error)
}

func TestSubmit_UpdateAddressesProductWithoutStatus(t *testing.T) {
	api := new(MockCatalogAPI)
	draft := carrotDraft()
	draft.ID = "prod_9"
	s, _, _ := newTestSession(draft, nil)

	api.On("UpdateProduct", mock.Anything, "prod_9", mock.MatchedBy(func(p models.ProductPayload) bool {
		return p.Status == "" && p.Title == "Carrot"
	})).Return(&models.Product{ID: "prod_9"}, nil).Once()

	product, err := s.Submit(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, "prod_9", product.ID)
	assert.Equal(t, draft, s.View().Draft)
	api.AssertExpectations(t)
}

func TestSubmit_UpdateFailureKeepsDraft(t *testing.T) {
	api := new(MockCatalogAPI)
	draft := carrotDraft()
	draft.ID = "prod_9"
	s, _, _ := newTestSession(draft, nil)
	_, err := s.UpdateFields(models.UpdateDraftRequest{Name: strPtr("Purple carrot")})
	require.NoError(t, err)

	api.On("UpdateProduct", mock.Anything, "prod_9", mock.Anything).Return(nil, errors.New("bad gateway")).Once()

	_, err = s.Submit(context.Background(), api)
	var subErr *SubmitError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "Failed to update product. Please try again.", subErr.Message)

	view := s.View()
	assert.Equal(t, "Purple carrot", view.Draft.Name)
	assert.Equal(t, ModeEdit, view.Mode)
}

func TestSubmit_RejectsConcurrentSubmit(t *testing.T) {
	api := new(MockCatalogAPI)
	s, _, _ := newTestSession(carrotDraft(), nil)

	release := make(chan struct{})
	api.On("CreateProduct", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&models.Product{ID: "prod_1"}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Submit(context.Background(), api)
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return s.View().Submitting }, time.Second, 5*time.Millisecond)

	_, err := s.Submit(context.Background(), api)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	wg.Wait()
	api.AssertNumberOfCalls(t, "CreateProduct", 1)
}

func TestSubmit_TagsResolveToExistingIDs(t *testing.T) {
	api := new(MockCatalogAPI)
	s, _, _ := newTestSession(carrotDraft(), []models.Tag{{ID: "t1", Value: "organic"}})

	_, err := s.AddTag("Organic")
	require.NoError(t, err)
	_, err = s.AddTag("crunchy")
	require.NoError(t, err)

	api.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p models.ProductPayload) bool {
		return assert.ObjectsAreEqual([]models.TagRef{{ID: "t1", Value: "organic"}, {Value: "crunchy"}}, p.Tags)
	})).Return(&models.Product{ID: "prod_1"}, nil).Once()

	_, err = s.Submit(context.Background(), api)
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestSession_TagOperations(t *testing.T) {
	s, _, _ := newTestSession(models.NewDraftProduct(), []models.Tag{{ID: "t1", Value: "organic"}})

	assert.Equal(t, []models.Tag{{ID: "t1", Value: "organic"}}, s.SuggestTags("org"))

	view, err := s.SelectTag(models.Tag{ID: "t1", Value: "organic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"organic"}, view.Draft.Tags)

	view, err = s.AddTag("organic")
	assert.ErrorIs(t, err, ErrTagRejected)
	assert.Equal(t, []string{"organic"}, view.Draft.Tags)

	_, err = s.AddTag("local")
	require.NoError(t, err)
	view, err = s.RemoveTag("organic")
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, view.Draft.Tags)
}

func TestSession_VariantsKeepOrder(t *testing.T) {
	s, _, _ := newTestSession(models.NewDraftProduct(), nil)

	for i := 0; i < 3; i++ {
		_, err := s.AddVariant()
		require.NoError(t, err)
	}
	_, err := s.UpdateVariant(0, models.VariantRequest{Name: strPtr("small"), Price: strPtr("10")})
	require.NoError(t, err)
	_, err = s.UpdateVariant(1, models.VariantRequest{Name: strPtr("medium")})
	require.NoError(t, err)
	_, err = s.UpdateVariant(2, models.VariantRequest{Name: strPtr("large"), Price: strPtr("30")})
	require.NoError(t, err)

	view, err := s.RemoveVariant(1)
	require.NoError(t, err)
	assert.Equal(t, []models.Variant{{Name: "small", Price: "10"}, {Name: "large", Price: "30"}}, view.Draft.Variants)

	_, err = s.RemoveVariant(7)
	assert.ErrorIs(t, err, ErrVariantNotFound)
	_, err = s.UpdateVariant(-1, models.VariantRequest{})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestSession_UploadImagesReplacesInCreateMode(t *testing.T) {
	s, uploader, staging := newTestSession(models.NewDraftProduct(), nil)
	_, err := s.StageImages([]StageInput{pngInput("a.png", mb), pngInput("b.png", mb)})
	require.NoError(t, err)

	view, err := s.Upload(context.Background(), SlotImages)
	require.NoError(t, err)
	assert.Equal(t, uploader.urls, view.Draft.Images)
	assert.True(t, view.Media.Images.Uploaded)
	assert.Equal(t, 0, staging.Len())
}

func TestSession_UploadImagesAppendsInEditMode(t *testing.T) {
	draft := carrotDraft()
	draft.ID = "prod_9"
	s, uploader, _ := newTestSession(draft, nil)
	_, err := s.StageImages([]StageInput{pngInput("a.png", mb)})
	require.NoError(t, err)

	view, err := s.Upload(context.Background(), SlotImages)
	require.NoError(t, err)
	assert.Equal(t, append([]string{"url_b"}, uploader.urls...), view.Draft.Images)
}

func TestSession_UploadThumbnailUsesFirstURL(t *testing.T) {
	s, _, _ := newTestSession(models.NewDraftProduct(), nil)
	_, err := s.StageThumbnail([]StageInput{pngInput("t.png", mb)})
	require.NoError(t, err)

	view, err := s.Upload(context.Background(), SlotThumbnail)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/1.png", view.Draft.Thumbnail)
}

func TestSession_UploadFailureLeavesDraft(t *testing.T) {
	s, uploader, _ := newTestSession(models.NewDraftProduct(), nil)
	uploader.err = errors.New("timeout")
	_, err := s.StageImages([]StageInput{pngInput("a.png", mb)})
	require.NoError(t, err)

	view, err := s.Upload(context.Background(), SlotImages)
	require.Error(t, err)
	assert.Empty(t, view.Draft.Images)
	assert.Len(t, view.Media.Images.Items, 1)
	assert.Equal(t, "An error occurred while uploading images.", view.Error)
}

func TestSession_RemoveImageByURL(t *testing.T) {
	draft := carrotDraft()
	draft.Images = []string{"u1", "u2", "u3"}
	s, _, _ := newTestSession(draft, nil)

	view, err := s.RemoveImage("u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, view.Draft.Images)

	_, err = s.RemoveImage("nope")
	assert.ErrorIs(t, err, ErrStagedNotFound)
}

func TestSession_PersistsOnChange(t *testing.T) {
	var saved []ProductSessionView
	s := NewProductSession(uuid.New(), ProductSessionConfig{
		Owner: "user_1",
		Draft: models.NewDraftProduct(),
		Media: NewMediaStager(MediaStagerConfig{Owner: "user_1", Staging: newMemStaging()}),
		Persist: func(v ProductSessionView) {
			saved = append(saved, v)
		},
	})

	_, err := s.UpdateFields(models.UpdateDraftRequest{Name: strPtr("Kale")})
	require.NoError(t, err)
	_, err = s.UpdateFields(models.UpdateDraftRequest{})
	require.NoError(t, err)
	_, err = s.AddTag("")
	assert.ErrorIs(t, err, ErrTagRejected)

	require.Len(t, saved, 1)
	assert.Equal(t, "Kale", saved[0].Draft.Name)
}

func TestSession_ClosedRejectsCalls(t *testing.T) {
	api := new(MockCatalogAPI)
	s, _, staging := newTestSession(carrotDraft(), nil)
	_, err := s.StageImages([]StageInput{pngInput("a.png", mb)})
	require.NoError(t, err)

	s.close()

	assert.Equal(t, 0, staging.Len())
	_, err = s.AddVariant()
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Submit(context.Background(), api)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func strPtr(s string) *string { return &s }

func TestSession_UploadFinishingAfterCreateIsDiscarded(t *testing.T) {
	api := new(MockCatalogAPI)
	api.On("CreateProduct", mock.Anything, mock.Anything).Return(&models.Product{ID: "prod_1"}, nil).Once()
	s, uploader, _ := newTestSession(carrotDraft(), nil)
	uploader.block = make(chan struct{})

	_, err := s.StageImages([]StageInput{pngInput("a.png", mb)})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Upload(context.Background(), SlotImages)
		done <- err
	}()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.media.slots[SlotImages].uploading
	}, time.Second, 5*time.Millisecond)

	_, err = s.Submit(context.Background(), api)
	require.NoError(t, err)

	close(uploader.block)
	assert.ErrorIs(t, <-done, ErrUploadDiscarded)

	view := s.View()
	assert.Equal(t, models.NewDraftProduct(), view.Draft)
	assert.False(t, view.Media.Images.Uploaded)
	assert.False(t, view.Media.Images.Locked)
	assert.Empty(t, view.Error)

	_, err = s.StageImages([]StageInput{pngInput("b.png", mb)})
	assert.NoError(t, err)
}
