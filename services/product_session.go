package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"catalog-admin/models"

	"github.com/google/uuid"
)

const (
	msgCreateProductFailed = "Failed to add product. Please try again."
	msgUpdateProductFailed = "Failed to update product. Please try again."

	productStatusPublished = "published"
)

type DraftMode string

const (
	ModeCreate DraftMode = "create"
	ModeEdit   DraftMode = "edit"
)

// ProductSessionView is what the editor renders.
type ProductSessionView struct {
	SessionID  string              `json:"session_id"`
	Mode       DraftMode           `json:"mode"`
	Draft      models.DraftProduct `json:"draft"`
	Media      MediaView           `json:"media"`
	Submitting bool                `json:"submitting"`
	Error      string              `json:"error,omitempty"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ProductSession is one user's in-progress product draft together with its
// tag resolver and staged media. All methods are safe for concurrent use.
type ProductSession struct {
	ID    uuid.UUID
	Owner string

	mu         sync.Mutex
	productID  string
	draft      models.DraftProduct
	tags       *TagResolver
	media      *MediaStager
	regionID   string
	submitting bool
	lastError  string
	closed     bool
	updatedAt  time.Time

	persist func(ProductSessionView)
}

type ProductSessionConfig struct {
	Owner    string
	Draft    models.DraftProduct
	Tags     *TagResolver
	Media    *MediaStager
	RegionID string
	Persist  func(ProductSessionView)
}

func NewProductSession(id uuid.UUID, cfg ProductSessionConfig) *ProductSession {
	if cfg.Tags == nil {
		cfg.Tags = NewTagResolver(nil)
	}
	draft := cfg.Draft.Clone()
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	return &ProductSession{
		ID:        id,
		Owner:     cfg.Owner,
		productID: draft.ID,
		draft:     draft,
		tags:      cfg.Tags,
		media:     cfg.Media,
		regionID:  cfg.RegionID,
		updatedAt: time.Now(),
		persist:   cfg.Persist,
	}
}

func (s *ProductSession) Mode() DraftMode {
	if s.productID == "" {
		return ModeCreate
	}
	return ModeEdit
}

func (s *ProductSession) View() ProductSessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *ProductSession) viewLocked() ProductSessionView {
	return ProductSessionView{
		SessionID:  s.ID.String(),
		Mode:       s.Mode(),
		Draft:      s.draft.Clone(),
		Media:      s.media.View(),
		Submitting: s.submitting,
		Error:      s.lastError,
		UpdatedAt:  s.updatedAt,
	}
}

// mutate runs fn under the lock and persists the draft when fn reports a change.
func (s *ProductSession) mutate(fn func() (bool, error)) (ProductSessionView, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ProductSessionView{}, ErrSessionNotFound
	}
	changed, err := fn()
	if changed {
		s.updatedAt = time.Now()
	}
	view := s.viewLocked()
	s.mu.Unlock()

	if changed && s.persist != nil {
		s.persist(view)
	}
	return view, err
}

func (s *ProductSession) UpdateFields(req models.UpdateDraftRequest) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		changed := false
		if req.Name != nil {
			s.draft.Name = *req.Name
			changed = true
		}
		if req.Description != nil {
			s.draft.Description = *req.Description
			changed = true
		}
		if req.Category != nil {
			s.draft.Category = *req.Category
			changed = true
		}
		return changed, nil
	})
}

func (s *ProductSession) SuggestTags(input string) []models.Tag {
	return s.tags.Suggest(input)
}

// AddTag confirms typed input. Blank or duplicate values leave the list as is
// and return ErrTagRejected.
func (s *ProductSession) AddTag(input string) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		tags, ok := s.tags.Add(s.draft.Tags, input)
		if !ok {
			return false, ErrTagRejected
		}
		s.draft.Tags = tags
		return true, nil
	})
}

func (s *ProductSession) SelectTag(tag models.Tag) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		tags, ok := s.tags.SelectSuggestion(s.draft.Tags, tag)
		if !ok {
			return false, ErrTagRejected
		}
		s.draft.Tags = tags
		return true, nil
	})
}

func (s *ProductSession) RemoveTag(value string) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		tags, ok := s.tags.Remove(s.draft.Tags, value)
		s.draft.Tags = tags
		return ok, nil
	})
}

func (s *ProductSession) AddVariant() (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		s.draft.Variants = append(s.draft.Variants, models.Variant{})
		return true, nil
	})
}

func (s *ProductSession) UpdateVariant(index int, req models.VariantRequest) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		if index < 0 || index >= len(s.draft.Variants) {
			return false, ErrVariantNotFound
		}
		if req.Name != nil {
			s.draft.Variants[index].Name = *req.Name
		}
		if req.Price != nil {
			s.draft.Variants[index].Price = *req.Price
		}
		return req.Name != nil || req.Price != nil, nil
	})
}

func (s *ProductSession) RemoveVariant(index int) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		if index < 0 || index >= len(s.draft.Variants) {
			return false, ErrVariantNotFound
		}
		variants := make([]models.Variant, 0, len(s.draft.Variants)-1)
		variants = append(variants, s.draft.Variants[:index]...)
		s.draft.Variants = append(variants, s.draft.Variants[index+1:]...)
		return true, nil
	})
}

// RemoveImage drops an uploaded image URL from the draft.
func (s *ProductSession) RemoveImage(url string) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		for i, img := range s.draft.Images {
			if img == url {
				images := make([]string, 0, len(s.draft.Images)-1)
				images = append(images, s.draft.Images[:i]...)
				s.draft.Images = append(images, s.draft.Images[i+1:]...)
				return true, nil
			}
		}
		return false, ErrStagedNotFound
	})
}

func (s *ProductSession) StageImages(files []StageInput) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		_, err := s.media.StageImages(files)
		if err != nil {
			s.lastError = err.Error()
			return false, err
		}
		s.lastError = ""
		return false, nil
	})
}

func (s *ProductSession) StageThumbnail(files []StageInput) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		_, err := s.media.StageThumbnail(files)
		if err != nil {
			s.lastError = err.Error()
			return false, err
		}
		s.lastError = ""
		return false, nil
	})
}

func (s *ProductSession) RemoveStaged(slot MediaSlot, index int) (ProductSessionView, error) {
	return s.mutate(func() (bool, error) {
		return false, s.media.Remove(slot, index)
	})
}

// Upload sends everything staged in slot as one batch and writes the returned
// URLs into the draft. The network call runs without holding the lock.
func (s *ProductSession) Upload(ctx context.Context, slot MediaSlot) (ProductSessionView, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ProductSessionView{}, ErrSessionNotFound
	}
	pending, err := s.media.beginUpload(slot)
	if err != nil {
		s.lastError = err.Error()
		view := s.viewLocked()
		s.mu.Unlock()
		return view, err
	}
	s.mu.Unlock()

	urls, sendErr := s.media.send(ctx, pending)
	if sendErr == nil && len(urls) == 0 {
		sendErr = errors.New("upload returned no urls")
	}

	return s.mutate(func() (bool, error) {
		if err := s.media.finishUpload(pending, sendErr); err != nil {
			if !errors.Is(err, ErrUploadDiscarded) {
				s.lastError = err.Error()
			}
			return false, err
		}
		s.lastError = ""
		switch slot {
		case SlotImages:
			if s.Mode() == ModeCreate {
				s.draft.Images = append([]string{}, urls...)
			} else {
				s.draft.Images = append(s.draft.Images, urls...)
			}
		case SlotThumbnail:
			s.draft.Thumbnail = urls[0]
		}
		return true, nil
	})
}

// Submit validates the draft and issues exactly one create or update call.
// A successful create resets the draft without persisting the empty result;
// any failure leaves it untouched.
func (s *ProductSession) Submit(ctx context.Context, api CatalogAPI) (*models.Product, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := s.draft.Validate(); err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		return nil, err
	}
	mode := s.Mode()
	payload, err := BuildProductPayload(s.draft, s.tags, s.regionID, mode == ModeCreate)
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	s.mu.Unlock()

	var product *models.Product
	if mode == ModeCreate {
		product, err = api.CreateProduct(ctx, payload)
	} else {
		product, err = api.UpdateProduct(ctx, s.productID, payload)
	}

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		msg := msgCreateProductFailed
		if mode == ModeEdit {
			msg = msgUpdateProductFailed
		}
		s.lastError = msg
		s.mu.Unlock()
		return nil, &SubmitError{Message: msg, Err: err}
	}
	s.lastError = ""
	if mode == ModeCreate && !s.closed {
		s.draft = models.NewDraftProduct()
		s.media.Reset()
		s.updatedAt = time.Now()
	}
	s.mu.Unlock()
	return product, nil
}

// close releases staged media. Further calls report ErrSessionNotFound.
func (s *ProductSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.media.Reset()
}

// BuildProductPayload translates a draft into the remote product shape. Every
// variant gets a single price in regionID.
func BuildProductPayload(d models.DraftProduct, tags *TagResolver, regionID string, create bool) (models.ProductPayload, error) {
	payload := models.ProductPayload{
		Title:       d.Name,
		Description: d.Description,
		Categories:  []models.IDRef{{ID: d.Category}},
		Variants:    make([]models.VariantPayload, 0, len(d.Variants)),
		Thumbnail:   d.Thumbnail,
		Images:      append([]string{}, d.Images...),
		Tags:        tags.Payload(d.Tags),
	}
	for i, v := range d.Variants {
		amount, err := v.Amount()
		if err != nil {
			return models.ProductPayload{}, &models.ValidationError{
				Message: models.MsgInvalidPrice,
				Fields:  []string{fmt.Sprintf("DraftProduct.Variants[%d].Price", i)},
			}
		}
		payload.Variants = append(payload.Variants, models.VariantPayload{
			Title:  v.Name,
			Prices: []models.PricePayload{{Amount: amount, RegionID: regionID}},
		})
	}
	if create {
		payload.Status = productStatusPublished
	}
	return payload, nil
}
