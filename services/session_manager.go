package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"catalog-admin/libs"
	"catalog-admin/models"
	"catalog-admin/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const persistTimeout = 5 * time.Second

type SessionManagerConfig struct {
	API      CatalogAPI
	Catalog  *CatalogService
	Drafts   repositories.DraftRepository
	Staging  Staging
	Uploader libs.Uploader
	Previews *PreviewRegistry
	RegionID string
	MaxSize  int64
	Policy   string
	Logger   logrus.FieldLogger
}

// SessionManager owns every open draft session, keyed by session id and
// scoped to the user who opened it.
type SessionManager struct {
	api      CatalogAPI
	catalog  *CatalogService
	drafts   repositories.DraftRepository
	staging  Staging
	uploader libs.Uploader
	previews *PreviewRegistry
	regionID string
	maxSize  int64
	policy   string
	log      logrus.FieldLogger

	mu         sync.RWMutex
	products   map[uuid.UUID]*ProductSession
	categories map[uuid.UUID]*CategorySession
}

func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Drafts == nil {
		cfg.Drafts = repositories.NewMemoryDraftRepository()
	}
	if cfg.Previews == nil {
		cfg.Previews = NewPreviewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &SessionManager{
		api:        cfg.API,
		catalog:    cfg.Catalog,
		drafts:     cfg.Drafts,
		staging:    cfg.Staging,
		uploader:   cfg.Uploader,
		previews:   cfg.Previews,
		regionID:   cfg.RegionID,
		maxSize:    cfg.MaxSize,
		policy:     cfg.Policy,
		log:        cfg.Logger,
		products:   make(map[uuid.UUID]*ProductSession),
		categories: make(map[uuid.UUID]*CategorySession),
	}
}

// OpenProductDraft starts an empty create draft.
func (m *SessionManager) OpenProductDraft(ctx context.Context, owner string) *ProductSession {
	return m.openProduct(ctx, uuid.New(), owner, models.NewDraftProduct())
}

// EditProduct starts an edit draft seeded from the remote product.
func (m *SessionManager) EditProduct(ctx context.Context, owner, productID string) (*ProductSession, error) {
	p, err := m.api.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return m.openProduct(ctx, uuid.New(), owner, models.DraftFromProduct(*p)), nil
}

// ResumeProductDraft reopens a persisted draft. Staged files are not part of
// the snapshot and start empty.
func (m *SessionManager) ResumeProductDraft(ctx context.Context, owner string, sessionID uuid.UUID) (*ProductSession, error) {
	if s, err := m.Product(owner, sessionID); err == nil {
		return s, nil
	}

	records, err := m.drafts.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	for _, rec := range records {
		if rec.SessionID == sessionID {
			draft := rec.Draft
			draft.ID = rec.ProductID
			return m.openProduct(ctx, sessionID, owner, draft), nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *SessionManager) openProduct(ctx context.Context, id uuid.UUID, owner string, draft models.DraftProduct) *ProductSession {
	tags, err := m.api.ListTags(ctx)
	if err != nil {
		m.log.WithError(err).Warn("failed to fetch tags, suggestions disabled")
	}

	s := NewProductSession(id, ProductSessionConfig{
		Owner: owner,
		Draft: draft,
		Tags:  NewTagResolver(tags),
		Media: NewMediaStager(MediaStagerConfig{
			Owner:    owner,
			Staging:  m.staging,
			Uploader: m.uploader,
			Previews: m.previews,
			MaxSize:  m.maxSize,
			Policy:   m.policy,
		}),
		RegionID: m.regionID,
		Persist:  m.persistFunc(id, owner, draft.ID),
	})

	m.mu.Lock()
	m.products[id] = s
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"session_id": id, "owner": owner, "mode": s.Mode()}).Debug("product draft opened")
	return s
}

func (m *SessionManager) persistFunc(id uuid.UUID, owner, productID string) func(ProductSessionView) {
	return func(view ProductSessionView) {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		rec := repositories.DraftRecord{
			SessionID: id,
			OwnerID:   owner,
			ProductID: productID,
			Draft:     view.Draft,
			UpdatedAt: view.UpdatedAt,
		}
		if err := m.drafts.Save(ctx, rec); err != nil {
			m.log.WithError(err).WithField("session_id", id).Warn("failed to persist draft")
		}
	}
}

// Product returns the caller's session. Sessions of other users are reported
// as not found.
func (m *SessionManager) Product(owner string, id uuid.UUID) (*ProductSession, error) {
	m.mu.RLock()
	s, ok := m.products[id]
	m.mu.RUnlock()
	if !ok || s.Owner != owner {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// CloseProduct discards the session, its staged media and its snapshot.
func (m *SessionManager) CloseProduct(ctx context.Context, owner string, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.products[id]
	if !ok || s.Owner != owner {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.products, id)
	m.mu.Unlock()

	s.close()
	if err := m.drafts.Delete(ctx, id); err != nil {
		m.log.WithError(err).WithField("session_id", id).Warn("failed to delete draft snapshot")
	}
	return nil
}

// SubmitProduct submits the draft and applies the result to the product list.
// A successful update closes the session and a successful create drops the
// snapshot of the reset draft; a failure keeps both.
func (m *SessionManager) SubmitProduct(ctx context.Context, owner string, id uuid.UUID) (*models.Product, DraftMode, error) {
	s, err := m.Product(owner, id)
	if err != nil {
		return nil, "", err
	}
	mode := s.Mode()

	product, err := s.Submit(ctx, m.api)
	if err != nil {
		return nil, mode, err
	}

	if m.catalog != nil && product != nil {
		m.catalog.ApplyProduct(ctx, *product, mode == ModeCreate)
	}
	if mode == ModeEdit {
		if err := m.CloseProduct(ctx, owner, id); err != nil {
			m.log.WithError(err).WithField("session_id", id).Debug("session already closed")
		}
		return product, mode, nil
	}
	if err := m.drafts.Delete(ctx, id); err != nil {
		m.log.WithError(err).WithField("session_id", id).Warn("failed to delete draft snapshot")
	}
	return product, mode, nil
}

func (m *SessionManager) Drafts(ctx context.Context, owner string) ([]repositories.DraftRecord, error) {
	return m.drafts.ListByOwner(ctx, owner)
}

// Preview opens the staged bytes behind a preview reference.
func (m *SessionManager) Preview(owner, previewID string) (io.ReadCloser, string, error) {
	entry, err := m.previews.Lookup(owner, previewID)
	if err != nil {
		return nil, "", err
	}
	rc, err := m.staging.Open(entry.Path)
	if err != nil {
		return nil, "", ErrPreviewNotFound
	}
	return rc, entry.ContentType, nil
}

func (m *SessionManager) OpenCategoryDraft(owner string) *CategorySession {
	return m.openCategory(owner, models.DraftCategory{})
}

func (m *SessionManager) EditCategory(ctx context.Context, owner, categoryID string) (*CategorySession, error) {
	c, err := m.api.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", categoryID, err)
	}
	return m.openCategory(owner, models.DraftFromCategory(*c)), nil
}

func (m *SessionManager) openCategory(owner string, draft models.DraftCategory) *CategorySession {
	s := NewCategorySession(uuid.New(), owner, draft)
	m.mu.Lock()
	m.categories[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Category(owner string, id uuid.UUID) (*CategorySession, error) {
	m.mu.RLock()
	s, ok := m.categories[id]
	m.mu.RUnlock()
	if !ok || s.Owner != owner {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) CloseCategory(owner string, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.categories[id]
	if !ok || s.Owner != owner {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.categories, id)
	m.mu.Unlock()
	s.close()
	return nil
}

func (m *SessionManager) SubmitCategory(ctx context.Context, owner string, id uuid.UUID) (*models.Category, DraftMode, error) {
	s, err := m.Category(owner, id)
	if err != nil {
		return nil, "", err
	}
	mode := s.Mode()

	category, err := s.Submit(ctx, m.api)
	if err != nil {
		return nil, mode, err
	}

	if m.catalog != nil && category != nil {
		m.catalog.ApplyCategory(ctx, *category, mode == ModeCreate)
	}
	if mode == ModeEdit {
		_ = m.CloseCategory(owner, id)
	}
	return category, mode, nil
}

// Shutdown releases the staged media of every open session. Snapshots stay
// persisted so drafts can be resumed.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*ProductSession, 0, len(m.products))
	for _, s := range m.products {
		sessions = append(sessions, s)
	}
	m.products = make(map[uuid.UUID]*ProductSession)
	m.categories = make(map[uuid.UUID]*CategorySession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
