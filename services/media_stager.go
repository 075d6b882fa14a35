package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"catalog-admin/clients"
	"catalog-admin/config"
	"catalog-admin/libs"

	"github.com/google/uuid"
)

type MediaSlot string

const (
	SlotImages    MediaSlot = "images"
	SlotThumbnail MediaSlot = "thumbnail"
)

func ParseMediaSlot(s string) (MediaSlot, error) {
	switch MediaSlot(s) {
	case SlotImages, SlotThumbnail:
		return MediaSlot(s), nil
	}
	return "", ErrUnknownSlot
}

const (
	msgInvalidBatch      = "One or more files are invalid. Please upload images under %s."
	msgInvalidThumbnail  = "Only image files are accepted."
	msgNoImagesStaged    = "Please select images before uploading."
	msgNoThumbnailStaged = "Please select an image file before uploading."
	msgImagesUploadErr   = "An error occurred while uploading images."
	msgThumbUploadErr    = "Failed to upload image. Please try again."
	msgSlotLocked        = "Media has already been uploaded."
	msgUploadInFlight    = "An upload is already in progress."
	msgUploadDiscarded   = "The draft was reset before the upload finished."
)

// Staging persists staged file bytes until they are released.
type Staging interface {
	Save(id, filename string, r io.Reader) (string, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}

// StageInput is one file from a drop batch.
type StageInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type StagedMedia struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Preview     string `json:"preview"`

	path string
}

type SlotView struct {
	Items    []StagedMedia `json:"items"`
	Uploaded bool          `json:"uploaded"`
	Locked   bool          `json:"locked"`
}

type MediaView struct {
	Images    SlotView `json:"images"`
	Thumbnail SlotView `json:"thumbnail"`
}

type PreviewEntry struct {
	Owner       string
	Path        string
	ContentType string
}

// PreviewRegistry maps preview ids to staged files so they can be served back
// to the user who staged them.
type PreviewRegistry struct {
	mu      sync.RWMutex
	entries map[string]PreviewEntry
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{entries: make(map[string]PreviewEntry)}
}

func (r *PreviewRegistry) Register(id string, entry PreviewEntry) {
	r.mu.Lock()
	r.entries[id] = entry
	r.mu.Unlock()
}

func (r *PreviewRegistry) Release(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

func (r *PreviewRegistry) Lookup(owner, id string) (PreviewEntry, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || entry.Owner != owner {
		return PreviewEntry{}, ErrPreviewNotFound
	}
	return entry, nil
}

func (r *PreviewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

type slotState struct {
	items     []*StagedMedia
	uploaded  bool
	uploading bool
}

// MediaStager holds files selected for one draft until they are uploaded.
// It is not safe for concurrent use; the owning session serializes access.
type MediaStager struct {
	owner    string
	staging  Staging
	uploader libs.Uploader
	previews *PreviewRegistry
	maxSize  int64
	policy   string
	slots    map[MediaSlot]*slotState

	// generation is bumped by Reset so uploads begun before it are discarded.
	generation uint64
}

type MediaStagerConfig struct {
	Owner    string
	Staging  Staging
	Uploader libs.Uploader
	Previews *PreviewRegistry
	MaxSize  int64
	Policy   string
}

func NewMediaStager(cfg MediaStagerConfig) *MediaStager {
	if cfg.Previews == nil {
		cfg.Previews = NewPreviewRegistry()
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 5 * 1024 * 1024
	}
	return &MediaStager{
		owner:    cfg.Owner,
		staging:  cfg.Staging,
		uploader: cfg.Uploader,
		previews: cfg.Previews,
		maxSize:  cfg.MaxSize,
		policy:   cfg.Policy,
		slots: map[MediaSlot]*slotState{
			SlotImages:    {},
			SlotThumbnail: {},
		},
	}
}

func (m *MediaStager) locked(s *slotState) bool {
	return s.uploaded && m.policy != config.MediaPolicyEditable
}

func (m *MediaStager) mutable(slot MediaSlot) (*slotState, error) {
	s, ok := m.slots[slot]
	if !ok {
		return nil, ErrUnknownSlot
	}
	if s.uploading {
		return nil, &MediaError{Kind: ErrUploadInFlight, Message: msgUploadInFlight}
	}
	if m.locked(s) {
		return nil, &MediaError{Kind: ErrSlotLocked, Message: msgSlotLocked}
	}
	return s, nil
}

// StageImages accepts a multi-image drop. Any invalid file rejects the whole
// batch and nothing is staged.
func (m *MediaStager) StageImages(files []StageInput) ([]StagedMedia, error) {
	s, err := m.mutable(SlotImages)
	if err != nil {
		return nil, err
	}

	var rejections []libs.Rejection
	for _, f := range files {
		if r := libs.ValidateImage(libs.ImageFile{Filename: f.Filename, ContentType: f.ContentType, Size: f.Size}, m.maxSize); r != nil {
			rejections = append(rejections, *r)
		}
	}
	if len(rejections) > 0 {
		return nil, &MediaError{Kind: ErrBatchRejected, Message: fmt.Sprintf(msgInvalidBatch, formatSize(m.maxSize)), Rejections: rejections}
	}

	staged, err := m.saveAll(files)
	if err != nil {
		return nil, err
	}

	s.items = append(s.items, staged...)
	s.uploaded = false
	return viewItems(staged), nil
}

// StageThumbnail accepts a single-file drop and replaces any staged thumbnail.
func (m *MediaStager) StageThumbnail(files []StageInput) (*StagedMedia, error) {
	s, err := m.mutable(SlotThumbnail)
	if err != nil {
		return nil, err
	}

	var rejections []libs.Rejection
	if len(files) != 1 {
		for _, f := range files {
			rejections = append(rejections, libs.Rejection{Filename: f.Filename, Code: libs.RejectTooMany, Message: "only one file is accepted"})
		}
	} else {
		f := files[0]
		if r := libs.ValidateImage(libs.ImageFile{Filename: f.Filename, ContentType: f.ContentType, Size: f.Size}, m.maxSize); r != nil {
			rejections = append(rejections, *r)
		}
	}
	if len(files) == 0 || len(rejections) > 0 {
		return nil, &MediaError{Kind: ErrBatchRejected, Message: msgInvalidThumbnail, Rejections: rejections}
	}

	staged, err := m.saveAll(files)
	if err != nil {
		return nil, err
	}

	m.releaseItems(s.items)
	s.items = staged
	s.uploaded = false
	view := *staged[0]
	return &view, nil
}

// Remove discards the staged item at index and releases its preview.
func (m *MediaStager) Remove(slot MediaSlot, index int) error {
	s, err := m.mutable(slot)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.items) {
		return ErrStagedNotFound
	}

	m.releaseItems(s.items[index : index+1])
	items := make([]*StagedMedia, 0, len(s.items)-1)
	items = append(items, s.items[:index]...)
	s.items = append(items, s.items[index+1:]...)
	return nil
}

// pendingUpload is a snapshot of a slot taken before the network call.
type pendingUpload struct {
	slot       MediaSlot
	items      []*StagedMedia
	generation uint64
}

// beginUpload marks the slot busy and returns what has to be sent.
func (m *MediaStager) beginUpload(slot MediaSlot) (*pendingUpload, error) {
	s, err := m.mutable(slot)
	if err != nil {
		return nil, err
	}
	if len(s.items) == 0 {
		msg := msgNoImagesStaged
		if slot == SlotThumbnail {
			msg = msgNoThumbnailStaged
		}
		return nil, &MediaError{Kind: ErrNothingStaged, Message: msg}
	}
	s.uploading = true
	return &pendingUpload{slot: slot, items: append([]*StagedMedia{}, s.items...), generation: m.generation}, nil
}

// send uploads a pending batch. It does not touch stager state and may run
// without the session lock.
func (m *MediaStager) send(ctx context.Context, p *pendingUpload) ([]string, error) {
	files := make([]clients.UploadFile, 0, len(p.items))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, item := range p.items {
		rc, err := m.staging.Open(item.path)
		if err != nil {
			return nil, fmt.Errorf("open staged %s: %w", item.Filename, err)
		}
		closers = append(closers, rc)
		files = append(files, clients.UploadFile{Filename: item.Filename, ContentType: item.ContentType, Body: rc})
	}

	return m.uploader.Upload(ctx, files)
}

// finishUpload applies the outcome of send. On success the uploaded items
// are released and the slot is marked uploaded.
func (m *MediaStager) finishUpload(p *pendingUpload, err error) error {
	if p.generation != m.generation {
		return &MediaError{Kind: ErrUploadDiscarded, Message: msgUploadDiscarded}
	}
	s := m.slots[p.slot]
	s.uploading = false
	if err != nil {
		msg := msgImagesUploadErr
		if p.slot == SlotThumbnail {
			msg = msgThumbUploadErr
		}
		return &SubmitError{Message: msg, Err: err}
	}

	done := make(map[string]bool, len(p.items))
	for _, item := range p.items {
		done[item.ID] = true
	}
	m.releaseItems(p.items)
	remaining := s.items[:0]
	for _, item := range s.items {
		if !done[item.ID] {
			remaining = append(remaining, item)
		}
	}
	s.items = remaining
	s.uploaded = true
	return nil
}

func (m *MediaStager) View() MediaView {
	return MediaView{
		Images:    m.slotView(SlotImages),
		Thumbnail: m.slotView(SlotThumbnail),
	}
}

func (m *MediaStager) slotView(slot MediaSlot) SlotView {
	s := m.slots[slot]
	return SlotView{Items: viewItems(s.items), Uploaded: s.uploaded, Locked: m.locked(s)}
}

// Reset releases everything and returns both slots to their initial state.
func (m *MediaStager) Reset() {
	m.generation++
	for slot, s := range m.slots {
		m.releaseItems(s.items)
		m.slots[slot] = &slotState{}
	}
}

func (m *MediaStager) saveAll(files []StageInput) ([]*StagedMedia, error) {
	staged := make([]*StagedMedia, 0, len(files))
	for _, f := range files {
		id := uuid.NewString()
		path, err := m.staging.Save(id, f.Filename, f.Body)
		if err != nil {
			m.releaseItems(staged)
			return nil, fmt.Errorf("stage %s: %w", f.Filename, err)
		}
		item := &StagedMedia{
			ID:          id,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
			Preview:     "/previews/" + id,
			path:        path,
		}
		m.previews.Register(id, PreviewEntry{Owner: m.owner, Path: path, ContentType: f.ContentType})
		staged = append(staged, item)
	}
	return staged, nil
}

func (m *MediaStager) releaseItems(items []*StagedMedia) {
	for _, item := range items {
		m.previews.Release(item.ID)
		_ = m.staging.Delete(item.path)
	}
}

func formatSize(n int64) string {
	const mib = 1024 * 1024
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	if n >= mib {
		return fmt.Sprintf("%.1fMB", float64(n)/mib)
	}
	return fmt.Sprintf("%dKB", (n+1023)/1024)
}

func viewItems(items []*StagedMedia) []StagedMedia {
	out := make([]StagedMedia, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
