package service

import (
	"context"
	"encoding/json"
	"log"
	"path"

	"github.com/google/uuid"

	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// ============================================
// File Service
// ============================================

const (
	ThumbnailsStatusWaiting = "waiting"
	ThumbnailsStatusDone    = "done"
)

type FileService interface {
	Create(ctx context.Context, name string, mimeType *string, size int64, ec types.ExecutionContext) (*repository.File, error)
	Get(ctx context.Context, companyID, id string) (*repository.File, error)
}

type fileService struct {
	fileRepo repository.FileRepository
}

func NewFileService(fileRepo repository.FileRepository) FileService {
	return &fileService{fileRepo: fileRepo}
}

func (s *fileService) Create(ctx context.Context, name string, mimeType *string, size int64, ec types.ExecutionContext) (*repository.File, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	file := &repository.File{
		ID:               uuid.NewString(),
		CompanyID:        ec.CompanyID,
		Name:             name,
		MimeType:         mimeType,
		Size:             size,
		ThumbnailsStatus: ThumbnailsStatusWaiting,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *fileService) Get(ctx context.Context, companyID, id string) (*repository.File, error) {
	file, err := s.fileRepo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrNotFound
	}
	return file, nil
}

// ============================================
// Preview Finished Processor
// ============================================

// filePrimaryKey is the JSON-encoded key the preview worker echoes back in
// its callback.
type filePrimaryKey struct {
	CompanyID string `json:"company_id"`
	ID        string `json:"id"`
}

// PreviewFinishedProcessor ingests preview-callback events: it rewrites the
// file's thumbnail list and marks thumbnail generation as done.
type PreviewFinishedProcessor struct {
	fileRepo repository.FileRepository
}

func NewPreviewFinishedProcessor(fileRepo repository.FileRepository) *PreviewFinishedProcessor {
	return &PreviewFinishedProcessor{fileRepo: fileRepo}
}

// Validate reports whether the callback carries the required fields.
func (p *PreviewFinishedProcessor) Validate(message *pubsub.PreviewCallback) bool {
	return message != nil && message.Document != nil && message.Thumbnails != nil
}

// Process applies one preview callback. A callback for a file that no longer
// exists is logged and dropped, not treated as an error.
func (p *PreviewFinishedProcessor) Process(ctx context.Context, message *pubsub.PreviewCallback) error {
	if !p.Validate(message) {
		return ErrInvalidInput
	}

	var pk filePrimaryKey
	if err := json.Unmarshal([]byte(message.Document.ID), &pk); err != nil {
		return err
	}

	file, err := p.fileRepo.FindByID(ctx, pk.CompanyID, pk.ID)
	if err != nil {
		return err
	}
	if file == nil {
		log.Printf("[Preview] File %s does not exist anymore", message.Document.ID)
		return nil
	}

	thumbnails := make([]repository.Thumbnail, len(message.Thumbnails))
	for i, thumb := range message.Thumbnails {
		thumbnails[i] = repository.Thumbnail{
			Index:  i,
			ID:     path.Base(thumb.Path),
			Size:   thumb.Size,
			Type:   thumb.Type,
			Width:  thumb.Width,
			Height: thumb.Height,
		}
	}
	file.Thumbnails = thumbnails
	file.ThumbnailsStatus = ThumbnailsStatusDone

	return p.fileRepo.Update(ctx, file)
}

// Subscribe attaches the processor to the preview callback topic on the bus.
func (p *PreviewFinishedProcessor) Subscribe(bus *pubsub.Bus) (cancel func(), err error) {
	return bus.Subscribe(pubsub.TopicPreviewCallback, func(data json.RawMessage) {
		var message pubsub.PreviewCallback
		if err := json.Unmarshal(data, &message); err != nil {
			log.Printf("[Preview] Dropping malformed callback: %v", err)
			return
		}
		if err := p.Process(context.Background(), &message); err != nil {
			log.Printf("[Preview] Failed to process callback: %v", err)
		}
	})
}
