package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/pkg/log"
)

// GormStreamRepository implements StreamRepository using GORM.
type GormStreamRepository struct {
	db *gorm.DB
}

// NewGormStreamRepository creates a new GORM-based stream repository.
func NewGormStreamRepository(db *gorm.DB) *GormStreamRepository {
	return &GormStreamRepository{db: db}
}

// Create creates a new stream.
func (r *GormStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	l := log.Ctx(ctx)

	stream.ID = uuid.New().String()
	stream.Status = domain.StreamStatusCreated

	model := domain.StreamToModel(stream)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create stream in db")
		return result.Error
	}

	stream.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldStreamID, stream.ID).Msg("stream created in db")
	return nil
}

// GetByID retrieves a stream by ID.
func (r *GormStreamRepository) GetByID(ctx context.Context, id string) (*domain.Stream, error) {
	var model domain.StreamModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByStreamKey retrieves a stream by its ingest stream key.
func (r *GormStreamRepository) GetByStreamKey(ctx context.Context, key string) (*domain.Stream, error) {
	var model domain.StreamModel
	result := r.db.WithContext(ctx).First(&model, "stream_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// Update updates a stream's mutable metadata.
func (r *GormStreamRepository) Update(ctx context.Context, stream *domain.Stream) error {
	model := domain.StreamToModel(stream)
	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", stream.ID).
		Updates(map[string]interface{}{
			"title":         model.Title,
			"description":   model.Description,
			"tags":          model.Tags,
			"thumbnail_key": model.ThumbnailKey,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// UpdateChannel persists the provisioned ingest endpoint for a stream.
func (r *GormStreamRepository) UpdateChannel(ctx context.Context, stream *domain.Stream) error {
	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", stream.ID).
		Updates(map[string]interface{}{
			"ingest_url":   stream.IngestURL,
			"stream_key":   stream.StreamKey,
			"playback_url": stream.PlaybackURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// UpdateStatus transitions a stream's lifecycle state and stamps the
// corresponding timestamp.
func (r *GormStreamRepository) UpdateStatus(ctx context.Context, id string, status domain.StreamStatus) error {
	updates := map[string]interface{}{"status": string(status)}
	now := time.Now()
	switch status {
	case domain.StreamStatusLive:
		updates["started_at"] = &now
	case domain.StreamStatusEnded:
		updates["ended_at"] = &now
	}

	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// Delete soft-deletes a stream.
func (r *GormStreamRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.StreamModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// List retrieves streams with pagination. Live streams sort first.
func (r *GormStreamRepository) List(ctx context.Context, page, pageSize int, status string) ([]domain.Stream, int, error) {
	l := log.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.StreamModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count streams")
		return nil, 0, err
	}

	var models []domain.StreamModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list streams from db")
		return nil, 0, err
	}

	return toStreams(models), int(total), nil
}

// ListByOwner retrieves the streams owned by a user.
func (r *GormStreamRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Stream, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.StreamModel{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []domain.StreamModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	return toStreams(models), int(total), nil
}

// Search searches non-ended streams by title or description.
func (r *GormStreamRepository) Search(ctx context.Context, queryStr string, page, pageSize int) ([]domain.Stream, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	searchPattern := "%" + queryStr + "%"

	query := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("status <> ?", string(domain.StreamStatusEnded)).
		Where("title LIKE ? OR description LIKE ?", searchPattern, searchPattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []domain.StreamModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	return toStreams(models), int(total), nil
}

func toStreams(models []domain.StreamModel) []domain.Stream {
	streams := make([]domain.Stream, len(models))
	for i, model := range models {
		streams[i] = *model.ToDomain()
	}
	return streams
}

var _ StreamRepository = (*GormStreamRepository)(nil)
