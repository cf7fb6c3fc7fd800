package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/pkg/database"
)

// StreamStatus represents the lifecycle state of a stream.
type StreamStatus string

const (
	StreamStatusCreated StreamStatus = "created"
	StreamStatusLive    StreamStatus = "live"
	StreamStatusEnded   StreamStatus = "ended"
)

// StreamModel is the GORM model for the streams table.
type StreamModel struct {
	ID            string               `gorm:"type:varchar(36);primaryKey"`
	OwnerID       string               `gorm:"type:varchar(36);index;not null"`
	OwnerUsername string               `gorm:"type:varchar(50);not null"`
	Title         string               `gorm:"type:varchar(200);not null"`
	Description   string               `gorm:"type:text"`
	Status        string               `gorm:"type:varchar(20);index;not null;default:'created'"`
	Tags          database.StringArray `gorm:"type:text"`
	IngestURL     string               `gorm:"type:varchar(500)"`
	StreamKey     string               `gorm:"type:varchar(100)"`
	PlaybackURL   string               `gorm:"type:varchar(500)"`
	ThumbnailKey  string               `gorm:"type:varchar(255)"`
	CreatedAt     time.Time            `gorm:"autoCreateTime"`
	StartedAt     *time.Time
	EndedAt       *time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for StreamModel.
func (StreamModel) TableName() string {
	return "streams"
}

// ToDomain converts StreamModel to domain Stream.
func (m *StreamModel) ToDomain() *Stream {
	return &Stream{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		OwnerUsername: m.OwnerUsername,
		Title:         m.Title,
		Description:   m.Description,
		Status:        StreamStatus(m.Status),
		Tags:          []string(m.Tags),
		IngestURL:     m.IngestURL,
		StreamKey:     m.StreamKey,
		PlaybackURL:   m.PlaybackURL,
		ThumbnailKey:  m.ThumbnailKey,
		CreatedAt:     m.CreatedAt,
		StartedAt:     m.StartedAt,
		EndedAt:       m.EndedAt,
	}
}

// StreamToModel converts domain Stream to StreamModel.
func StreamToModel(s *Stream) *StreamModel {
	return &StreamModel{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		OwnerUsername: s.OwnerUsername,
		Title:         s.Title,
		Description:   s.Description,
		Status:        string(s.Status),
		Tags:          database.StringArray(s.Tags),
		IngestURL:     s.IngestURL,
		StreamKey:     s.StreamKey,
		PlaybackURL:   s.PlaybackURL,
		ThumbnailKey:  s.ThumbnailKey,
		CreatedAt:     s.CreatedAt,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
	}
}

// Stream represents a live broadcasting session.
type Stream struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	OwnerUsername string       `json:"owner_username"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Status        StreamStatus `json:"status"`
	ViewerCount   int          `json:"viewer_count"`
	Tags          []string     `json:"tags,omitempty"`
	IngestURL     string       `json:"-"`
	StreamKey     string       `json:"-"`
	PlaybackURL   string       `json:"playback_url,omitempty"`
	ThumbnailKey  string       `json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`
	EndedAt       *time.Time   `json:"ended_at,omitempty"`
}

// CreateStreamRequest represents a create stream request.
type CreateStreamRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=200"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// UpdateStreamRequest represents an update stream request.
type UpdateStreamRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// ListStreamsRequest represents a list streams request.
type ListStreamsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

// SearchStreamsRequest represents a search streams request.
type SearchStreamsRequest struct {
	Query    string `form:"q" binding:"required,min=1"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// StreamResponse represents a stream in API responses.
type StreamResponse struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	OwnerUsername string       `json:"owner_username"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Status        StreamStatus `json:"status"`
	ViewerCount   int          `json:"viewer_count"`
	Tags          []string     `json:"tags,omitempty"`
	PlaybackURL   string       `json:"playback_url,omitempty"`
	ThumbnailURL  string       `json:"thumbnail_url,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`
	EndedAt       *time.Time   `json:"ended_at,omitempty"`
}

// OwnerStreamResponse is the stream view returned to its owner,
// including the ingest endpoint and stream key.
type OwnerStreamResponse struct {
	StreamResponse
	IngestURL string `json:"ingest_url,omitempty"`
	StreamKey string `json:"stream_key,omitempty"`
}

// ListStreamsResponse represents a paginated list response.
type ListStreamsResponse struct {
	Streams    []StreamResponse `json:"streams"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ToResponse converts Stream to StreamResponse.
func (s *Stream) ToResponse() StreamResponse {
	return StreamResponse{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		OwnerUsername: s.OwnerUsername,
		Title:         s.Title,
		Description:   s.Description,
		Status:        s.Status,
		ViewerCount:   s.ViewerCount,
		Tags:          s.Tags,
		PlaybackURL:   s.PlaybackURL,
		CreatedAt:     s.CreatedAt,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
	}
}

// ToOwnerResponse converts Stream to OwnerStreamResponse.
func (s *Stream) ToOwnerResponse() OwnerStreamResponse {
	return OwnerStreamResponse{
		StreamResponse: s.ToResponse(),
		IngestURL:      s.IngestURL,
		StreamKey:      s.StreamKey,
	}
}
