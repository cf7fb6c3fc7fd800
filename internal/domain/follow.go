package domain

import (
	"time"

	"gorm.io/gorm"
)

// FollowModel is the GORM model for the follows table.
type FollowModel struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	FollowerID  string         `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:idx_follow_pair"`
	FollowingID string         `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (FollowModel) TableName() string { return "follows" }

// Follow is the domain representation of a follow relationship.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowStatsResponse carries follower/following counts for a user.
type FollowStatsResponse struct {
	UserID         string `json:"user_id"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
}

// FollowListResponse is a paginated list of users in a follow relation.
type FollowListResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
