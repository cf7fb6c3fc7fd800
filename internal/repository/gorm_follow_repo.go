package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/domain"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// GORM v1.25+ wraps these as gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow creates a follow relationship between two users.
// If a soft-deleted record already exists for the (follower, following) pair,
// it is restored (deleted_at set back to NULL) rather than inserting a new row,
// avoiding duplicate history entries.
func (r *GormFollowRepository) Follow(ctx context.Context, followerID, followingID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Step 1: attempt to restore any existing soft-deleted record.
		result := tx.Unscoped().
			Model(&domain.FollowModel{}).
			Where("follower_id = ? AND following_id = ? AND deleted_at IS NOT NULL", followerID, followingID).
			Update("deleted_at", nil)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		// Step 2: no soft-deleted record found, insert a fresh row.
		model := domain.FollowModel{
			FollowerID:  followerID,
			FollowingID: followingID,
		}
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyFollowing
			}
			return err
		}
		return nil
	})
}

// Unfollow removes a follow relationship between two users.
func (r *GormFollowRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&domain.FollowModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// IsFollowing checks if followerID follows followingID.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowerCount returns the total number of followers for a given user.
func (r *GormFollowRepository) GetFollowerCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetFollowingCount returns how many users a given user follows.
func (r *GormFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListFollowers returns the IDs of users following userID, newest first.
func (r *GormFollowRepository) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, int, error) {
	return r.listPairs(ctx, "following_id", "follower_id", userID, page, pageSize)
}

// ListFollowing returns the IDs of users that userID follows, newest first.
func (r *GormFollowRepository) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, int, error) {
	return r.listPairs(ctx, "follower_id", "following_id", userID, page, pageSize)
}

func (r *GormFollowRepository) listPairs(ctx context.Context, whereCol, selectCol, userID string, page, pageSize int) ([]string, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where(whereCol+" = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []string
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).
		Pluck(selectCol, &ids).Error; err != nil {
		return nil, 0, err
	}

	return ids, int(total), nil
}

var _ FollowRepository = (*GormFollowRepository)(nil)
