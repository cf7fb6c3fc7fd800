package service

import (
	"context"
	"errors"

	"github.com/atims0208/fieldhouse/internal/audit"
	"github.com/atims0208/fieldhouse/internal/cache"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/log"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// followServiceImpl implements FollowService interface.
type followServiceImpl struct {
	repo     repository.FollowRepository
	userRepo repository.UserRepository
	cache    *cache.FollowCache
}

// NewFollowService creates a new follow service.
func NewFollowService(repo repository.FollowRepository, userRepo repository.UserRepository, followCache *cache.FollowCache) FollowService {
	return &followServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		cache:    followCache,
	}
}

// Follow makes followerID follow followingID.
// Following an already-followed user is a no-op.
func (s *followServiceImpl) Follow(ctx context.Context, followerID, followingID string) error {
	l := log.Ctx(ctx)

	if followerID == followingID {
		return ErrSelfFollow
	}

	// The target must exist and not be banned.
	target, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return err
	}
	if target.Banned {
		return ErrUserBanned
	}

	if err := s.repo.Follow(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return nil
		}
		return err
	}

	if err := s.cache.IncrFollowerCount(ctx, target.ID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, target.ID).Msg("follower count cache incr failed")
	}

	audit.LogWithDetail(ctx, audit.ActionFollow, followerID, followingID, "followed user")
	return nil
}

// Unfollow removes the follow relationship.
func (s *followServiceImpl) Unfollow(ctx context.Context, followerID, followingID string) error {
	l := log.Ctx(ctx)

	if err := s.repo.Unfollow(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return nil
		}
		return err
	}

	if err := s.cache.DecrFollowerCount(ctx, followingID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, followingID).Msg("follower count cache decr failed")
	}

	audit.LogWithDetail(ctx, audit.ActionUnfollow, followerID, followingID, "unfollowed user")
	return nil
}

// IsFollowing reports whether followerID follows followingID.
func (s *followServiceImpl) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.repo.IsFollowing(ctx, followerID, followingID)
}

// GetStats returns follower and following counts for a user looked up
// by username. The follower count is served from cache when warm.
func (s *followServiceImpl) GetStats(ctx context.Context, username string) (*domain.FollowStatsResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	userID := user.ID

	followers, hit, err := s.cache.GetFollowerCount(ctx, userID)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("follower count cache read failed")
		hit = false
	}
	if !hit {
		followers, err = s.repo.GetFollowerCount(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetFollowerCount(ctx, userID, followers); err != nil {
			l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("follower count cache write failed")
		}
	}

	following, err := s.repo.GetFollowingCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.FollowStatsResponse{
		UserID:         userID,
		FollowerCount:  followers,
		FollowingCount: following,
	}, nil
}

// ListFollowers returns the users following the named user.
func (s *followServiceImpl) ListFollowers(ctx context.Context, username string, page, pageSize int) (*domain.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	ids, total, err := s.repo.ListFollowers(ctx, user.ID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, ids, total, page, pageSize)
}

// ListFollowing returns the users the named user follows.
func (s *followServiceImpl) ListFollowing(ctx context.Context, username string, page, pageSize int) (*domain.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	ids, total, err := s.repo.ListFollowing(ctx, user.ID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, ids, total, page, pageSize)
}

func (s *followServiceImpl) resolveUsers(ctx context.Context, ids []string, total, page, pageSize int) (*domain.FollowListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Preserve the follow-order returned by the repository.
	byID := make(map[string]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	resolved := make([]domain.UserResponse, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			resolved = append(resolved, u.ToPublicResponse())
		}
	}

	return &domain.FollowListResponse{
		Users:    resolved,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

var _ FollowService = (*followServiceImpl)(nil)
