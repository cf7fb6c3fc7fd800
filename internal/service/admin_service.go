package service

import (
	"context"

	"github.com/atims0208/fieldhouse/internal/audit"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/jwt"
)

// adminServiceImpl implements AdminService interface.
type adminServiceImpl struct {
	userRepo    repository.UserRepository
	streamRepo  repository.StreamRepository
	productRepo repository.ProductRepository
	tokens      *jwt.Manager
}

// NewAdminService creates a new admin service.
func NewAdminService(userRepo repository.UserRepository, streamRepo repository.StreamRepository, productRepo repository.ProductRepository, tokens *jwt.Manager) AdminService {
	return &adminServiceImpl{
		userRepo:    userRepo,
		streamRepo:  streamRepo,
		productRepo: productRepo,
		tokens:      tokens,
	}
}

// ListUsers pages through every account.
func (s *adminServiceImpl) ListUsers(ctx context.Context, page, pageSize int) ([]domain.UserResponse, int, error) {
	users, total, err := s.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]domain.UserResponse, len(users))
	for i := range users {
		resp[i] = users[i].ToResponse()
	}
	return resp, total, nil
}

// BanUser bans an account and revokes its tokens.
func (s *adminServiceImpl) BanUser(ctx context.Context, adminID, userID string) error {
	if err := s.userRepo.SetBanned(ctx, userID, true); err != nil {
		return err
	}
	s.tokens.RevokeUserTokens(userID)
	audit.LogWithDetail(ctx, audit.ActionUserBan, adminID, userID, "user banned")
	return nil
}

// UnbanUser lifts a ban.
func (s *adminServiceImpl) UnbanUser(ctx context.Context, adminID, userID string) error {
	if err := s.userRepo.SetBanned(ctx, userID, false); err != nil {
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionUserUnban, adminID, userID, "user unbanned")
	return nil
}

// EndStream force-ends any stream regardless of ownership.
func (s *adminServiceImpl) EndStream(ctx context.Context, adminID, streamID string) error {
	stream, err := s.streamRepo.GetByID(ctx, streamID)
	if err != nil {
		return err
	}
	if stream.Status == domain.StreamStatusEnded {
		return nil
	}
	if err := s.streamRepo.UpdateStatus(ctx, streamID, domain.StreamStatusEnded); err != nil {
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionStreamEnd, adminID, streamID, "stream force-ended by admin")
	return nil
}

// RemoveProduct takes down any product listing regardless of ownership.
func (s *adminServiceImpl) RemoveProduct(ctx context.Context, adminID, productID string) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionProductDelete, adminID, productID, "product taken down by admin")
	return nil
}

var _ AdminService = (*adminServiceImpl)(nil)
