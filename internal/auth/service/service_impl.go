package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamroster/internal/auth/domain"
	"github.com/smallbiznis/teamroster/internal/auth/password"
	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("auth.service"),
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) CreateUser(ctx context.Context, tx *gorm.DB, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}

	repo := s.repo.WithTx(tx)
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, db.Unavailable(err)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = defaultDisplayName(email)
	}

	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: &hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, db.Unavailable(err)
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	if id == 0 {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}
	return user, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}
	return user, nil
}

func defaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if strings.TrimSpace(local) != "" {
		return local
	}
	return email
}
