package signup

import (
	"context"
	"errors"
	"strings"

	authdomain "github.com/smallbiznis/teamroster/internal/auth/domain"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/observability/metrics"
	"github.com/smallbiznis/teamroster/internal/signup/domain"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Auth        authdomain.Service
	Provisioner domain.Provisioner
	Metrics     *metrics.Metrics `optional:"true"`
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	authsvc     authdomain.Service
	provisioner domain.Provisioner
	metrics     *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("signup.service"),
		authsvc:     p.Auth,
		provisioner: p.Provisioner,
		metrics:     p.Metrics,
	}
}

// Signup creates the account and resolves its pending invitations in one
// transaction. Either both persist or neither does.
func (s *service) Signup(ctx context.Context, req domain.Request) (*domain.Result, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidRequest
	}

	var (
		user     *authdomain.User
		resolved []invitationdomain.Invitation
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.authsvc.CreateUser(ctx, tx, authdomain.CreateUserRequest{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			return err
		}
		user = created

		resolved, err = s.provisioner.Provision(ctx, tx, created.ID, created.Email)
		return err
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidEmail) ||
			errors.Is(err, authdomain.ErrInvalidPassword) ||
			errors.Is(err, authdomain.ErrUserExists) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}

	s.metrics.RecordInvitationsAutoResolved(ctx, len(resolved))
	s.log.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.Int("resolved_invitations", len(resolved)),
	)

	return &domain.Result{User: user, ResolvedInvitations: resolved}, nil
}
