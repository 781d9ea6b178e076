package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/internal/team/domain"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Audit auditdomain.Service
	GenID *snowflake.Node
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	audit auditdomain.Emitter
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("team.service"),
		repo:  p.Repo,
		audit: p.Audit,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *service) Create(ctx context.Context, actorID snowflake.ID, req domain.CreateTeamRequest) (*domain.Team, error) {
	if actorID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	team := domain.Team{
		ID:        s.genID.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		teamSlug, err := s.uniqueSlug(ctx, repo, name, team.ID)
		if err != nil {
			return err
		}
		team.Slug = teamSlug

		if err := repo.CreateTeam(ctx, team); err != nil {
			return err
		}

		if err := repo.AddMember(ctx, domain.Membership{
			TeamID:    team.ID,
			UserID:    actorID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventTeamCreated,
			ActorID:    &actorID,
			TeamID:     team.ID,
			EntityType: auditdomain.EntityTeam,
			EntityID:   team.ID.String(),
			Action:     "create",
			Payload: map[string]any{
				"team_id":  team.ID.String(),
				"name":     team.Name,
				"slug":     team.Slug,
				"owner_id": actorID.String(),
			},
		})
	})
	if err != nil {
		return nil, db.Unavailable(err)
	}

	s.log.Info("team created",
		zap.String("team_id", team.ID.String()),
		zap.String("owner_id", actorID.String()),
	)
	return &team, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Team, error) {
	if id == 0 {
		return nil, domain.ErrTeamNotFound
	}
	team, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}
	return team, nil
}

// uniqueSlug suffixes the slug with the team id when the plain form is taken.
func (s *service) uniqueSlug(ctx context.Context, repo domain.Repository, name string, id snowflake.ID) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "team"
	}
	exists, err := repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return base + "-" + id.Base36(), nil
}
