package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/membership/domain"
	"github.com/smallbiznis/teamroster/internal/observability/metrics"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Teams       teamdomain.Repository
	Invitations invitationdomain.Repository
	Audit       auditdomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	teams       teamdomain.Repository
	invitations invitationdomain.Repository
	audit       auditdomain.Emitter
	metrics     *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("membership.service"),
		teams:       p.Teams,
		invitations: p.Invitations,
		audit:       p.Audit,
		metrics:     p.Metrics,
	}
}

// RemoveMember deletes a membership. The team row is locked for the
// duration so two concurrent removals cannot both pass the last member check.
func (s *Service) RemoveMember(ctx context.Context, req domain.RemoveMemberRequest) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teams := s.teams.WithTx(tx)

		if _, err := teams.LockTeam(ctx, req.TeamID); err != nil {
			// No team means no membership to remove.
			if errors.Is(err, teamdomain.ErrTeamNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		member, err := teams.GetMember(ctx, req.TeamID, req.UserID)
		if err != nil {
			return err
		}

		if req.UserID == req.ActorID {
			return domain.ErrSelfRemovalForbidden
		}

		count, err := teams.CountMembers(ctx, req.TeamID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return domain.ErrLastMemberForbidden
		}

		deleted, err := teams.DeleteMember(ctx, req.TeamID, req.UserID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return domain.ErrMemberNotFound
		}

		return s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventTeamMemberRemoved,
			ActorID:    &req.ActorID,
			TeamID:     req.TeamID,
			EntityType: auditdomain.EntityMembership,
			EntityID:   fmt.Sprintf("%s:%s", req.TeamID, req.UserID),
			Action:     "remove",
			Payload: map[string]any{
				"team_id":  req.TeamID.String(),
				"user_id":  req.UserID.String(),
				"actor_id": req.ActorID.String(),
				"role":     string(member.Role),
			},
		})
	})
	if err != nil {
		if isGuardError(err) {
			return err
		}
		return db.Unavailable(err)
	}

	s.metrics.RecordMemberRemoved(ctx)
	s.log.Info("team member removed",
		zap.String("team_id", req.TeamID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("actor_id", req.ActorID.String()),
	)
	return nil
}

func (s *Service) GetTeamMembers(ctx context.Context, teamID snowflake.ID) ([]domain.RosterEntry, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, teamdomain.ErrTeamNotFound) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}

	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, db.Unavailable(err)
	}
	invites, err := s.invitations.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, db.Unavailable(err)
	}

	return domain.BuildRoster(members, invites), nil
}

func isGuardError(err error) bool {
	return errors.Is(err, teamdomain.ErrTeamNotFound) ||
		errors.Is(err, domain.ErrMemberNotFound) ||
		errors.Is(err, domain.ErrSelfRemovalForbidden) ||
		errors.Is(err, domain.ErrLastMemberForbidden)
}
