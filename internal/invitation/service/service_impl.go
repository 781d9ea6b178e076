package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	"github.com/smallbiznis/teamroster/internal/audit/masking"
	authdomain "github.com/smallbiznis/teamroster/internal/auth/domain"
	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/internal/config"
	"github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/observability/metrics"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pathExistingAccount = "existing_account"
	pathNewAccount      = "new_account"

	outcomeSent   = "sent"
	outcomeFailed = "failed"

	maxErrorMessageLen = 500
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	Repo    domain.Repository
	Teams   teamdomain.Repository
	Users   authdomain.Repository
	Audit   auditdomain.Service
	Mailer  domain.Mailer
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	baseURL string
	repo    domain.Repository
	teams   teamdomain.Repository
	users   authdomain.Repository
	audit   auditdomain.Emitter
	mailer  domain.Mailer
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invitation.service"),
		baseURL: p.Config.AppBaseURL,
		repo:    p.Repo,
		teams:   p.Teams,
		users:   p.Users,
		audit:   p.Audit,
		mailer:  p.Mailer,
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Invitation, error) {
	email, err := authdomain.NormalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if req.InviterID == 0 {
		return nil, domain.ErrInvalidInviter
	}

	team, err := s.loadTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.inviteExistingAccount(ctx, team, user, req.InviterID)
	case errors.Is(err, authdomain.ErrUserNotFound):
		return s.inviteNewAccount(ctx, team, email, req.InviterID)
	default:
		return nil, db.Unavailable(err)
	}
}

func (s *Service) inviteExistingAccount(ctx context.Context, team *teamdomain.Team, user *authdomain.User, inviterID snowflake.ID) (*domain.Invitation, error) {
	if _, err := s.teams.GetMember(ctx, team.ID, user.ID); err == nil {
		return nil, domain.ErrAlreadyMember
	} else if !errors.Is(err, teamdomain.ErrMemberNotFound) {
		return nil, db.Unavailable(err)
	}

	status, err := domain.NextStatus("", domain.Trigger{Kind: domain.TriggerCreated, HasResolvedUser: true})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	userID := user.ID

	var inv *domain.Invitation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByTeamEmail(ctx, team.ID, user.Email)
		switch {
		case err == nil:
			// A removed account is invited again: the row is reused.
			fields := map[string]any{
				"status":          status,
				"invited_user_id": userID,
				"invited_by":      inviterID,
				"error_message":   nil,
				"updated_at":      now,
			}
			if err := repo.Update(ctx, existing.ID, fields); err != nil {
				return err
			}
			existing.Status = status
			existing.InvitedUserID = &userID
			existing.InvitedBy = inviterID
			existing.ErrorMessage = nil
			existing.UpdatedAt = now
			inv = existing
		case errors.Is(err, domain.ErrInvitationNotFound):
			inv = &domain.Invitation{
				ID:            s.genID.Generate(),
				TeamID:        team.ID,
				Email:         user.Email,
				Status:        status,
				InvitedUserID: &userID,
				InvitedBy:     inviterID,
				Code:          ulid.Make().String(),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := repo.Create(ctx, inv); err != nil {
				return err
			}
		default:
			return err
		}

		if err := s.teams.WithTx(tx).AddMember(ctx, teamdomain.Membership{
			TeamID:    team.ID,
			UserID:    userID,
			Role:      teamdomain.RoleMember,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventMemberAdded,
			ActorID:    &inviterID,
			TeamID:     team.ID,
			EntityType: auditdomain.EntityInvitation,
			EntityID:   inv.ID.String(),
			Action:     "add_member",
			Payload: map[string]any{
				"team_id":       team.ID.String(),
				"invitation_id": inv.ID.String(),
				"user_id":       userID.String(),
				"email":         inv.Email,
				"role":          string(teamdomain.RoleMember),
			},
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, db.Unavailable(err)
	}

	s.metrics.RecordInvitationCreated(ctx, pathExistingAccount)
	s.log.Info("existing account added to team",
		zap.String("team_id", team.ID.String()),
		zap.String("invitation_id", inv.ID.String()),
		zap.String("user_id", userID.String()),
	)

	return s.deliver(ctx, inv, team, inviterID, false)
}

func (s *Service) inviteNewAccount(ctx context.Context, team *teamdomain.Team, email string, inviterID snowflake.ID) (*domain.Invitation, error) {
	existing, err := s.repo.FindByTeamEmail(ctx, team.ID, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrInvitationNotFound) {
		return nil, db.Unavailable(err)
	}

	status, err := domain.NextStatus("", domain.Trigger{Kind: domain.TriggerCreated})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inv := &domain.Invitation{
		ID:        s.genID.Generate(),
		TeamID:    team.ID,
		Email:     email,
		Status:    status,
		InvitedBy: inviterID,
		Code:      ulid.Make().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, inv); err != nil {
			return err
		}
		return s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventInviteCreated,
			ActorID:    &inviterID,
			TeamID:     team.ID,
			EntityType: auditdomain.EntityInvitation,
			EntityID:   inv.ID.String(),
			Action:     "create",
			Payload: map[string]any{
				"team_id":       team.ID.String(),
				"invitation_id": inv.ID.String(),
				"email":         email,
				"status":        string(status),
			},
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// A concurrent request created the row first.
			current, findErr := s.repo.FindByTeamEmail(ctx, team.ID, email)
			if findErr == nil {
				return current, nil
			}
			return nil, db.Unavailable(findErr)
		}
		return nil, db.Unavailable(err)
	}

	s.metrics.RecordInvitationCreated(ctx, pathNewAccount)
	s.log.Info("invitation created",
		zap.String("team_id", team.ID.String()),
		zap.String("invitation_id", inv.ID.String()),
		zap.String("email", masking.MaskEmail(email)),
	)

	return s.deliver(ctx, inv, team, inviterID, false)
}

func (s *Service) List(ctx context.Context, teamID snowflake.ID) ([]domain.Invitation, error) {
	if _, err := s.loadTeam(ctx, teamID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return items, nil
}

func (s *Service) Resend(ctx context.Context, req domain.ResendRequest) (*domain.Invitation, error) {
	inv, err := s.repo.GetByID(ctx, req.TeamID, req.InvitationID)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}

	team, err := s.loadTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	return s.deliver(ctx, inv, team, req.ActorID, true)
}

func (s *Service) AutoResolveOnSignup(ctx context.Context, tx *gorm.DB, userID snowflake.ID, email string) ([]domain.Invitation, error) {
	if tx == nil {
		return nil, domain.ErrTransactionRequired
	}
	normalized, err := authdomain.NormalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}

	repo := s.repo.WithTx(tx)
	teams := s.teams.WithTx(tx)

	pending, err := repo.ListPendingByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resolved := make([]domain.Invitation, 0, len(pending))
	for _, inv := range pending {
		next, err := domain.NextStatus(inv.Status, domain.Trigger{Kind: domain.TriggerSignupResolved})
		if err != nil {
			return nil, err
		}

		created, err := teams.AddMemberIfAbsent(ctx, teamdomain.Membership{
			TeamID:    inv.TeamID,
			UserID:    userID,
			Role:      teamdomain.RoleMember,
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}

		if err := repo.Update(ctx, inv.ID, map[string]any{
			"status":          next,
			"invited_user_id": userID,
			"updated_at":      now,
		}); err != nil {
			return nil, err
		}

		if err := s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventInviteAutoResolved,
			ActorID:    &userID,
			TeamID:     inv.TeamID,
			EntityType: auditdomain.EntityInvitation,
			EntityID:   inv.ID.String(),
			Action:     "auto_resolve",
			Payload: map[string]any{
				"team_id":            inv.TeamID.String(),
				"invitation_id":      inv.ID.String(),
				"user_id":            userID.String(),
				"membership_created": created,
			},
		}); err != nil {
			return nil, err
		}

		resolvedUser := userID
		inv.Status = next
		inv.InvitedUserID = &resolvedUser
		inv.UpdatedAt = now
		resolved = append(resolved, inv)
	}

	if len(resolved) > 0 {
		s.log.Info("pending invitations resolved on signup",
			zap.String("user_id", userID.String()),
			zap.Int("count", len(resolved)),
		)
	}
	return resolved, nil
}

// deliver sends the notification for inv and reconciles the stored row with
// the outcome. Delivery failures are recorded on the invitation, never
// returned. Only a failed reconciliation write is an error.
//
// The row already exists when deliver runs, so caller cancellation is
// detached: the send is bounded by the mailer's own timeout and the
// reconciliation write always runs.
func (s *Service) deliver(ctx context.Context, inv *domain.Invitation, team *teamdomain.Team, actorID snowflake.ID, resend bool) (*domain.Invitation, error) {
	ctx = context.WithoutCancel(ctx)
	note := s.notificationFor(inv, team)
	sendErr := s.mailer.Send(ctx, note)
	now := s.clock.Now()

	if sendErr != nil {
		s.metrics.RecordInvitationEmail(ctx, string(note.Kind), outcomeFailed)
		s.log.Warn("invitation email failed",
			zap.String("invitation_id", inv.ID.String()),
			zap.String("template", string(note.Kind)),
			zap.Error(sendErr),
		)
		if err := s.recordFailure(ctx, inv, note.Kind, actorID, sendErr, now); err != nil {
			s.log.Error("failed to record invitation email failure",
				zap.String("invitation_id", inv.ID.String()),
				zap.Error(err),
			)
			return nil, db.Unavailable(err)
		}
		return inv, nil
	}

	s.metrics.RecordInvitationEmail(ctx, string(note.Kind), outcomeSent)
	if resend {
		if err := s.recordResent(ctx, inv, note.Kind, actorID, now); err != nil {
			return nil, db.Unavailable(err)
		}
		return inv, nil
	}

	if err := s.repo.Update(ctx, inv.ID, map[string]any{"last_sent_at": now}); err != nil {
		s.log.Warn("failed to stamp invitation last sent time",
			zap.String("invitation_id", inv.ID.String()),
			zap.Error(err),
		)
		return inv, nil
	}
	inv.LastSentAt = &now
	return inv, nil
}

func (s *Service) recordFailure(ctx context.Context, inv *domain.Invitation, kind domain.TemplateKind, actorID snowflake.ID, sendErr error, now time.Time) error {
	next, err := domain.NextStatus(inv.Status, domain.Trigger{Kind: domain.TriggerSendFailed})
	if err != nil {
		return err
	}
	message := truncate(sendErr.Error(), maxErrorMessageLen)
	previous := inv.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, inv.ID, map[string]any{
			"status":        next,
			"error_message": message,
			"last_sent_at":  now,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		return s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventInviteEmailFailed,
			ActorID:    actorPtr(actorID),
			TeamID:     inv.TeamID,
			EntityType: auditdomain.EntityInvitation,
			EntityID:   inv.ID.String(),
			Action:     "email_failed",
			Payload: map[string]any{
				"invitation_id":   inv.ID.String(),
				"template":        string(kind),
				"error":           message,
				"previous_status": string(previous),
			},
		})
	})
	if err != nil {
		return err
	}

	inv.Status = next
	inv.ErrorMessage = &message
	inv.LastSentAt = &now
	inv.UpdatedAt = now
	return nil
}

func (s *Service) recordResent(ctx context.Context, inv *domain.Invitation, kind domain.TemplateKind, actorID snowflake.ID, now time.Time) error {
	next, err := domain.NextStatus(inv.Status, domain.Trigger{
		Kind:            domain.TriggerSendSucceeded,
		HasResolvedUser: inv.InvitedUserID != nil,
	})
	if err != nil {
		return err
	}
	previous := inv.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, inv.ID, map[string]any{
			"status":        next,
			"error_message": nil,
			"last_sent_at":  now,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		return s.audit.Emit(ctx, tx, auditdomain.Record{
			EventType:  auditdomain.EventInviteResent,
			ActorID:    actorPtr(actorID),
			TeamID:     inv.TeamID,
			EntityType: auditdomain.EntityInvitation,
			EntityID:   inv.ID.String(),
			Action:     "resend",
			Payload: map[string]any{
				"invitation_id":   inv.ID.String(),
				"template":        string(kind),
				"previous_status": string(previous),
				"status":          string(next),
			},
		})
	})
	if err != nil {
		return err
	}

	inv.Status = next
	inv.ErrorMessage = nil
	inv.LastSentAt = &now
	inv.UpdatedAt = now
	return nil
}

func (s *Service) notificationFor(inv *domain.Invitation, team *teamdomain.Team) domain.Notification {
	if inv.Status == domain.StatusAdded {
		return domain.Notification{
			To:              inv.Email,
			Kind:            domain.TemplateAdded,
			TeamName:        team.Name,
			CallToActionURL: s.baseURL + "/teams/" + team.ID.String(),
		}
	}
	return domain.Notification{
		To:              inv.Email,
		Kind:            domain.TemplateInvited,
		TeamName:        team.Name,
		CallToActionURL: s.baseURL + "/signup?invite=" + url.QueryEscape(inv.Code) + "&email=" + url.QueryEscape(inv.Email),
	}
}

func (s *Service) loadTeam(ctx context.Context, teamID snowflake.ID) (*teamdomain.Team, error) {
	if teamID == 0 {
		return nil, teamdomain.ErrTeamNotFound
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, teamdomain.ErrTeamNotFound) {
			return nil, err
		}
		return nil, db.Unavailable(err)
	}
	return team, nil
}

func actorPtr(id snowflake.ID) *snowflake.ID {
	if id == 0 {
		return nil
	}
	return &id
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
