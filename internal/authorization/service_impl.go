package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectMember     = "member"
	ObjectInvitation = "invitation"
	ObjectEvent      = "event"
)

const (
	ActionMemberView   = "member.view"
	ActionMemberRemove = "member.remove"

	ActionInvitationView   = "invitation.view"
	ActionInvitationCreate = "invitation.create"
	ActionInvitationResend = "invitation.resend"

	ActionEventView = "event.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(conn *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(conn)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actorID snowflake.ID, teamID snowflake.ID, object string, action string) error {
	if actorID == 0 {
		return ErrInvalidActor
	}
	if teamID == 0 {
		return ErrInvalidTeam
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := "user:" + actorID.String()
	domain := fmt.Sprintf("team:%s", teamID.String())

	role, err := s.roleForUser(ctx, teamID, actorID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			s.dropGrouping(subject, domain)
			s.denied(subject, domain, object, action, "not_a_member")
		}
		return err
	}

	if err := s.ensureGrouping(subject, "role:"+role, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.denied(subject, domain, object, action, "policy")
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) denied(subject, domain, object, action, reason string) {
	s.log.Info("authorization denied",
		zap.String("subject", subject),
		zap.String("domain", domain),
		zap.String("object", object),
		zap.String("action", action),
		zap.String("reason", reason),
	)
}

func (s *ServiceImpl) roleForUser(ctx context.Context, teamID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM team_members
		 WHERE team_id = ? AND user_id = ?
		 LIMIT 1`,
		teamID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", db.Unavailable(err)
	}

	role := strings.ToLower(strings.TrimSpace(row.Role))
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

// ensureGrouping keeps exactly one role link per subject and team.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(toParams(rule)...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) dropGrouping(subject string, domain string) {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return
	}
	for _, rule := range existing {
		if _, err := s.enforcer.RemoveGroupingPolicy(toParams(rule)...); err != nil {
			s.log.Warn("failed to drop stale role link", zap.String("subject", subject), zap.Error(err))
		}
	}
}

func toParams(rule []string) []interface{} {
	params := make([]interface{}, 0, len(rule))
	for _, value := range rule {
		params = append(params, value)
	}
	return params
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Owners manage everything, including the audit trail.
		{"role:owner", ObjectMember, ActionMemberView},
		{"role:owner", ObjectMember, ActionMemberRemove},
		{"role:owner", ObjectInvitation, ActionInvitationView},
		{"role:owner", ObjectInvitation, ActionInvitationCreate},
		{"role:owner", ObjectInvitation, ActionInvitationResend},
		{"role:owner", ObjectEvent, ActionEventView},

		{"role:member", ObjectMember, ActionMemberView},
		{"role:member", ObjectMember, ActionMemberRemove},
		{"role:member", ObjectInvitation, ActionInvitationView},
		{"role:member", ObjectInvitation, ActionInvitationCreate},
		{"role:member", ObjectInvitation, ActionInvitationResend},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
