package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	auditrepo "github.com/smallbiznis/teamroster/internal/audit/repository"
	auditservice "github.com/smallbiznis/teamroster/internal/audit/service"
	authdomain "github.com/smallbiznis/teamroster/internal/auth/domain"
	authrepo "github.com/smallbiznis/teamroster/internal/auth/repository"
	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/internal/config"
	"github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/invitation/mocks"
	"github.com/smallbiznis/teamroster/internal/invitation/repository"
	"github.com/smallbiznis/teamroster/internal/migration"
	"github.com/smallbiznis/teamroster/internal/observability/metrics"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
	teamrepo "github.com/smallbiznis/teamroster/internal/team/repository"
	"github.com/smallbiznis/teamroster/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type harness struct {
	svc    domain.Service
	db     *gorm.DB
	mailer *mocks.MockMailer
	clock  *clock.FakeClock
	node   *snowflake.Node
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(migration.Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	mailer := mocks.NewMockMailer(ctrl)
	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC))

	audit := auditservice.NewService(auditservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: auditrepo.Provide(),
	})

	svc := NewService(Params{
		DB:      conn,
		Log:     log,
		Config:  config.Config{AppBaseURL: "https://app.example.com"},
		Repo:    repository.NewRepository(conn),
		Teams:   teamrepo.NewRepository(conn),
		Users:   authrepo.New(conn),
		Audit:   audit,
		Mailer:  mailer,
		GenID:   node,
		Clock:   fake,
		Metrics: metrics.NewNoop(),
	})

	return &harness{svc: svc, db: conn, mailer: mailer, clock: fake, node: node}
}

func (h *harness) createUser(t *testing.T, email string) authdomain.User {
	t.Helper()
	user := authdomain.User{
		ID:          h.node.Generate(),
		Email:       email,
		DisplayName: strings.Split(email, "@")[0],
		CreatedAt:   h.clock.Now(),
		UpdatedAt:   h.clock.Now(),
	}
	require.NoError(t, h.db.Create(&user).Error)
	return user
}

func (h *harness) createTeam(t *testing.T, name string, owner snowflake.ID) teamdomain.Team {
	t.Helper()
	team := teamdomain.Team{
		ID:        h.node.Generate(),
		Name:      name,
		Slug:      strings.ToLower(name),
		CreatedAt: h.clock.Now(),
		UpdatedAt: h.clock.Now(),
	}
	require.NoError(t, h.db.Create(&team).Error)
	require.NoError(t, h.db.Create(&teamdomain.Membership{
		TeamID: team.ID, UserID: owner, Role: teamdomain.RoleOwner, CreatedAt: h.clock.Now(),
	}).Error)
	return team
}

func (h *harness) eventTypes(t *testing.T, teamID snowflake.ID) []string {
	t.Helper()
	var events []auditdomain.Event
	require.NoError(t, h.db.Where("team_id = ?", teamID).Order("created_at asc, id asc").Find(&events).Error)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	return types
}

func (h *harness) countMembers(t *testing.T, teamID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Model(&teamdomain.Membership{}).Where("team_id = ?", teamID).Count(&count).Error)
	return count
}

func (h *harness) expectSend(kind domain.TemplateKind, result error) *gomock.Call {
	return h.mailer.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			if n.Kind != kind {
				return errors.New("unexpected template " + string(n.Kind))
			}
			return result
		})
}

func TestCreateNewAccountInvitation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	var sent domain.Notification
	h.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			sent = n
			return nil
		})

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: " New.Person@Example.com ", InviterID: owner.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, inv.Status)
	assert.Equal(t, "new.person@example.com", inv.Email)
	assert.Nil(t, inv.InvitedUserID)
	assert.Nil(t, inv.ErrorMessage)
	require.NotNil(t, inv.LastSentAt)

	assert.Equal(t, domain.TemplateInvited, sent.Kind)
	assert.Equal(t, "Core", sent.TeamName)
	assert.Equal(t, "new.person@example.com", sent.To)
	assert.Equal(t, "https://app.example.com/signup?invite="+inv.Code+"&email=new.person%40example.com", sent.CallToActionURL)

	assert.Equal(t, []string{auditdomain.EventInviteCreated}, h.eventTypes(t, team.ID))

	var stored domain.Invitation
	require.NoError(t, h.db.First(&stored, "id = ?", inv.ID).Error)
	require.NotNil(t, stored.LastSentAt)
}

func TestCreateIsIdempotentForNewAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	h.expectSend(domain.TemplateInvited, nil).Times(1)

	first, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)
	second, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "A@X.com", InviterID: owner.ID})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, h.db.Model(&domain.Invitation{}).Where("team_id = ?", team.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, h.eventTypes(t, team.ID), 1)
}

func TestCreateExistingAccountAddsMember(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	invitee := h.createUser(t, "bob@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	var sent domain.Notification
	h.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			sent = n
			return nil
		})

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "Bob@Example.com", InviterID: owner.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAdded, inv.Status)
	require.NotNil(t, inv.InvitedUserID)
	assert.Equal(t, invitee.ID, *inv.InvitedUserID)
	assert.Equal(t, domain.TemplateAdded, sent.Kind)
	assert.Equal(t, "https://app.example.com/teams/"+team.ID.String(), sent.CallToActionURL)

	var member teamdomain.Membership
	require.NoError(t, h.db.First(&member, "team_id = ? AND user_id = ?", team.ID, invitee.ID).Error)
	assert.Equal(t, teamdomain.RoleMember, member.Role)
	assert.Equal(t, []string{auditdomain.EventMemberAdded}, h.eventTypes(t, team.ID))
}

func TestCreateAlreadyMemberPerformsNoWrites(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	before := h.eventTypes(t, team.ID)

	_, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "owner@example.com", InviterID: owner.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)

	assert.Equal(t, before, h.eventTypes(t, team.ID))
	var count int64
	require.NoError(t, h.db.Model(&domain.Invitation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	_, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: 999, Email: "a@x.com", InviterID: owner.ID})
	assert.ErrorIs(t, err, teamdomain.ErrTeamNotFound)

	_, err = h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "nope", InviterID: owner.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInviter)
}

func TestMailFailureThenResend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	gomock.InOrder(
		h.expectSend(domain.TemplateInvited, errors.New("dial tcp: connection refused")),
		h.expectSend(domain.TemplateInvited, nil),
	)

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, inv.Status)
	require.NotNil(t, inv.ErrorMessage)
	assert.Contains(t, *inv.ErrorMessage, "connection refused")

	var stored domain.Invitation
	require.NoError(t, h.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)

	h.clock.Advance(time.Minute)
	resent, err := h.svc.Resend(ctx, domain.ResendRequest{TeamID: team.ID, InvitationID: inv.ID, ActorID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resent.Status)
	assert.Nil(t, resent.ErrorMessage)
	require.NotNil(t, resent.LastSentAt)
	assert.Equal(t, h.clock.Now(), resent.LastSentAt.UTC())

	require.NoError(t, h.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Nil(t, stored.ErrorMessage)

	assert.Equal(t, []string{
		auditdomain.EventInviteCreated,
		auditdomain.EventInviteEmailFailed,
		auditdomain.EventInviteResent,
	}, h.eventTypes(t, team.ID))

	var failed auditdomain.Event
	require.NoError(t, h.db.First(&failed, "event_type = ?", auditdomain.EventInviteEmailFailed).Error)
	require.NotNil(t, failed.ActorID)
	assert.Equal(t, owner.ID, *failed.ActorID)
}

func TestResendFailureRecordsResender(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	second := h.createUser(t, "second@example.com")
	team := h.createTeam(t, "Core", owner.ID)
	require.NoError(t, h.db.Create(&teamdomain.Membership{TeamID: team.ID, UserID: second.ID, Role: teamdomain.RoleMember, CreatedAt: h.clock.Now()}).Error)

	gomock.InOrder(
		h.expectSend(domain.TemplateInvited, nil),
		h.expectSend(domain.TemplateInvited, errors.New("mailbox unavailable")),
	)

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)

	resent, err := h.svc.Resend(ctx, domain.ResendRequest{TeamID: team.ID, InvitationID: inv.ID, ActorID: second.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, resent.Status)

	var failed auditdomain.Event
	require.NoError(t, h.db.First(&failed, "event_type = ?", auditdomain.EventInviteEmailFailed).Error)
	require.NotNil(t, failed.ActorID)
	assert.Equal(t, second.ID, *failed.ActorID)
}

func TestResendAddedUsesAddedTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	h.createUser(t, "bob@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	h.expectSend(domain.TemplateAdded, nil).Times(2)

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "bob@example.com", InviterID: owner.ID})
	require.NoError(t, err)

	resent, err := h.svc.Resend(ctx, domain.ResendRequest{TeamID: team.ID, InvitationID: inv.ID, ActorID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAdded, resent.Status)
}

func TestResendNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)
	other := h.createTeam(t, "Other", owner.ID)

	h.expectSend(domain.TemplateInvited, nil)
	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)

	_, err = h.svc.Resend(ctx, domain.ResendRequest{TeamID: other.ID, InvitationID: inv.ID, ActorID: owner.ID})
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)

	_, err = h.svc.Resend(ctx, domain.ResendRequest{TeamID: team.ID, InvitationID: 12345, ActorID: owner.ID})
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
}

func TestFailureReconciliationStoreErrorPropagates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	h.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.Notification) error {
			require.NoError(t, h.db.Migrator().DropTable(&auditdomain.Event{}))
			return errors.New("timeout")
		})

	_, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	assert.ErrorIs(t, err, db.ErrStoreUnavailable)

	var stored domain.Invitation
	require.NoError(t, h.db.First(&stored, "team_id = ?", team.ID).Error)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestCallerCancellationStillReconciles(t *testing.T) {
	h := newHarness(t)
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(c context.Context, _ domain.Notification) error {
			cancel()
			assert.NoError(t, c.Err())
			return context.Canceled
		})

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, inv.Status)

	var stored domain.Invitation
	require.NoError(t, h.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Contains(t, *stored.ErrorMessage, "canceled")

	assert.Equal(t, []string{
		auditdomain.EventInviteCreated,
		auditdomain.EventInviteEmailFailed,
	}, h.eventTypes(t, team.ID))
}

func TestExistingAccountFailureThenResendReturnsToAdded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	invitee := h.createUser(t, "bob@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	gomock.InOrder(
		h.expectSend(domain.TemplateAdded, errors.New("mailbox unavailable")),
		h.expectSend(domain.TemplateInvited, nil),
	)

	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "bob@example.com", InviterID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, inv.Status)
	require.NotNil(t, inv.ErrorMessage)

	resent, err := h.svc.Resend(ctx, domain.ResendRequest{TeamID: team.ID, InvitationID: inv.ID, ActorID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAdded, resent.Status)
	assert.Nil(t, resent.ErrorMessage)

	var stored domain.Invitation
	require.NoError(t, h.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, domain.StatusAdded, stored.Status)
	assert.Nil(t, stored.ErrorMessage)
	require.NotNil(t, stored.InvitedUserID)
	assert.Equal(t, invitee.ID, *stored.InvitedUserID)

	var member teamdomain.Membership
	require.NoError(t, h.db.First(&member, "team_id = ? AND user_id = ?", team.ID, invitee.ID).Error)
	assert.Equal(t, int64(2), h.countMembers(t, team.ID))

	assert.Equal(t, []string{
		auditdomain.EventMemberAdded,
		auditdomain.EventInviteEmailFailed,
		auditdomain.EventInviteResent,
	}, h.eventTypes(t, team.ID))
}

func TestAutoResolveAcrossTeams(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	t1 := h.createTeam(t, "One", owner.ID)
	t2 := h.createTeam(t, "Two", owner.ID)

	h.expectSend(domain.TemplateInvited, nil).Times(2)
	i1, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: t1.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)
	i2, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: t2.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)

	newUser := h.createUser(t, "a@x.com")

	var resolved []domain.Invitation
	require.NoError(t, h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		resolved, err = h.svc.AutoResolveOnSignup(ctx, tx, newUser.ID, "A@x.com")
		return err
	}))
	require.Len(t, resolved, 2)

	for _, id := range []snowflake.ID{i1.ID, i2.ID} {
		var stored domain.Invitation
		require.NoError(t, h.db.First(&stored, "id = ?", id).Error)
		assert.Equal(t, domain.StatusAdded, stored.Status)
		require.NotNil(t, stored.InvitedUserID)
		assert.Equal(t, newUser.ID, *stored.InvitedUserID)
	}

	assert.EqualValues(t, 2, h.countMembers(t, t1.ID))
	assert.EqualValues(t, 2, h.countMembers(t, t2.ID))
	assert.Contains(t, h.eventTypes(t, t1.ID), auditdomain.EventInviteAutoResolved)
	assert.Contains(t, h.eventTypes(t, t2.ID), auditdomain.EventInviteAutoResolved)
}

func TestAutoResolveRollsBackWithCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "One", owner.ID)

	h.expectSend(domain.TemplateInvited, nil)
	inv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)

	newUser := h.createUser(t, "a@x.com")
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if _, err := h.svc.AutoResolveOnSignup(ctx, tx, newUser.ID, "a@x.com"); err != nil {
			return err
		}
		return errors.New("registration aborted")
	})
	require.Error(t, err)

	var stored domain.Invitation
	require.NoError(t, h.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.EqualValues(t, 1, h.countMembers(t, team.ID))
}

func TestAutoResolveIgnoresFailedAndExistingMembership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	failedTeam := h.createTeam(t, "Failed", owner.ID)
	joinedTeam := h.createTeam(t, "Joined", owner.ID)

	gomock.InOrder(
		h.expectSend(domain.TemplateInvited, errors.New("bounce")),
		h.expectSend(domain.TemplateInvited, nil),
	)
	_, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: failedTeam.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)
	joinedInv, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: joinedTeam.ID, Email: "a@x.com", InviterID: owner.ID})
	require.NoError(t, err)

	newUser := h.createUser(t, "a@x.com")
	require.NoError(t, h.db.Create(&teamdomain.Membership{TeamID: joinedTeam.ID, UserID: newUser.ID, Role: teamdomain.RoleMember, CreatedAt: h.clock.Now()}).Error)

	var resolved []domain.Invitation
	require.NoError(t, h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		resolved, err = h.svc.AutoResolveOnSignup(ctx, tx, newUser.ID, "a@x.com")
		return err
	}))
	require.Len(t, resolved, 1)
	assert.Equal(t, joinedInv.ID, resolved[0].ID)
	assert.EqualValues(t, 2, h.countMembers(t, joinedTeam.ID))
	assert.EqualValues(t, 1, h.countMembers(t, failedTeam.ID))
}

func TestAutoResolveRequiresTransaction(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.AutoResolveOnSignup(context.Background(), nil, 1, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrTransactionRequired)
}

func TestReinviteRemovedAccountReusesRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	bob := h.createUser(t, "bob@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	h.expectSend(domain.TemplateAdded, nil).Times(2)

	first, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "bob@example.com", InviterID: owner.ID})
	require.NoError(t, err)

	require.NoError(t, h.db.Where("team_id = ? AND user_id = ?", team.ID, bob.ID).Delete(&teamdomain.Membership{}).Error)

	second, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: "bob@example.com", InviterID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusAdded, second.Status)
	assert.EqualValues(t, 2, h.countMembers(t, team.ID))
}

func TestListNewestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	team := h.createTeam(t, "Core", owner.ID)

	h.expectSend(domain.TemplateInvited, nil).Times(3)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := h.svc.Create(ctx, domain.CreateRequest{TeamID: team.ID, Email: email, InviterID: owner.ID})
		require.NoError(t, err)
		h.clock.Advance(time.Second)
	}

	items, err := h.svc.List(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c@x.com", items[0].Email)
	assert.Equal(t, "a@x.com", items[2].Email)

	_, err = h.svc.List(ctx, 4040)
	assert.ErrorIs(t, err, teamdomain.ErrTeamNotFound)
}
