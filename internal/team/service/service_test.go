package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	auditrepo "github.com/smallbiznis/teamroster/internal/audit/repository"
	auditservice "github.com/smallbiznis/teamroster/internal/audit/service"
	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/internal/team/domain"
	"github.com/smallbiznis/teamroster/internal/team/repository"
	"github.com/smallbiznis/teamroster/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Team{}, &domain.Membership{}, &auditdomain.Event{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	audit := auditservice.NewService(auditservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: auditrepo.Provide(),
	})

	return NewService(Params{
		DB:    conn,
		Log:   log,
		Repo:  repository.NewRepository(conn),
		Audit: audit,
		GenID: node,
		Clock: fake,
	}), conn
}

func TestCreateTeamAddsOwnerAndEvent(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, 7, domain.CreateTeamRequest{Name: "  Platform Team "})
	require.NoError(t, err)
	assert.Equal(t, "Platform Team", team.Name)
	assert.Equal(t, "platform-team", team.Slug)

	var members []domain.Membership
	require.NoError(t, conn.Where("team_id = ?", team.ID).Find(&members).Error)
	require.Len(t, members, 1)
	assert.Equal(t, snowflake.ID(7), members[0].UserID)
	assert.Equal(t, domain.RoleOwner, members[0].Role)

	var events []auditdomain.Event
	require.NoError(t, conn.Where("team_id = ?", team.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, auditdomain.EventTeamCreated, events[0].EventType)

	got, err := svc.Get(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.ID)
}

func TestCreateTeamSlugCollision(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, domain.CreateTeamRequest{Name: "Ops"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, 2, domain.CreateTeamRequest{Name: "ops"})
	require.NoError(t, err)

	assert.Equal(t, "ops", first.Slug)
	assert.Equal(t, "ops-"+second.ID.Base36(), second.Slug)
}

func TestCreateTeamValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, domain.CreateTeamRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, 0, domain.CreateTeamRequest{Name: "Ops"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestGetTeamNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
