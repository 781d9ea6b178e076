package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRosterDeduplicates(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	resolved := snowflake.ID(2)
	failure := "bounce"

	members := []teamdomain.MemberView{
		{UserID: 2, Email: "bob@x.com", Role: teamdomain.RoleMember, JoinedAt: base.Add(time.Hour)},
		{UserID: 1, Email: "Owner@x.com", Role: teamdomain.RoleOwner, JoinedAt: base},
	}
	invites := []invitationdomain.Invitation{
		// stale view: resolved to a member but still failed
		{ID: 10, Email: "bob@x.com", Status: invitationdomain.StatusFailed, InvitedUserID: &resolved, CreatedAt: base},
		// added invitations never show as invite rows
		{ID: 11, Email: "carol@x.com", Status: invitationdomain.StatusAdded, CreatedAt: base},
		// email collides with a member
		{ID: 12, Email: "owner@x.com", Status: invitationdomain.StatusPending, CreatedAt: base},
		{ID: 13, Email: "dan@x.com", Status: invitationdomain.StatusPending, CreatedAt: base.Add(time.Minute)},
		{ID: 14, Email: "erin@x.com", Status: invitationdomain.StatusFailed, ErrorMessage: &failure, CreatedAt: base.Add(2 * time.Minute)},
	}

	roster := BuildRoster(members, invites)
	require.Len(t, roster, 4)

	assert.Equal(t, EntryMember, roster[0].Kind)
	assert.Equal(t, snowflake.ID(1), *roster[0].UserID)
	assert.Equal(t, invitationdomain.StatusAdded, roster[0].Status)
	assert.Equal(t, snowflake.ID(2), *roster[1].UserID)

	assert.Equal(t, EntryInvitation, roster[2].Kind)
	assert.Equal(t, "erin@x.com", roster[2].Email)
	assert.Equal(t, &failure, roster[2].ErrorMessage)
	assert.Equal(t, "dan@x.com", roster[3].Email)
	assert.Equal(t, invitationdomain.StatusPending, roster[3].Status)
}

func TestBuildRosterEmpty(t *testing.T) {
	assert.Empty(t, BuildRoster(nil, nil))
}
