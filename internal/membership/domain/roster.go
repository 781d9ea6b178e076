package domain

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
)

// BuildRoster merges memberships with outstanding invitations. Invitations
// already in status added are dropped, as is any invitation whose resolved
// user or email matches a membership. Members come first ordered by join
// time, then invitations newest first.
func BuildRoster(members []teamdomain.MemberView, invites []invitationdomain.Invitation) []RosterEntry {
	memberIDs := make(map[snowflake.ID]struct{}, len(members))
	memberEmails := make(map[string]struct{}, len(members))

	sortedMembers := append([]teamdomain.MemberView(nil), members...)
	sort.SliceStable(sortedMembers, func(i, j int) bool {
		if !sortedMembers[i].JoinedAt.Equal(sortedMembers[j].JoinedAt) {
			return sortedMembers[i].JoinedAt.Before(sortedMembers[j].JoinedAt)
		}
		return sortedMembers[i].UserID < sortedMembers[j].UserID
	})

	entries := make([]RosterEntry, 0, len(members)+len(invites))
	for _, m := range sortedMembers {
		memberIDs[m.UserID] = struct{}{}
		memberEmails[strings.ToLower(m.Email)] = struct{}{}

		userID := m.UserID
		entries = append(entries, RosterEntry{
			Kind:        EntryMember,
			UserID:      &userID,
			Email:       m.Email,
			DisplayName: m.DisplayName,
			Role:        m.Role,
			Status:      invitationdomain.StatusAdded,
			Since:       m.JoinedAt,
		})
	}

	outstanding := make([]invitationdomain.Invitation, 0, len(invites))
	for _, inv := range invites {
		if inv.Status == invitationdomain.StatusAdded {
			continue
		}
		if inv.InvitedUserID != nil {
			if _, ok := memberIDs[*inv.InvitedUserID]; ok {
				continue
			}
		}
		if _, ok := memberEmails[strings.ToLower(inv.Email)]; ok {
			continue
		}
		outstanding = append(outstanding, inv)
	}
	sort.SliceStable(outstanding, func(i, j int) bool {
		if !outstanding[i].CreatedAt.Equal(outstanding[j].CreatedAt) {
			return outstanding[i].CreatedAt.After(outstanding[j].CreatedAt)
		}
		return outstanding[i].ID > outstanding[j].ID
	})

	for _, inv := range outstanding {
		invitationID := inv.ID
		entries = append(entries, RosterEntry{
			Kind:         EntryInvitation,
			UserID:       inv.InvitedUserID,
			InvitationID: &invitationID,
			Email:        inv.Email,
			Status:       inv.Status,
			ErrorMessage: inv.ErrorMessage,
			Since:        inv.CreatedAt,
			LastSentAt:   inv.LastSentAt,
		})
	}
	return entries
}
