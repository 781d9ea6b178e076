package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamroster/internal/team/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTeam(ctx context.Context, team domain.Team) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO teams (id, name, slug, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		team.ID,
		team.Name,
		team.Slug,
		team.CreatedAt,
		team.UpdatedAt,
	).Error
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Team{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) LockTeam(ctx context.Context, id snowflake.ID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) AddMember(ctx context.Context, member domain.Membership) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO team_members (team_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?)`,
		member.TeamID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	).Error
}

func (r *repository) AddMemberIfAbsent(ctx context.Context, member domain.Membership) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&member)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) GetMember(ctx context.Context, teamID, userID snowflake.ID) (*domain.Membership, error) {
	var member domain.Membership
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) CountMembers(ctx context.Context, teamID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Membership{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func (r *repository) DeleteMember(ctx context.Context, teamID, userID snowflake.ID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&domain.Membership{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListMembers(ctx context.Context, teamID snowflake.ID) ([]domain.MemberView, error) {
	var items []domain.MemberView
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.user_id, u.email, u.display_name, m.role, m.created_at AS joined_at
		 FROM team_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.team_id = ?
		 ORDER BY m.created_at ASC, m.user_id ASC`,
		teamID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
