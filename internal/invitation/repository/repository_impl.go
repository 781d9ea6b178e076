package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamroster/internal/invitation/domain"
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

func (r *repository) Create(ctx context.Context, inv *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *repository) GetByID(ctx context.Context, teamID, id snowflake.ID) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).
		Where("id = ? AND team_id = ?", id, teamID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) FindByTeamEmail(ctx context.Context, teamID snowflake.ID, email string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND email = ?", teamID, email).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) ListByTeam(ctx context.Context, teamID snowflake.ID) ([]domain.Invitation, error) {
	var items []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListPendingByEmail(ctx context.Context, email string) ([]domain.Invitation, error) {
	var items []domain.Invitation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ? AND status = ?", email, domain.StatusPending).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}
