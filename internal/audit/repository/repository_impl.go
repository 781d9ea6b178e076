package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/teamroster/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Event) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Event, error) {
	var events []*domain.Event
	stmt := db.WithContext(ctx).Model(&domain.Event{}).
		Where("team_id = ?", filter.TeamID)

	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		stmt = stmt.Where("event_type = ?", eventType)
	}
	if entityType := strings.TrimSpace(filter.EntityType); entityType != "" {
		stmt = stmt.Where("entity_type = ?", entityType)
	}
	if filter.Before != nil {
		stmt = stmt.Where("created_at < ?", filter.Before.UTC())
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
