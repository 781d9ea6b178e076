package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	"github.com/smallbiznis/teamroster/internal/clock"
	obscontext "github.com/smallbiznis/teamroster/internal/observability/context"
	"github.com/smallbiznis/teamroster/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Emit(ctx context.Context, tx *gorm.DB, rec auditdomain.Record) error {
	if tx == nil {
		return auditdomain.ErrMissingTx
	}
	eventType := strings.TrimSpace(rec.EventType)
	if eventType == "" {
		return auditdomain.ErrInvalidEventType
	}
	if rec.TeamID == 0 {
		return auditdomain.ErrInvalidTeam
	}

	payload := map[string]any{}
	for key, value := range rec.Payload {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	actorType, actorID := s.resolveActor(ctx, rec.ActorID)
	teamID := rec.TeamID

	action := strings.TrimSpace(rec.Action)
	if action == "" {
		action = eventType
	}

	entry := auditdomain.Event{
		ID:            s.genID.Generate(),
		EventType:     eventType,
		ActorType:     actorType,
		ActorID:       actorID,
		TeamID:        &teamID,
		EntityType:    strings.TrimSpace(rec.EntityType),
		EntityID:      strings.TrimSpace(rec.EntityID),
		Action:        action,
		Payload:       datatypes.JSONMap(payload),
		SchemaVersion: auditdomain.SchemaVersion,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		s.log.Warn("failed to write audit event", zap.String("event_type", eventType), zap.Error(err))
		return db.Unavailable(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListEventsRequest) ([]auditdomain.Event, error) {
	if req.TeamID == 0 {
		return nil, auditdomain.ErrInvalidTeam
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		TeamID:     req.TeamID,
		EventType:  req.EventType,
		EntityType: req.EntityType,
		Before:     req.Before,
		Limit:      limit,
	})
	if err != nil {
		return nil, db.Unavailable(err)
	}

	events := make([]auditdomain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}
	return events, nil
}

func (s *Service) resolveActor(ctx context.Context, actorID *snowflake.ID) (string, *snowflake.ID) {
	if actorID != nil && *actorID != 0 {
		id := *actorID
		return string(auditdomain.ActorTypeUser), &id
	}

	ctxType, ctxID := obscontext.ActorFromContext(ctx)
	if ctxType == string(auditdomain.ActorTypeUser) && ctxID != "" {
		if parsed, err := snowflake.ParseString(ctxID); err == nil && parsed != 0 {
			return string(auditdomain.ActorTypeUser), &parsed
		}
	}
	return string(auditdomain.ActorTypeSystem), nil
}
