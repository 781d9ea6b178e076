package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Record describes one state change to be written alongside it.
type Record struct {
	EventType  string
	ActorID    *snowflake.ID
	TeamID     snowflake.ID
	EntityType string
	EntityID   string
	Action     string
	Payload    map[string]any
}

// Emitter appends an event using the caller's transaction handle so the event
// commits or rolls back together with the mutation it describes.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, rec Record) error
}

type ListEventsRequest struct {
	TeamID     snowflake.ID
	EventType  string
	EntityType string
	Before     *time.Time
	Limit      int
}

type Service interface {
	Emitter
	List(ctx context.Context, req ListEventsRequest) ([]Event, error)
}

type ListFilter struct {
	TeamID     snowflake.ID
	EventType  string
	EntityType string
	Before     *time.Time
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Event) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Event, error)
}

var (
	ErrInvalidEventType = errors.New("invalid_event_type")
	ErrInvalidTeam      = errors.New("invalid_team")
	ErrMissingTx        = errors.New("audit_requires_transaction")
)
