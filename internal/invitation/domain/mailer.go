package domain

import "context"

//go:generate mockgen -source=mailer.go -destination=../mocks/mock_mailer.go -package=mocks

type TemplateKind string

const (
	TemplateInvited TemplateKind = "invited"
	TemplateAdded   TemplateKind = "added"
)

type Notification struct {
	To              string
	Kind            TemplateKind
	TeamName        string
	CallToActionURL string
}

// Mailer delivers a notification. A returned error is a delivery failure and
// its message is stored on the invitation.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}
