package email

import (
	"context"
	"fmt"

	"github.com/smallbiznis/teamroster/internal/config"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"go.uber.org/zap"
)

// Gateway adapts a Provider to the invitation mailer port.
type Gateway struct {
	provider Provider
	policy   *config.InvitePolicyHolder
	log      *zap.Logger
}

func NewGateway(provider Provider, policy *config.InvitePolicyHolder, log *zap.Logger) invitationdomain.Mailer {
	return &Gateway{
		provider: provider,
		policy:   policy,
		log:      log.Named("email.gateway"),
	}
}

// Send renders the template for n.Kind and hands it to the provider. A
// timeout is reported as a delivery failure like any other error.
func (g *Gateway) Send(ctx context.Context, n invitationdomain.Notification) error {
	subject, err := subjectFor(n)
	if err != nil {
		return err
	}

	if timeout := g.policy.Get().SendTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	data := map[string]interface{}{
		"subject":         subject,
		"TeamName":        n.TeamName,
		"Email":           n.To,
		"CallToActionURL": n.CallToActionURL,
	}
	if err := g.provider.SendTemplate(ctx, []string{n.To}, string(n.Kind), data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mail delivery timed out: %w", ctxErr)
		}
		return err
	}
	return nil
}

func subjectFor(n invitationdomain.Notification) (string, error) {
	switch n.Kind {
	case invitationdomain.TemplateInvited:
		return fmt.Sprintf("You're invited to join %s", n.TeamName), nil
	case invitationdomain.TemplateAdded:
		return fmt.Sprintf("You've been added to %s", n.TeamName), nil
	default:
		return "", fmt.Errorf("unknown email template %q", n.Kind)
	}
}
