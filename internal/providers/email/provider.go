package email

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrUnknownProvider = errors.New("unknown_email_provider")

// Provider delivers rendered HTML mail. SendTemplate renders one of the
// embedded templates by name (without the .html suffix) before sending.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error
}

// NoOpProvider renders but never delivers. Template errors still surface,
// so a misnamed template fails the same way it would against SMTP.
type NoOpProvider struct {
	log *zap.Logger
}

func NewNoOp(log *zap.Logger) *NoOpProvider {
	return &NoOpProvider{log: log.Named("email.noop")}
}

func (p *NoOpProvider) Send(_ context.Context, to []string, subject string, _ string) error {
	p.log.Debug("email dropped", zap.Int("recipients", len(to)), zap.String("subject", subject))
	return nil
}

func (p *NoOpProvider) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	body, err := render(templateName, data)
	if err != nil {
		return err
	}
	p.log.Debug("templated email dropped",
		zap.String("template", templateName),
		zap.Int("body_bytes", len(body)),
	)
	return p.Send(ctx, to, subjectOf(data), body)
}

func subjectOf(data interface{}) string {
	if dataMap, ok := data.(map[string]interface{}); ok {
		if subj, ok := dataMap["subject"].(string); ok && subj != "" {
			return subj
		}
	}
	return "Notification from teamroster"
}

func providerError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}
