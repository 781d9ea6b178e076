package email

import (
	"github.com/smallbiznis/teamroster/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
	fx.Provide(NewGateway),
)

// NewFromConfig selects the delivery backend. SMTP connection defaults come
// from internal/config.
func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	switch name := cfg.Email.Provider; name {
	case "noop", "none", "disabled":
		return NewNoOp(log), nil
	case "smtp", "":
		log.Named("email").Info("smtp delivery configured",
			zap.String("host", cfg.Email.SMTPHost),
			zap.Int("port", cfg.Email.SMTPPort),
		)
		return NewSMTP(Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.SMTPFrom,
		}), nil
	default:
		return nil, providerError(name)
	}
}
