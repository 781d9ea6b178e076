package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvitePolicy tunes invitation delivery and throttling. It is reloaded at
// runtime when invitations.yml changes.
type InvitePolicy struct {
	SendTimeout     time.Duration `mapstructure:"sendTimeout"`
	ResendCooldown  time.Duration `mapstructure:"resendCooldown"`
	TeamInviteRate  float64       `mapstructure:"teamInviteRate"`
	TeamInviteBurst int           `mapstructure:"teamInviteBurst"`
}

func DefaultInvitePolicy() InvitePolicy {
	return InvitePolicy{
		SendTimeout:     10 * time.Second,
		ResendCooldown:  60 * time.Second,
		TeamInviteRate:  1,
		TeamInviteBurst: 20,
	}
}

type InvitePolicyHolder struct {
	current atomic.Value // holds InvitePolicy
}

// NewStaticInvitePolicyHolder returns a holder that never reloads.
func NewStaticInvitePolicyHolder(policy InvitePolicy) *InvitePolicyHolder {
	holder := &InvitePolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func NewInvitePolicyHolder() (*InvitePolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("invitations")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/teamroster")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TEAMROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvitePolicy()
	v.SetDefault("invitations.sendTimeout", defaults.SendTimeout)
	v.SetDefault("invitations.resendCooldown", defaults.ResendCooldown)
	v.SetDefault("invitations.teamInviteRate", defaults.TeamInviteRate)
	v.SetDefault("invitations.teamInviteBurst", defaults.TeamInviteBurst)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var policy InvitePolicy
	if err := v.UnmarshalKey("invitations", &policy); err != nil {
		return nil, err
	}
	if err := validateInvitePolicy(policy); err != nil {
		return nil, err
	}

	holder := NewStaticInvitePolicyHolder(policy)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvitePolicy
		if err := v.UnmarshalKey("invitations", &updated); err != nil {
			log.Printf("[invite-policy] reload failed: %v", err)
			return
		}
		if err := validateInvitePolicy(updated); err != nil {
			log.Printf("[invite-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invite-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvitePolicyHolder) Get() InvitePolicy {
	if h == nil {
		return DefaultInvitePolicy()
	}
	return h.current.Load().(InvitePolicy)
}

func validateInvitePolicy(policy InvitePolicy) error {
	if policy.SendTimeout <= 0 {
		return errors.New("invitations.sendTimeout must be positive")
	}
	if policy.ResendCooldown < 0 {
		return errors.New("invitations.resendCooldown cannot be negative")
	}
	if policy.TeamInviteRate <= 0 || policy.TeamInviteBurst <= 0 {
		return errors.New("invitations.teamInviteRate and teamInviteBurst must be positive")
	}
	return nil
}
