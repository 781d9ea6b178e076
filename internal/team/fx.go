package team

import (
	"github.com/smallbiznis/teamroster/internal/team/repository"
	"github.com/smallbiznis/teamroster/internal/team/service"
	"go.uber.org/fx"
)

var Module = fx.Module("team.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
