package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/teamroster/internal/audit"
	auditdomain "github.com/smallbiznis/teamroster/internal/audit/domain"
	"github.com/smallbiznis/teamroster/internal/auth"
	"github.com/smallbiznis/teamroster/internal/authorization"
	"github.com/smallbiznis/teamroster/internal/config"
	"github.com/smallbiznis/teamroster/internal/invitation"
	invitationdomain "github.com/smallbiznis/teamroster/internal/invitation/domain"
	"github.com/smallbiznis/teamroster/internal/membership"
	membershipdomain "github.com/smallbiznis/teamroster/internal/membership/domain"
	"github.com/smallbiznis/teamroster/internal/observability"
	obsmiddleware "github.com/smallbiznis/teamroster/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/teamroster/internal/observability/metrics"
	obstracing "github.com/smallbiznis/teamroster/internal/observability/tracing"
	"github.com/smallbiznis/teamroster/internal/providers"
	"github.com/smallbiznis/teamroster/internal/ratelimit"
	"github.com/smallbiznis/teamroster/internal/signup"
	signupdomain "github.com/smallbiznis/teamroster/internal/signup/domain"
	"github.com/smallbiznis/teamroster/internal/team"
	teamdomain "github.com/smallbiznis/teamroster/internal/team/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	team.Module,
	providers.Module,
	invitation.Module,
	membership.Module,
	signup.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	log           *zap.Logger
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	teamSvc       teamdomain.Service
	invitationSvc invitationdomain.Service
	membershipSvc membershipdomain.Service
	signupSvc     signupdomain.Service
	inviteLimiter *ratelimit.InviteLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Log           *zap.Logger
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	TeamSvc       teamdomain.Service
	InvitationSvc invitationdomain.Service
	MembershipSvc membershipdomain.Service
	SignupSvc     signupdomain.Service
	InviteLimiter *ratelimit.InviteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		log:           p.Log.Named("http.server"),
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		teamSvc:       p.TeamSvc,
		invitationSvc: p.InvitationSvc,
		membershipSvc: p.MembershipSvc,
		signupSvc:     p.SignupSvc,
		inviteLimiter: p.InviteLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()
	svc.log.Debug("routes registered",
		zap.Int("routes", len(svc.engine.Routes())),
		zap.Bool("invite_rate_limit", svc.inviteLimiter.Enabled()),
	)

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	api.POST("/signup", s.Signup)

	authed := api.Group("", s.ActorRequired())
	authed.POST("/teams", s.CreateTeam)

	teams := authed.Group("/teams/:team_id", s.TeamContext())
	{
		// -------- Members --------
		teams.GET("/members", s.authorizeTeamAction(authorization.ObjectMember, authorization.ActionMemberView), s.GetTeamMembers)
		teams.DELETE("/members/:user_id", s.authorizeTeamAction(authorization.ObjectMember, authorization.ActionMemberRemove), s.RemoveMember)

		// -------- Invitations --------
		teams.GET("/invitations", s.authorizeTeamAction(authorization.ObjectInvitation, authorization.ActionInvitationView), s.ListInvitations)
		teams.POST("/invitations",
			s.authorizeTeamAction(authorization.ObjectInvitation, authorization.ActionInvitationCreate),
			s.InviteRateLimit(),
			s.CreateInvitation,
		)
		teams.POST("/invitations/:invitation_id/resend", s.authorizeTeamAction(authorization.ObjectInvitation, authorization.ActionInvitationResend), s.ResendInvitation)

		// -------- Events --------
		teams.GET("/events", s.authorizeTeamAction(authorization.ObjectEvent, authorization.ActionEventView), s.ListEvents)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
