package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/colocmatching/internal/config"
	"github.com/simp-lee/colocmatching/internal/domain"
	"github.com/simp-lee/colocmatching/internal/event"
	"github.com/simp-lee/colocmatching/internal/mail"
	"github.com/simp-lee/colocmatching/internal/metrics"
	"github.com/simp-lee/colocmatching/internal/module/announcement"
	"github.com/simp-lee/colocmatching/internal/module/auth"
	"github.com/simp-lee/colocmatching/internal/module/group"
	"github.com/simp-lee/colocmatching/internal/module/invitation"
	"github.com/simp-lee/colocmatching/internal/module/user"
	"github.com/simp-lee/colocmatching/internal/module/visit"
	"github.com/simp-lee/colocmatching/internal/pkg"
	"github.com/simp-lee/colocmatching/internal/security"
)

// components holds everything built on top of the database.
type components struct {
	modules []Module
	auth    *auth.Service
	metrics *metrics.Metrics
	files   *pkg.FileStore
	closers []func() error
}

// build wires the domain modules: managers first, in dependency order, then
// their handlers. Modules registered later hook into the deletion of the
// resources they depend on.
func build(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger) (*components, error) {
	c := &components{}
	dispatcher := event.NewDispatcher(log)

	if cfg.Metrics.Enabled {
		c.metrics = metrics.New(cfg.Metrics.Namespace)
	}

	if cfg.Events.Redis.Enabled {
		sink, err := event.NewRedisSink(ctx, cfg.Events.Redis.URL, cfg.Events.Redis.Channel)
		if err != nil {
			return nil, fmt.Errorf("setup redis event sink: %w", err)
		}
		dispatcher.SubscribeAll(sink.Handle)
		c.closers = append(c.closers, sink.Close)
		log.Info("redis event sink enabled", slog.String("channel", cfg.Events.Redis.Channel))
	}

	var sender mail.Sender
	if cfg.Mail.Enabled {
		sender = mail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
	}
	var mailCounter mail.Counter
	var answers invitation.Recorder
	var visitCounter visit.Recorder
	if c.metrics != nil {
		mailCounter, answers, visitCounter = c.metrics, c.metrics, c.metrics
	}
	mailer, err := mail.NewManager(mail.Config{
		Enabled: cfg.Mail.Enabled,
		From:    cfg.Mail.From,
		BaseURL: cfg.Mail.BaseURL,
	}, sender, log, mailCounter)
	if err != nil {
		return nil, fmt.Errorf("setup mail: %w", err)
	}

	files, err := pkg.NewFileStore(cfg.Upload.Dir, int64(cfg.Upload.MaxSizeMB)<<20)
	if err != nil {
		return nil, fmt.Errorf("setup upload dir: %w", err)
	}
	c.files = files

	users := user.NewManager(db, user.NewRepository(db), dispatcher, log, user.Config{
		ConfirmTokenTTL:  config.Duration(cfg.Auth.ConfirmTokenTTL, 48*time.Hour),
		RequireConfirmed: cfg.Auth.RequireConfirmed,
	})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.Duration(cfg.Auth.TokenExpiry, 24*time.Hour))
	c.auth = auth.NewService(tokens, users, users, config.Duration(cfg.Auth.ActorCacheTTL, time.Minute), log)
	users.OnChange(c.auth.Evict)

	announcements := announcement.NewManager(db, announcement.NewRepository(db), users, files, log)
	groups := group.NewManager(db, group.NewRepository(db), users, files, log)
	invitations := invitation.NewManager(db, invitation.NewRepository(db), users, announcements, groups, dispatcher, answers, log)
	visits := visit.NewManager(db, visit.NewRepository(db), users, announcements, groups, visitCounter, log)

	visits.Subscribe(dispatcher)
	mailer.Subscribe(dispatcher)

	adm := security.NewAccessDecisionManager(log,
		user.Voter{}, announcement.Voter{}, group.Voter{}, invitation.Voter{})

	c.modules = []Module{
		auth.NewModule(auth.NewHandler(c.auth)),
		user.NewModule(user.NewHandler(users, adm, files, dispatcher)),
		announcement.NewModule(announcement.NewHandler(announcements, adm, files, dispatcher)),
		group.NewModule(group.NewHandler(groups, adm, files, dispatcher)),
		invitation.NewModule(invitation.NewHandler(invitations, users, adm)),
		visit.NewModule(visit.NewHandler(visits, adm, map[domain.VisitableType]visit.Resolver{
			domain.VisitableUser:         visit.ResolveWith(users.Entity),
			domain.VisitableAnnouncement: visit.ResolveWith(announcements.Entity),
			domain.VisitableGroup:        visit.ResolveWith(groups.Entity),
		})),
	}
	return c, nil
}

func (c *components) close() []error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
