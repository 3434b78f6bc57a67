package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	discordrouter "github.com/jose-valero/reaction-roles-bot/internal/adapters/discord"
	"github.com/jose-valero/reaction-roles-bot/internal/adapters/httpstatus"
	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
	"github.com/jose-valero/reaction-roles-bot/internal/domain"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/cache"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/config"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/logging"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/storage"
)

func main() {
	envFile := pflag.String("env-file", ".env", "archivo .env a cargar")
	logLevel := pflag.String("log-level", "", "pisa LOG_LEVEL")
	httpAddr := pflag.String("http-addr", "", "pisa HTTP_ADDR (off lo apaga)")
	pflag.Parse()

	// el .env por defecto es opcional; uno pasado a mano no
	if err := godotenv.Load(*envFile); err != nil && pflag.CommandLine.Changed("env-file") {
		logrus.Fatalf("env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB (opcional, solo audit log)
	var (
		db        *sql.DB
		grantRepo *storage.GrantRepo
		grants    service.GrantRecorder
	)
	if cfg.DatabaseURL != "" {
		db, err = storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.Fatal(err)
		}
		defer db.Close()
		if err := storage.Migrate(ctx, db); err != nil {
			logrus.Fatalf("migrate: %v", err)
		}
		grantRepo = storage.NewGrantRepo(db)
		grants = grantRepo
		logrus.Info("✅ DB lista y migrada")
	} else {
		logrus.Info("DATABASE_URL vacío: sin audit log")
	}

	checkmark, err := discordrouter.Checkmark(cfg.CheckmarkEmoji)
	if err != nil {
		logrus.Fatal(err)
	}
	drafts, err := cache.New[domain.Draft](cfg.CacheSize)
	if err != nil {
		logrus.Fatal(err)
	}
	published, err := cache.New[domain.Mapping](cfg.CacheSize)
	if err != nil {
		logrus.Fatal(err)
	}

	// Discord session
	s, err := discordgo.New(cfg.BotAuth())
	if err != nil {
		logrus.Fatal(err)
	}
	s.Identify.Intents = discordrouter.Intents

	svc := service.NewReactionRolesService(discordrouter.NewPlatform(s), drafts, published, service.Options{
		Checkmark:     checkmark,
		RoleIDPattern: domain.SnowflakePattern,
		Grants:        grants,
		AllowHelp:     discordrouter.HelpLimiter(cfg.HelpCooldown),
	})

	// Router (handlers antes del Open para no perder el Ready)
	r := discordrouter.NewRouter(s, svc, cfg.EventTimeout)
	r.Handlers()
	go r.Run(ctx)

	if err := s.Open(); err != nil {
		logrus.Fatal(err)
	}
	defer s.Close()
	logrus.Infof("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	// Status server
	if cfg.HTTPEnabled() {
		opt := httpstatus.Options{
			Stats:     svc,
			Connected: func() bool { return s.DataReady },
		}
		if db != nil {
			opt.DB = db
			opt.Grants = grantRepo
		}
		web := httpstatus.New(opt)
		go func() {
			if err := web.Start(cfg.HTTPAddr); err != nil {
				logrus.WithError(err).Error("status server")
			}
		}()
		defer func() { _ = web.Shutdown() }()
		logrus.Infof("status server en %s", cfg.HTTPAddr)
	}

	// Pruner del audit log
	if grantRepo != nil && cfg.GrantLogRetention > 0 {
		go pruneLoop(ctx, grantRepo, cfg.GrantLogRetention)
	}

	// Esperar señal
	<-ctx.Done()
	logrus.Info("apagando")
}

func pruneLoop(ctx context.Context, repo *storage.GrantRepo, retention time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		pctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := repo.Prune(pctx, retention)
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("grant log prune")
		} else if n > 0 {
			logrus.WithField("rows", n).Info("grant log podado")
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
