package httpstatus

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/storage"
)

type StatsSource interface {
	Stats() service.Stats
}

// Lo implementa *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Lo implementa storage.GrantRepo
type GrantLister interface {
	ListByMember(ctx context.Context, guildID, userID string, limit int) ([]storage.Grant, error)
}

type Options struct {
	Stats StatsSource
	// Connected dice si el gateway está arriba.
	Connected func() bool
	// DB y Grants son opcionales (sin DATABASE_URL quedan en nil).
	DB     Pinger
	Grants GrantLister
}

type Server struct {
	app *fiber.App
	opt Options
}

func New(opt Options) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{app: app, opt: opt}
	app.Get("/health", s.health)
	app.Get("/ready", s.ready)
	app.Get("/stats", s.stats)
	app.Get("/grants/:guild/:user", s.grants)
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Start(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown() error { return s.app.ShutdownWithTimeout(5 * time.Second) }

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) ready(c *fiber.Ctx) error {
	if s.opt.Connected != nil && !s.opt.Connected() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "error": "gateway disconnected"})
	}
	if s.opt.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.opt.DB.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "error": "database unreachable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (s *Server) stats(c *fiber.Ctx) error {
	return c.JSON(s.opt.Stats.Stats())
}

// grants: últimos cambios de roles de un miembro (?limit=, máx 100).
func (s *Server) grants(c *fiber.Ctx) error {
	if s.opt.Grants == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "grant log disabled"})
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
		}
		limit = min(n, 100)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := s.opt.Grants.ListByMember(ctx, c.Params("guild"), c.Params("user"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "query failed"})
	}
	if rows == nil {
		rows = []storage.Grant{}
	}
	return c.JSON(rows)
}
