package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DiscordToken string
	DatabaseURL  string // opcional: vacío = sin audit log
	HTTPAddr     string // default :8080, "off" lo apaga

	LogLevel  string
	LogFormat string // text | json

	CacheSize      int    // por cache (drafts y publicados)
	CheckmarkEmoji string // shortname, ej: white_check_mark
	HelpCooldown   time.Duration
	EventTimeout   time.Duration

	// 0 = el bot no poda grant_log (lo hace el janitor)
	GrantLogRetention time.Duration
}

func Load() (Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return def
	}
	var errs []string
	getInt := func(k string, def int) int {
		v := get(k, "")
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("env %s inválida: %q", k, v))
			return def
		}
		return n
	}

	cfg := Config{
		DiscordToken:      get("DISCORD_BOT_TOKEN", ""),
		DatabaseURL:       get("DATABASE_URL", ""),
		HTTPAddr:          get("HTTP_ADDR", ":8080"),
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "text"),
		CacheSize:         getInt("CACHE_SIZE", 1024),
		CheckmarkEmoji:    get("CHECKMARK_EMOJI", "white_check_mark"),
		HelpCooldown:      time.Duration(getInt("HELP_COOLDOWN_SECONDS", 5)) * time.Second,
		EventTimeout:      time.Duration(getInt("EVENT_TIMEOUT_SECONDS", 10)) * time.Second,
		GrantLogRetention: time.Duration(getInt("GRANT_LOG_RETENTION_DAYS", 0)) * 24 * time.Hour,
	}
	if cfg.DiscordToken == "" {
		errs = append(errs, "faltante env DISCORD_BOT_TOKEN")
	}
	if cfg.CacheSize == 0 {
		errs = append(errs, "env CACHE_SIZE debe ser > 0")
	}
	if cfg.EventTimeout == 0 {
		errs = append(errs, "env EVENT_TIMEOUT_SECONDS debe ser > 0")
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// HTTPEnabled: HTTP_ADDR=off apaga el status server.
func (c Config) HTTPEnabled() bool {
	return c.HTTPAddr != "" && !strings.EqualFold(c.HTTPAddr, "off")
}

// BotAuth agrega el prefijo "Bot " si falta.
func (c Config) BotAuth() string {
	auth := strings.TrimSpace(c.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	return auth
}
