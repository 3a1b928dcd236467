// Package session persists the gate grant in a browser session so a device
// that already passed token validation is not asked to present a token again
// for the life of the grant.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
)

// Manager wraps scs with the three facts the gate stores about a browser:
// that it was admitted, when, and until when.
type Manager struct {
	*scs.SessionManager

	lifetime time.Duration
	now      func() time.Time
}

func NewManager(logger *slog.Logger, cfg *config.Config) (*Manager, error) {
	sessionManager := scs.New()

	switch cfg.Sessions.Store {
	case "memory":
		sessionManager.Store = memstore.New()
	case "redis":
		var client *redis.Client

		if cfg.Redis.Sentinel != nil {
			logger.Info("connecting to redis via sentinel",
				"master", cfg.Redis.Sentinel.MasterName,
				"sentinels", cfg.Redis.Sentinel.SentinelAddresses)

			client = redis.NewFailoverClient(&redis.FailoverOptions{
				MasterName:       cfg.Redis.Sentinel.MasterName,
				SentinelAddrs:    cfg.Redis.Sentinel.SentinelAddresses,
				SentinelUsername: cfg.Redis.Sentinel.SentinelUsername,
				SentinelPassword: cfg.Redis.Sentinel.SentinelPassword,
				Username:         cfg.Redis.Username,
				Password:         cfg.Redis.Password,
				DB:               cfg.Redis.SessionIndex,
				MinIdleConns:     2,
			})
		} else {
			client = redis.NewClient(&redis.Options{
				Addr:         cfg.Redis.Address,
				Username:     cfg.Redis.Username,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.SessionIndex,
				MinIdleConns: 2,
			})
		}

		ctx := context.Background()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}

		sessionManager.Store = goredisstore.New(client)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Sessions.Store)
	}

	sessionManager.Lifetime = cfg.Sessions.FixedTimeout

	sessionManager.Cookie.Name = cfg.Sessions.Name
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Sessions.Secure
	sessionManager.Cookie.Path = "/"

	return &Manager{
		SessionManager: sessionManager,
		lifetime:       cfg.Sessions.FixedTimeout,
		now:            time.Now,
	}, nil
}

func (s *Manager) LoadAndSave(next http.Handler) http.Handler {
	return s.SessionManager.LoadAndSave(next)
}

// StoreSessionToken marks the calling browser as admitted for the fixed
// session lifetime.
func (s *Manager) StoreSessionToken(ctx *middlewares.AppContext) {
	now := s.now()

	s.Put(ctx, string(KeyGranted), true)
	s.Put(ctx, string(KeyCreatedAt), now.Unix())
	s.Put(ctx, string(KeyExpiresAt), now.Add(s.lifetime).Unix())
}

// HasValidSession reports whether the browser holds an unexpired grant.
func (s *Manager) HasValidSession(ctx *middlewares.AppContext) bool {
	if !s.GetBool(ctx, string(KeyGranted)) {
		return false
	}

	expiresAt, ok := s.SessionExpiresAt(ctx)
	if !ok {
		return false
	}

	return s.now().Before(expiresAt)
}

func (s *Manager) SessionExpiresAt(ctx *middlewares.AppContext) (time.Time, bool) {
	timestamp := s.GetInt64(ctx, string(KeyExpiresAt))
	if timestamp == 0 {
		return time.Time{}, false
	}
	return time.Unix(timestamp, 0), true
}

func (s *Manager) ClearSession(ctx *middlewares.AppContext) error {
	return s.Destroy(ctx.Request.Context())
}
