package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"dappstore.GO/core/cache"
	"dappstore.GO/core/logger"
	"dappstore.GO/core/registry"
	"dappstore.GO/service/commit"
)

// Request headers read by Submitter.
const (
	HeaderGitHubToken = "X-Github-Token"
	HeaderGitHubOrg   = "X-Github-Org"
)

// Identifier resolves a GitHub access token to its account.
type Identifier interface {
	Identify(ctx context.Context, token string) (commit.Submitter, error)
}

// CachedIdentifier remembers resolved identities by token hash.
type CachedIdentifier struct {
	Next  Identifier
	Cache cache.Backend
	TTL   time.Duration
	Log   *slog.Logger
}

func (c *CachedIdentifier) Identify(ctx context.Context, token string) (commit.Submitter, error) {
	sum := sha256.Sum256([]byte(token))
	key := cache.Key("identity", hex.EncodeToString(sum[:]))
	log := logger.OrDiscard(c.Log)

	if b, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
		var sub commit.Submitter
		if json.Unmarshal(b, &sub) == nil && sub.ID != "" {
			sub.AccessToken = token
			return sub, nil
		}
	}
	sub, err := c.Next.Identify(ctx, token)
	if err != nil {
		return sub, err
	}
	// AccessToken is not serialized.
	b, err := json.Marshal(sub)
	if err == nil {
		if err := c.Cache.Set(ctx, key, b, c.TTL); err != nil {
			log.Warn("caching identity", "error", err)
		}
	}
	return sub, nil
}

// Submitter resolves the caller's GitHub identity from the Authorization
// bearer token or the X-Github-Token header and stores it on the request.
func Submitter(ids Identifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := githubToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "a github access token is required")
			}
			sub, err := ids.Identify(c.Request().Context(), token)
			if err != nil {
				return err
			}
			sub.Org = strings.TrimSpace(c.Request().Header.Get(HeaderGitHubOrg))
			registry.Request(c).Set(registry.KeySubmitter, sub)
			return next(c)
		}
	}
}

// SubmitterFrom returns the identity stored by Submitter; zero if none.
func SubmitterFrom(c echo.Context) commit.Submitter {
	sub, _ := registry.Request(c).Get(registry.KeySubmitter).(commit.Submitter)
	return sub
}

func githubToken(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(HeaderGitHubToken)); t != "" {
		return t
	}
	h := r.Header.Get(echo.HeaderAuthorization)
	for _, scheme := range []string{"Bearer ", "bearer ", "token "} {
		if strings.HasPrefix(h, scheme) {
			return strings.TrimSpace(h[len(scheme):])
		}
	}
	return ""
}
