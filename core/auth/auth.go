// Package auth holds the echo authentication middlewares.
package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dappstore.GO/config"
	"dappstore.GO/core/registry"
)

// Middleware returns the admin API auth middleware for cfg.Type. Token auth
// accepts the static API key or a GitHub token of a maintainer.
func Middleware(cfg config.Auth, ids Identifier) echo.MiddlewareFunc {
	skipper := buildSkipper()
	switch cfg.Type {
	case "key":
		return keyAuth(cfg.APIKey, skipper)
	case "token":
		return tokenAuth(cfg, ids, skipper)
	default:
		return basicAuth(cfg.User, cfg.Pass, skipper)
	}
}

func buildSkipper() middleware.Skipper {
	return func(c echo.Context) bool {
		return config.SkipAuth(c.Path())
	}
}

func basicAuth(user, pass string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if user == "" {
				return false, nil
			}
			return equal(username, user) && equal(password, pass), nil
		},
		Skipper: skipper,
	})
}

func keyAuth(apiKey string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			return apiKey != "" && equal(key, apiKey), nil
		},
		Skipper: skipper,
	})
}

func tokenAuth(cfg config.Auth, ids Identifier, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(token string, c echo.Context) (bool, error) {
			if cfg.APIKey != "" && equal(token, cfg.APIKey) {
				c.Set("auth_type", "static")
				return true, nil
			}
			if ids == nil {
				return false, nil
			}
			sub, err := ids.Identify(c.Request().Context(), token)
			if err != nil {
				return false, nil
			}
			if !isMaintainer(cfg.Maintainers, sub.ID) {
				return false, nil
			}
			c.Set("auth_type", "token")
			c.Set("role_name", "maintainer")
			registry.Request(c).Set(registry.KeySubmitter, sub)
			return true, nil
		},
		Skipper: skipper,
	})
}

func isMaintainer(maintainers []string, id string) bool {
	for _, m := range maintainers {
		if strings.EqualFold(m, id) {
			return true
		}
	}
	return false
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
