package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyStore contextKey = "storeKey"

// StoreFromContext returns the store key scoping the current request; empty
// for the global catalog.
func StoreFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyStore).(string); ok {
		return v
	}
	return ""
}

// WithStore attaches a store key to ctx.
func WithStore(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, CtxKeyStore, key)
}

// Store context sources, resolved by StoreKey.
const (
	HeaderStore     = "Store"
	QueryParamStore = "__Store"
	VarStore        = "__Store"
)

// StoreKey extracts the store key of r. Priority: JSON body
// variables.__Store, then the __Store query param, then the Store header.
// body is the already read POST body and may be nil.
func StoreKey(r *http.Request, body []byte) string {
	if key, ok := storeFromVariables(body); ok {
		return key
	}
	if q := strings.TrimSpace(r.URL.Query().Get(QueryParamStore)); q != "" {
		return q
	}
	return strings.TrimSpace(r.Header.Get(HeaderStore))
}

func storeFromVariables(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var payload struct {
		Variables map[string]any `json:"variables"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Variables == nil {
		return "", false
	}
	if v, ok := payload.Variables[VarStore].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	return "", false
}
