package index

import (
	"fmt"
	"time"
)

// Kind is a family of indices sharing one alias.
type Kind string

const (
	KindDApps  Kind = "dapps"
	KindStores Kind = "stores"
)

const timestampLayout = "2006-01-02-15-04-05"

// Names derives index and alias names for an environment.
type Names struct {
	Env string
}

// Alias is the stable name searches go through.
func (n Names) Alias(k Kind) string {
	if k == KindStores {
		return fmt.Sprintf("%s_app_store_search_index", n.Env)
	}
	return fmt.Sprintf("%s_dapp_search_index", n.Env)
}

// Index is a fresh, timestamped index name.
func (n Names) Index(k Kind, at time.Time) string {
	ts := at.UTC().Format(timestampLayout)
	if k == KindStores {
		return fmt.Sprintf("%s_app_store_%s", n.Env, ts)
	}
	return fmt.Sprintf("%s_dapp_registries_%s", n.Env, ts)
}
