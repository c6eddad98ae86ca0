package cron

import (
	"context"

	"dappstore.GO/app"
	"dappstore.GO/config"
)

// Built-in job names.
const (
	JobRegistryRefresh = "registry-refresh"
	JobReindex         = "reindex"
)

// Builtin returns the jobs of the service. Refresh re-reads both documents
// through the cache, which reindexes on change when a.ReindexOnChange was
// called; the reindex job rebuilds both indexes unconditionally.
func Builtin(a *app.App, c config.Cron) map[string]Job {
	return map[string]Job{
		JobRegistryRefresh: {Schedule: c.Refresh, Run: a.Catalog.Warm},
		JobReindex: {Schedule: c.Reindex, Run: func(ctx context.Context) error {
			return a.Reindex(ctx)
		}},
	}
}
