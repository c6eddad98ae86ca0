package config

// Default cron schedules.
const (
	DefaultRefreshSchedule = "@every 5m"
	DefaultReindexSchedule = "0 3 * * *"
)

// Cron holds the schedules of the built in jobs. An empty schedule disables
// the job.
type Cron struct {
	// Refresh re-reads the registry documents; a change triggers a reindex.
	Refresh string
	// Reindex rebuilds both search indexes unconditionally.
	Reindex string
}
