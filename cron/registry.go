package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"dappstore.GO/core/registry"
)

// Job is a named periodic task. An empty Schedule disables the job; it can
// still be run by name from the CLI.
type Job struct {
	Schedule string
	Run      func(ctx context.Context) error
}

var mu sync.Mutex

// Register adds a job under a case-insensitive name. Call from init() in
// extension packages. Panics on a duplicate name, an unparsable schedule or
// once the scheduler has read the registry.
func Register(name string, job Job) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCron) {
		panic("cron/registry: locked (register only during init before Start)")
	}
	if job.Run == nil {
		panic("cron/registry: job " + name + " has no run func")
	}
	if job.Schedule != "" {
		if _, err := cron.ParseStandard(job.Schedule); err != nil {
			panic(fmt.Sprintf("cron/registry: job %s: %v", name, err))
		}
	}
	name = strings.ToLower(name)
	jobs := registered()
	if _, ok := jobs[name]; ok {
		panic("cron/registry: duplicate job " + name)
	}
	jobs[name] = job
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCron, jobs)
}

// Unregister removes a job (for tests).
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)
	jobs := registered()
	delete(jobs, strings.ToLower(name))
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCron, jobs)
}

func registered() map[string]Job {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCron); ok && v != nil {
		return v.(map[string]Job)
	}
	return make(map[string]Job)
}

// Jobs returns a copy of the registered jobs and locks the registry.
func Jobs() map[string]Job {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]Job)
	for k, v := range registered() {
		out[k] = v
	}
	if !registry.GlobalRegistry.IsLocked(registry.KeyRegistryCron) {
		registry.GlobalRegistry.Lock(registry.KeyRegistryCron)
	}
	return out
}

// Lookup finds name among builtin first, then among registered jobs.
func Lookup(builtin map[string]Job, name string) (Job, bool) {
	name = strings.ToLower(name)
	if j, ok := builtin[name]; ok {
		return j, true
	}
	j, ok := Jobs()[name]
	return j, ok
}

// Names lists the job names of jobs in order.
func Names(jobs map[string]Job) []string {
	names := make([]string, 0, len(jobs))
	for n := range jobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
