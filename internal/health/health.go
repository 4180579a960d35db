// Package health reports whether the daemon can still read and write its
// data directory.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusDown Status = "down"
)

// Probe returns nil when the dependency it guards is usable.
type Probe func(ctx context.Context) error

// Result is one named check in a Report.
type Result struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the body served by the readiness endpoint.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

// Ready reports whether every check passed.
func (r Report) Ready() bool {
	return r.Status == "ready"
}

// Checker runs the registered probes on demand.
type Checker struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	timeout time.Duration
	logger  zerolog.Logger
}

// NewChecker creates a checker whose probes each get five seconds.
func NewChecker(logger zerolog.Logger) *Checker {
	return &Checker{
		probes:  make(map[string]Probe),
		timeout: 5 * time.Second,
		logger:  logger.With().Str("component", "health").Logger(),
	}
}

// Add registers p under name, replacing any probe already there.
func (c *Checker) Add(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
}

// Check runs every probe in name order and summarizes the results.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	report := Report{Status: "ready", Checks: make(map[string]Result, len(names))}
	for _, name := range names {
		c.mu.RLock()
		p := c.probes[name]
		c.mu.RUnlock()

		res := c.run(ctx, name, p)
		if res.Status == StatusDown {
			report.Status = "not_ready"
		}
		report.Checks[name] = res
	}
	return report
}

func (c *Checker) run(ctx context.Context, name string, p Probe) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := p(ctx); err != nil {
		c.logger.Warn().Err(err).Str("check", name).Msg("health check failed")
		return Result{Status: StatusDown, Error: err.Error()}
	}
	return Result{Status: StatusOK}
}

// FromFunc adapts a context-free probe such as store.Store.Probe. The probe
// is skipped when ctx is already done.
func FromFunc(probe func() error) Probe {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return probe()
	}
}

// LivenessHandler answers /healthz. It only proves the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadinessHandler answers /readyz with the current Report, using 503 when
// any check is down.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())
		status := http.StatusOK
		if !report.Ready() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
