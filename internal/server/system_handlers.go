package server

import (
	"net/http"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/database"
	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/aristath/fundnav/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// JobRunner runs a job outside its schedule
type JobRunner interface {
	RunNow(job scheduler.Job) error
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	clock       *market_hours.MarketClock
	cache       *cache.Store
	db          *database.DB
	runner      JobRunner
	jobs        map[string]scheduler.Job
	jobNames    []string
	now         func() time.Time
	hostStats   func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	clock *market_hours.MarketClock,
	store *cache.Store,
	db *database.DB,
	runner JobRunner,
	jobs []scheduler.Job,
	log zerolog.Logger,
) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		clock:       clock,
		cache:       store,
		db:          db,
		runner:      runner,
		jobs:        make(map[string]scheduler.Job, len(jobs)),
		now:         time.Now,
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		h.jobs[job.Name()] = job
		h.jobNames = append(h.jobNames, job.Name())
	}
	h.hostStats = h.getSystemStats
	return h
}

// SystemStatusResponse represents the service status
type SystemStatusResponse struct {
	Status        string                     `json:"status"`
	Session       market_hours.SessionStatus `json:"session"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	CacheEntries  int                        `json:"cache_entries"`
	CPUPercent    float64                    `json:"cpu_percent"`
	MemoryPercent float64                    `json:"memory_percent"`
	Database      *database.Stats            `json:"database,omitempty"`
}

// HandleSystemStatus handles GET /api/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	cpuPercent, memPercent := h.hostStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		Session:       h.clock.Status(now),
		UptimeSeconds: int64(now.Sub(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
	}
	if h.cache != nil {
		response.CacheEntries = h.cache.Len()
	}
	if h.db != nil {
		stats, err := h.db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database stats")
			response.Status = "degraded"
		} else {
			response.Database = stats
		}
	}

	writeJSON(w, http.StatusOK, envelope(response), h.log)
}

// HandleJobsStatus handles GET /api/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	names := h.jobNames
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"jobs": names}), h.log)
}

// HandleTriggerJob handles POST /api/jobs/{name}
// Runs the named job synchronously.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok || h.runner == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job: " + name}, h.log)
		return
	}

	start := time.Now()
	if err := h.runner.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Triggered job failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, h.log)
		return
	}

	writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"job":         name,
		"duration_ms": time.Since(start).Milliseconds(),
	}), h.log)
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
