package server

import (
	"context"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/wellness/internal/di"
	"github.com/aristath/wellness/internal/scheduler"
	"github.com/aristath/wellness/internal/utils"
)

// SystemHandlers serves health, status, upstream status and job endpoints
type SystemHandlers struct {
	container   *di.Container
	jobs        map[string]scheduler.Job
	rangeDays   int
	startupTime time.Time
	log         zerolog.Logger
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(container *di.Container, jobs *di.JobInstances, rangeDays int, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		container:   container,
		jobs:        map[string]scheduler.Job{},
		rangeDays:   rangeDays,
		startupTime: time.Now(),
		log:         log.With().Str("handler", "system").Logger(),
	}
	if jobs != nil {
		h.jobs = jobs.All()
	}
	return h
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DatabaseMB    float64 `json:"database_mb"`
	WhatIfCached  int     `json:"whatif_cached"`
	Upstream      bool    `json:"upstream"`
	ScheduledJobs int     `json:"scheduled_jobs"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.container.DB.QuickCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("Health check failed")
		utils.WriteJSON(w, h.log, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		DatabaseMB:    h.databaseSizeMB(),
		WhatIfCached:  h.container.WhatIf.Len(),
		Upstream:      h.container.Dashboard != nil,
	}
	if h.container.Scheduler != nil {
		resp.ScheduledJobs = h.container.Scheduler.Entries()
	}
	utils.WriteJSON(w, h.log, http.StatusOK, resp)
}

// HandleSourcesStatus handles GET /api/sources/status
func (h *SystemHandlers) HandleSourcesStatus(w http.ResponseWriter, r *http.Request) {
	if h.container.Dashboard == nil {
		http.Error(w, "No upstream configured", http.StatusServiceUnavailable)
		return
	}
	rangeDays, err := utils.RangeDays(r, h.rangeDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := h.container.Dashboard.SourcesStatus(r.Context(), rangeDays)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch sources status")
		http.Error(w, "Failed to fetch sources status", http.StatusBadGateway)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, status)
}

// HandleListJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{"jobs": names})
}

// HandleTriggerJob handles POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		http.Error(w, "Unknown job", http.StatusNotFound)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Job failed")
		utils.WriteJSON(w, h.log, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Job completed",
	})
}

// getSystemStats returns CPU and RAM usage percentages.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
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

// databaseSizeMB sums the database file and its WAL.
func (h *SystemHandlers) databaseSizeMB() float64 {
	var total int64
	for _, p := range []string{h.container.DB.Path(), h.container.DB.Path() + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return float64(total) / 1024 / 1024
}
