package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"template-mailer/config"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check is one dependency probe result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type StatsResponse struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	Uptime       string `json:"uptime"`
}

var startTime = time.Now()

// LivenessHandler handles GET /health/live. Always 200 while the process
// is up.
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthHandler handles GET /health with the full check set.
func HealthHandler(c echo.Context) error {
	checks := map[string]Check{
		"database": checkDatabase(),
	}

	status := "ok"
	httpStatus := http.StatusOK
	if checks["database"].Status != "ok" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// ReadinessHandler handles GET /health/ready. 503 until the database
// answers a ping.
func ReadinessHandler(c echo.Context) error {
	checks := map[string]Check{
		"database": checkDatabase(),
	}

	status := "ok"
	httpStatus := http.StatusOK
	if checks["database"].Status != "ok" {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// StatsHandler handles GET /health/stats with process-level numbers for
// monitoring.
func StatsHandler(c echo.Context) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(http.StatusOK, StatsResponse{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     m.Alloc,
		MemSys:       m.Sys,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
	})
}

func checkDatabase() Check {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := config.DB.PingContext(ctx)
	latency := time.Since(start).String()

	if err != nil {
		return Check{Status: "error", Message: "Database connection failed", Latency: latency}
	}
	return Check{Status: "ok", Latency: latency}
}
