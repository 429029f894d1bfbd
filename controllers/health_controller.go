package controllers

import (
	"net/http"

	"task_server_go/data"
)

// HealthController отвечает за проверку состояния сервера.
type HealthController struct {
	Store *data.Store
}

// HealthCheck возвращает {"status": "healthy"}, если БД отвечает на ping.
// GET /health
func (c *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := c.Store.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database is not reachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
