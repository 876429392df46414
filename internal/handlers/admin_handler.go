package handlers

import (
	"net/http"

	"medicare-pms/internal/views"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats menampilkan ringkasan dashboard admin
func (h *Handler) GetDashboardStats(c *gin.Context) {
	patients, ok := h.snapshot(c)
	if !ok {
		return
	}

	// updated_today = pasien yang disentuh hari ini, visits_today = jumlah kunjungan
	utils.APIResponse(c, http.StatusOK, true, "Data Dashboard Admin", views.BuildStats(patients, h.today()))
}
