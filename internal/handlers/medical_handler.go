package handlers

import (
	"bytes"
	"net/http"
	"time"

	"medicare-pms/internal/views"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListPrescriptions: daftar pasien untuk apotek, terbaru di atas
func (h *Handler) ListPrescriptions(c *gin.Context) {
	patients, ok := h.snapshot(c)
	if !ok {
		return
	}

	result := views.SortByRecency(patients)
	result = views.Filter(result, c.Query("q"), views.MedicalFields)

	utils.APIResponse(c, http.StatusOK, true, "Daftar Resep", result)
}

// GetPatientHistory menampilkan riwayat kunjungan, terbaru dulu
func (h *Handler) GetPatientHistory(c *gin.Context) {
	patient, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Gagal memuat riwayat")
		return
	}
	if patient == nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Pasien tidak ditemukan", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Riwayat Pasien", gin.H{
		"patient": patient,
		"history": views.History(*patient),
	})
}

// GetDailyReport: laporan kunjungan harian (?date=YYYY-MM-DD, default hari ini)
func (h *Handler) GetDailyReport(c *gin.Context) {
	day, ok := h.reportDay(c)
	if !ok {
		return
	}
	patients, ok := h.snapshot(c)
	if !ok {
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Laporan Harian", views.BuildDailyReport(patients, day))
}

// DownloadDailyReport mengirim laporan harian sebagai file CSV
func (h *Handler) DownloadDailyReport(c *gin.Context) {
	day, ok := h.reportDay(c)
	if !ok {
		return
	}
	patients, ok := h.snapshot(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := views.WriteCSV(&buf, views.DailyVisits(patients, day), h.loc); err != nil {
		h.fail(c, err, "Gagal membuat CSV")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+views.ReportFilename(day)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) reportDay(c *gin.Context) (time.Time, bool) {
	day, err := utils.ParseDay(c.Query("date"), h.loc, h.now())
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Format tanggal harus YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return day, true
}
