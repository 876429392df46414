package handlers

import (
	"net/http"
	"strings"

	"medicare-pms/internal/middleware"
	"medicare-pms/internal/models"
	"medicare-pms/internal/views"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListPatients: daftar pasien untuk dashboard admin (?q= & ?limit=)
func (h *Handler) ListPatients(c *gin.Context) {
	patients, ok := h.snapshot(c)
	if !ok {
		return
	}

	result := views.SortByRecency(patients)
	result = views.Filter(result, c.Query("q"), views.AdminFields)
	result = views.Truncate(result, utils.QueryInt(c.Query("limit"), 0))

	utils.APIResponse(c, http.StatusOK, true, "Daftar Pasien", result)
}

// SavePatient mencatat konsultasi. Kalau nomor HP sudah terdaftar, kunjungan
// baru ditambahkan ke riwayat pasien yang sama.
func (h *Handler) SavePatient(c *gin.Context) {
	var input models.PatientFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Data Pasien Salah", err.Error())
		return
	}

	// 1. Umur dari form masih string
	age, err := utils.StringToInt(input.Age)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Data Pasien Salah", gin.H{"field": "age", "reason": "must be a number"})
		return
	}

	sub := models.PatientSubmission{
		Name:         strings.TrimSpace(input.Name),
		Age:          age,
		Gender:       input.Gender,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      input.Address,
		Diseases:     input.Diseases,
		Diagnosis:    input.Diagnosis,
		Prescription: input.Prescription,
		Notes:        input.Notes,
		CreatedBy:    middleware.CurrentUsername(c),
		SubmittedAt:  input.UpdatedAt,
	}

	// 2. Simpan (create atau append visit)
	res, err := h.store.Upsert(c.Request.Context(), sub)
	if err != nil {
		h.fail(c, err, "Gagal menyimpan pasien")
		return
	}

	// 3. Kabari apotek, gagal kirim notifikasi tidak membatalkan simpan
	notice := utils.PrescriptionNotice{
		PatientID:    res.ID,
		PatientName:  sub.Name,
		Prescription: sub.Prescription,
		Existing:     res.Existing,
	}
	if err := h.notifier.PrescriptionRecorded(c.Request.Context(), notice); err != nil {
		h.logger.Warn().Err(err).Str("patient_id", res.ID).Msg("notifikasi resep gagal")
	}

	if res.Existing {
		utils.APIResponse(c, http.StatusOK, true, "Kunjungan baru ditambahkan ke riwayat pasien", res)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "Data Pasien Berhasil Ditambahkan", res)
}

// LookupPhone dipakai form untuk auto-fill data pasien lama
func (h *Handler) LookupPhone(c *gin.Context) {
	patients, ok := h.snapshot(c)
	if !ok {
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Hasil Pencarian Nomor HP", views.LookupPhone(patients, strings.TrimSpace(c.Query("phone"))))
}

// GetPatient menampilkan satu pasien lengkap dengan riwayat
func (h *Handler) GetPatient(c *gin.Context) {
	patient, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Gagal memuat pasien")
		return
	}
	if patient == nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Pasien tidak ditemukan", nil)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Detail Pasien", patient)
}

// UpdatePatient mengubah data diri pasien tanpa menambah kunjungan
func (h *Handler) UpdatePatient(c *gin.Context) {
	var input models.DemographicsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Data Pasien Salah", err.Error())
		return
	}

	patient, err := h.store.UpdateDemographics(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.fail(c, err, "Gagal mengubah pasien")
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Data Pasien Diperbarui", patient)
}
