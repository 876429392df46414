package handlers

import (
	"net/http"

	"medicare-pms/internal/models"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LOGIN
// The gate is mocked: one configured credential opens either dashboard.
func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput

	// 1. Validasi Input
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input tidak valid", err.Error())
		return
	}

	// 2. Cek Username & Password
	if !h.credential.Match(input.Username, input.Password) {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Username atau Password salah", nil)
		return
	}

	// 3. Generate JWT Token
	token, err := utils.GenerateToken(h.secret, input.Username, string(input.Role), h.tokenTTL)
	if err != nil {
		h.fail(c, err, "Gagal generate token")
		return
	}

	// 4. Sukses & Kirim Token
	utils.APIResponse(c, http.StatusOK, true, "Login Berhasil", gin.H{
		"token": token,
		"role":  input.Role,
		"user":  input.Username,
	})
}
