package handlers

import (
	"errors"
	"net/http"
	"time"

	"medicare-pms/internal/models"
	"medicare-pms/internal/store"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler carries everything the dashboards need; nothing is global.
type Handler struct {
	store      store.Store
	notifier   utils.Notifier
	credential utils.Credential
	secret     []byte
	tokenTTL   time.Duration
	loc        *time.Location
	now        func() time.Time
	logger     zerolog.Logger
}

type Deps struct {
	Store      store.Store
	Notifier   utils.Notifier
	Credential utils.Credential
	JWTSecret  []byte
	TokenTTL   time.Duration
	Location   *time.Location
	Now        func() time.Time
	Logger     zerolog.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		store:      d.Store,
		notifier:   d.Notifier,
		credential: d.Credential,
		secret:     d.JWTSecret,
		tokenTTL:   d.TokenTTL,
		loc:        d.Location,
		now:        d.Now,
		logger:     d.Logger,
	}
	if h.notifier == nil {
		h.notifier = utils.NopNotifier{}
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.tokenTTL <= 0 {
		h.tokenTTL = 24 * time.Hour
	}
	return h
}

// today is the reference date for stats and reports.
func (h *Handler) today() time.Time {
	return h.now().In(h.loc)
}

// snapshot loads every patient for one request.
func (h *Handler) snapshot(c *gin.Context) ([]models.Patient, bool) {
	patients, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Gagal memuat data pasien")
		return nil, false
	}
	return patients, true
}

// fail maps store errors to a response. Validation problems are the caller's
// fault and are echoed back; anything else gets a generic message.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Data Pasien Salah", gin.H{"field": verr.Field, "reason": verr.Reason})
	case errors.Is(err, store.ErrPatientNotFound):
		utils.APIResponse(c, http.StatusNotFound, false, "Pasien tidak ditemukan", nil)
	default:
		_ = c.Error(err)
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg(message)
		utils.APIResponse(c, http.StatusInternalServerError, false, message, nil)
	}
}
