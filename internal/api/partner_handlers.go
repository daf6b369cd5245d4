package api

import (
	"errors"
	"net/http"

	"github.com/pharmacycle/pharma-cycle/internal/pkg/httputil"
	"github.com/pharmacycle/pharma-cycle/internal/pkg/logger"
	"github.com/pharmacycle/pharma-cycle/internal/service/partner"
)

type disposalCodeRequest struct {
	DisposalCode string `json:"disposalCode"`
}

func (h *Handlers) partnerEnabled(w http.ResponseWriter) bool {
	if h.partner == nil {
		httputil.ServiceUnavailable(w, "partner portal requires the postgres store")
		return false
	}
	return true
}

// HandleVerifyDisposal looks up a pending disposal by its code.
//
//	POST /api/partner/verify {"disposalCode": "..."}
func (h *Handlers) HandleVerifyDisposal(w http.ResponseWriter, r *http.Request) {
	if !h.partnerEnabled(w) {
		return
	}
	var req disposalCodeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	rec, err := h.partner.Verify(r.Context(), req.DisposalCode)
	if errors.Is(err, partner.ErrAlreadyCompleted) {
		httputil.JSON(w, http.StatusConflict, map[string]interface{}{
			"error":    err.Error(),
			"disposal": rec,
		})
		return
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httputil.OK(w, map[string]interface{}{
		"message":  "Disposal found",
		"disposal": rec,
	})
}

// HandleCompleteDisposal completes a pending disposal and credits its owner.
//
//	PUT /api/partner/verify {"disposalCode": "..."}
func (h *Handlers) HandleCompleteDisposal(w http.ResponseWriter, r *http.Request) {
	if !h.partnerEnabled(w) {
		return
	}
	var req disposalCodeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	res, err := h.partner.Complete(r.Context(), req.DisposalCode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logger.Info("disposal completed",
		"disposal_code", res.Disposal.DisposalCode,
		"disposal_id", res.Disposal.ID,
		"bonus_points", res.BonusPoints,
	)
	httputil.OK(w, map[string]interface{}{
		"message":     "Disposal completed successfully",
		"disposal":    res.Disposal,
		"bonusPoints": res.BonusPoints,
	})
}

// HandlePartnerStats returns the partner dashboard counters.
//
//	GET /api/partner/stats
func (h *Handlers) HandlePartnerStats(w http.ResponseWriter, r *http.Request) {
	if !h.partnerEnabled(w) {
		return
	}
	dash, err := h.partner.Stats(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.OK(w, dash)
}
