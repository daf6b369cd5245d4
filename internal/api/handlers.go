package api

import (
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
	"github.com/pharmacycle/pharma-cycle/internal/service/partner"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	analytics   *analytics.Service
	partner     *partner.Service
	defaultFrom time.Time
	now         func() time.Time
}

// NewHandlers creates a new Handlers instance. defaultFrom is the range
// start used when a request omits "from".
func NewHandlers(svc *analytics.Service, defaultFrom time.Time) *Handlers {
	return &Handlers{
		analytics:   svc,
		defaultFrom: defaultFrom,
		now:         time.Now,
	}
}

// SetPartnerService enables the partner verification routes.
func (h *Handlers) SetPartnerService(svc *partner.Service) {
	h.partner = svc
}
