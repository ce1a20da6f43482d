package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/psds-microservice/license-tracker/internal/model"
)

// Per-system detail paths for the distribution breakdown. Fixed by the
// frontend contract.
var analyticsDetailPaths = map[model.System][]string{
	model.SystemLSQ:  {"lsq", "licenseType"},
	model.SystemDMS:  {"dms", "dealerName"},
	model.SystemCRM:  {"crm", "hubName"},
	model.SystemZoho: {"zoho", "role"},
}

func (h *LicenseHandler) LSQAnalytics(c *gin.Context)  { h.analytics(c, model.SystemLSQ) }
func (h *LicenseHandler) DMSAnalytics(c *gin.Context)  { h.analytics(c, model.SystemDMS) }
func (h *LicenseHandler) CRMAnalytics(c *gin.Context)  { h.analytics(c, model.SystemCRM) }
func (h *LicenseHandler) ZohoAnalytics(c *gin.Context) { h.analytics(c, model.SystemZoho) }

func (h *LicenseHandler) analytics(c *gin.Context, system model.System) {
	report, err := h.svc.Analytics(c.Request.Context(), system, analyticsDetailPaths[system]...)
	if err != nil {
		log.Error().Err(err).Str("system", string(system)).Msg("analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An unexpected error occurred", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"distribution":      report.Distribution,
		"assignment_trends": report.AssignmentTrends,
	})
}
