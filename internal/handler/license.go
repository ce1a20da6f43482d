package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/psds-microservice/license-tracker/internal/errs"
	"github.com/psds-microservice/license-tracker/internal/kafka"
	"github.com/psds-microservice/license-tracker/internal/model"
	"github.com/psds-microservice/license-tracker/internal/service"
)

type LicenseHandler struct {
	svc      *service.LicenseService
	producer kafka.AuditEventProducer
}

func NewLicenseHandler(svc *service.LicenseService, producer kafka.AuditEventProducer) *LicenseHandler {
	return &LicenseHandler{svc: svc, producer: producer}
}

// List handles GET /api/licenses. The response is the bare array of license
// objects with decoded JSON fields and ISO dates (null when absent).
func (h *LicenseHandler) List(c *gin.Context) {
	filter := service.LicenseFilter{
		System: c.Query("system"),
		Status: c.Query("status"),
		Query:  c.Query("query"),
	}
	var err error
	if filter.AssignmentDateStart, err = queryDate(c, "assignment_date_start"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignment_date_start, expected YYYY-MM-DD"})
		return
	}
	if filter.AssignmentDateEnd, err = queryDate(c, "assignment_date_end"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignment_date_end, expected YYYY-MM-DD"})
		return
	}

	items, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("list licenses failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error", "error": err.Error()})
		return
	}
	if items == nil {
		items = []model.License{}
	}
	c.JSON(http.StatusOK, items)
}

type createLicenseRequest struct {
	TicketID       string                 `json:"ticketId"`
	System         string                 `json:"system"`
	Name           string                 `json:"name"`
	Mobile         string                 `json:"mobile"`
	Email          string                 `json:"email"`
	RequestType    string                 `json:"requestType"`
	AssignmentDate string                 `json:"assignmentDate"`
	ExpiryDate     string                 `json:"expiryDate"`
	Status         string                 `json:"status"`
	Details        map[string]interface{} `json:"details_json"`
	AttachmentData string                 `json:"attachmentData"`
	RequestedDate  string                 `json:"requestedDate"`
	RequestorName  string                 `json:"requestorName"`
}

func (h *LicenseHandler) Create(c *gin.Context) {
	var req createLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	in := service.CreateLicenseInput{
		TicketID:       req.TicketID,
		System:         model.System(req.System),
		Name:           req.Name,
		Mobile:         req.Mobile,
		Email:          req.Email,
		RequestType:    req.RequestType,
		Status:         model.LicenseStatus(req.Status),
		Details:        req.Details,
		AttachmentData: req.AttachmentData,
		RequestorName:  req.RequestorName,
	}
	var err error
	if in.AssignmentDate, err = parseDate(req.AssignmentDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid assignmentDate, expected YYYY-MM-DD"})
		return
	}
	if in.ExpiryDate, err = parseDate(req.ExpiryDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid expiryDate, expected YYYY-MM-DD"})
		return
	}
	if in.RequestedDate, err = parseDate(req.RequestedDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid requestedDate, expected YYYY-MM-DD"})
		return
	}

	id, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": ve.Message("Missing required license data")})
			return
		}
		log.Error().Err(err).Msg("create license failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error", "error": err.Error()})
		return
	}
	h.producer.ProduceAuditEvent(c.Request.Context(), "license.created", map[string]interface{}{
		"license_id": id,
		"ticket_id":  req.TicketID,
		"system":     req.System,
	})
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "License added successfully", "id": id})
}

type updateLicenseRequest struct {
	Status         *string                `json:"status"`
	RemovalDetails map[string]interface{} `json:"removal_details_json"`
	AttachmentData *string                `json:"attachmentData"`
	Details        map[string]interface{} `json:"details_json"`
}

// Update handles PUT /api/licenses/:id. A zero-row outcome is a soft
// failure: 200 with success=false, unlike reactivation which 404s.
func (h *LicenseHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req updateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	err := h.svc.Update(c.Request.Context(), id, service.UpdateLicenseInput{
		Status:         req.Status,
		RemovalDetails: req.RemovalDetails,
		AttachmentData: req.AttachmentData,
		Details:        req.Details,
	})
	switch {
	case err == nil:
		h.producer.ProduceAuditEvent(c.Request.Context(), "license.updated", map[string]interface{}{"license_id": id})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "License updated successfully"})
	case errors.Is(err, errs.ErrNoFields):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No fields provided for update"})
	case errors.Is(err, errs.ErrLicenseNotFound):
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "License not found or no changes applied"})
	default:
		if ve, ok := errs.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": ve.Message("Missing required license data")})
			return
		}
		log.Error().Err(err).Str("license_id", id).Msg("update license failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error", "error": err.Error()})
	}
}

type reactivateLicenseRequest struct {
	Reason            string  `json:"reason"`
	NewAssignmentDate string  `json:"newAssignmentDate"`
	AttachmentData    *string `json:"attachmentData"`
}

// Reactivate handles PUT /api/licenses/:id/reactivate. Unknown ids are a
// hard 404 here; no ticket is created in that case.
func (h *LicenseHandler) Reactivate(c *gin.Context) {
	id := c.Param("id")
	var req reactivateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Reactivation reason and new assignment date are required"})
		return
	}
	if req.Reason == "" || req.NewAssignmentDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Reactivation reason and new assignment date are required"})
		return
	}
	newDate, err := parseDate(req.NewAssignmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid newAssignmentDate, expected YYYY-MM-DD"})
		return
	}

	ticketID, err := h.svc.Reactivate(c.Request.Context(), id, req.Reason, newDate, req.AttachmentData)
	switch {
	case err == nil:
		h.producer.ProduceAuditEvent(c.Request.Context(), "license.reactivated", map[string]interface{}{
			"license_id": id,
			"ticket_id":  ticketID,
		})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "License reactivated successfully"})
	case errors.Is(err, errs.ErrLicenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "License not found or already active"})
	default:
		if ve, ok := errs.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": ve.Message("Missing required reactivation data")})
			return
		}
		log.Error().Err(err).Str("license_id", id).Msg("reactivate license failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error", "error": err.Error()})
	}
}

func queryDate(c *gin.Context, name string) (*model.Date, error) {
	return parseDate(c.Query(name))
}

func parseDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
