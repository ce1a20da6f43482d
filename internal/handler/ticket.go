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

type TicketHandler struct {
	svc      *service.TicketService
	producer kafka.AuditEventProducer
}

func NewTicketHandler(svc *service.TicketService, producer kafka.AuditEventProducer) *TicketHandler {
	return &TicketHandler{svc: svc, producer: producer}
}

func (h *TicketHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list tickets failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error", "error": err.Error()})
		return
	}
	if items == nil {
		items = []model.Ticket{}
	}
	c.JSON(http.StatusOK, items)
}

type createTicketRequest struct {
	TicketID  string `json:"ticketId"`
	Action    string `json:"action"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Notes     string `json:"notes"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	err := h.svc.Create(c.Request.Context(), service.CreateTicketInput{
		TicketID:  req.TicketID,
		Action:    req.Action,
		Status:    req.Status,
		Timestamp: req.Timestamp,
		Notes:     req.Notes,
	})
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": ve.Message("Missing required ticket data")})
			return
		}
		log.Error().Err(err).Str("ticket_id", req.TicketID).Msg("create ticket failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error", "error": err.Error()})
		return
	}
	h.producer.ProduceAuditEvent(c.Request.Context(), "ticket.created", map[string]interface{}{
		"ticket_id": req.TicketID,
		"status":    req.Status,
	})
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Ticket added successfully"})
}

type updateTicketRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// Update handles PUT /api/tickets/:id. At least one of status/notes must be
// provided; an empty status counts as absent, an empty notes clears them.
func (h *TicketHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	statusProvided := req.Status != nil && *req.Status != ""
	notesProvided := req.Notes != nil && *req.Notes != ""
	if !statusProvided && !notesProvided {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "New status or notes are required for update"})
		return
	}

	err := h.svc.Update(c.Request.Context(), id, service.UpdateTicketInput{Status: req.Status, Notes: req.Notes})
	switch {
	case err == nil:
		h.producer.ProduceAuditEvent(c.Request.Context(), "ticket.updated", map[string]interface{}{"ticket_id": id})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ticket updated successfully"})
	case errors.Is(err, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Ticket not found"})
	default:
		log.Error().Err(err).Str("ticket_id", id).Msg("update ticket failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error", "error": err.Error()})
	}
}
