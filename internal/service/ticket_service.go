package service

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/psds-microservice/license-tracker/internal/errs"
	"github.com/psds-microservice/license-tracker/internal/model"
)

// ticketWireTimestamp is the accepted wire format for ticket timestamps:
// ISO-8601 with fractional seconds and a UTC marker.
const ticketWireTimestamp = "2006-01-02T15:04:05.999999Z"

type CreateTicketInput struct {
	TicketID  string
	Action    string
	Status    string
	Timestamp string
	Notes     string
}

// UpdateTicketInput is a sparse update of status and/or notes. A non-nil
// empty Notes clears the column; an empty Status is treated as absent.
type UpdateTicketInput struct {
	Status *string
	Notes  *string
}

type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// List returns all tickets ordered by timestamp descending.
func (s *TicketService) List(ctx context.Context) ([]model.Ticket, error) {
	var items []model.Ticket
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Find(&items).Error; err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	return items, nil
}

// Create validates required fields and inserts the ticket. The wire
// timestamp is truncated (not rounded) to second precision before storage.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) error {
	var missing []string
	if in.TicketID == "" {
		missing = append(missing, "ticketId")
	}
	if in.Action == "" {
		missing = append(missing, "action")
	}
	if in.Status == "" {
		missing = append(missing, "status")
	}
	if in.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return errs.MissingFields(missing...)
	}

	ts, err := ParseTicketTimestamp(in.Timestamp)
	if err != nil {
		return errs.Invalid("Invalid timestamp format, expected YYYY-MM-DDTHH:MM:SS.ffffffZ")
	}

	ticket := model.Ticket{
		TicketID:          in.TicketID,
		ActionDescription: in.Action,
		Status:            in.Status,
		Timestamp:         model.NewDateTime(ts),
		Notes:             optional(in.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		return pkgerrors.WithStack(err)
	}
	return nil
}

// Update writes the provided subset of {status, notes}. Returns
// errs.ErrNoFields when nothing is provided and errs.ErrTicketNotFound when
// the id matches zero rows.
func (s *TicketService) Update(ctx context.Context, id string, in UpdateTicketInput) error {
	changes := map[string]interface{}{}
	if in.Status != nil && *in.Status != "" {
		changes["status"] = *in.Status
	}
	if in.Notes != nil {
		changes["notes"] = *in.Notes
	}
	if len(changes) == 0 {
		return errs.ErrNoFields
	}

	res := s.db.WithContext(ctx).Model(&model.Ticket{}).Where("ticket_id = ?", id).Updates(changes)
	if res.Error != nil {
		return pkgerrors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

// ParseTicketTimestamp parses the wire timestamp and truncates fractional
// seconds. Truncation is deterministic: equal inputs always store equal
// values.
func ParseTicketTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(ticketWireTimestamp, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Second), nil
}
