package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/psds-microservice/license-tracker/internal/errs"
	"github.com/psds-microservice/license-tracker/internal/model"
)

// LicenseFilter holds the optional, independently combinable list filters.
// All provided filters are AND-combined.
type LicenseFilter struct {
	System              string
	Status              string
	Query               string
	AssignmentDateStart *model.Date
	AssignmentDateEnd   *model.Date
}

// CreateLicenseInput carries the fields accepted by Create. Dates are nil
// when absent so missing-field validation can name them.
type CreateLicenseInput struct {
	TicketID       string
	System         model.System
	Name           string
	Mobile         string
	Email          string
	RequestType    string
	AssignmentDate *model.Date
	ExpiryDate     *model.Date
	Status         model.LicenseStatus
	Details        map[string]interface{}
	AttachmentData string
	RequestedDate  *model.Date
	RequestorName  string
}

// UpdateLicenseInput is a sparse update: only non-nil fields are written.
type UpdateLicenseInput struct {
	Status         *string
	RemovalDetails map[string]interface{}
	AttachmentData *string
	Details        map[string]interface{}
}

type LicenseService struct {
	db *gorm.DB
}

func NewLicenseService(db *gorm.DB) *LicenseService {
	return &LicenseService{db: db}
}

// List returns licenses matching the filter, ordered by assignment date
// descending. Ties on assignment date break by created_at descending, then
// id, so the order is stable. JSON columns are decoded per record and per
// field: a malformed value yields an empty map and a warning, never an error.
func (s *LicenseService) List(ctx context.Context, f LicenseFilter) ([]model.License, error) {
	tx := s.db.WithContext(ctx).Model(&model.License{})
	if f.System != "" {
		tx = tx.Where("system = ?", f.System)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		// LOWER/LIKE instead of ILIKE so Postgres and the sqlite test DB agree.
		pattern := "%" + strings.ToLower(f.Query) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(mobile) LIKE ?",
			pattern, pattern, pattern)
	}
	if f.AssignmentDateStart != nil {
		tx = tx.Where("assignment_date >= ?", *f.AssignmentDateStart)
	}
	if f.AssignmentDateEnd != nil {
		tx = tx.Where("assignment_date <= ?", *f.AssignmentDateEnd)
	}

	var items []model.License
	if err := tx.Order("assignment_date DESC, created_at DESC, id").Find(&items).Error; err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	for i := range items {
		decodeLicenseJSON(&items[i])
	}
	return items, nil
}

// Create validates required fields, generates a fresh id and inserts the
// license. Details default to an empty object; removal details are always
// unset at creation.
func (s *LicenseService) Create(ctx context.Context, in CreateLicenseInput) (string, error) {
	var missing []string
	if in.TicketID == "" {
		missing = append(missing, "ticketId")
	}
	if in.System == "" {
		missing = append(missing, "system")
	}
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.AssignmentDate == nil {
		missing = append(missing, "assignmentDate")
	}
	if in.RequestedDate == nil {
		missing = append(missing, "requestedDate")
	}
	if in.RequestorName == "" {
		missing = append(missing, "requestorName")
	}
	if len(missing) > 0 {
		return "", errs.MissingFields(missing...)
	}
	if err := model.ValidateDetails(in.System, in.Details); err != nil {
		return "", err
	}

	details := in.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsRaw, err := json.Marshal(details)
	if err != nil {
		return "", pkgerrors.WithStack(err)
	}

	lic := model.License{
		ID:             uuid.NewString(),
		TicketID:       in.TicketID,
		System:         in.System,
		Name:           in.Name,
		Mobile:         optional(in.Mobile),
		Email:          optional(in.Email),
		RequestType:    in.RequestType,
		AssignmentDate: *in.AssignmentDate,
		ExpiryDate:     in.ExpiryDate,
		Status:         in.Status,
		DetailsRaw:     datatypes.JSON(detailsRaw),
		AttachmentData: optional(in.AttachmentData),
		RequestedDate:  *in.RequestedDate,
		RequestorName:  in.RequestorName,
	}
	if lic.RequestType == "" {
		lic.RequestType = model.DefaultRequestType
	}
	if lic.Status == "" {
		lic.Status = model.LicenseStatusActive
	}

	if err := s.db.WithContext(ctx).Create(&lic).Error; err != nil {
		return "", pkgerrors.WithStack(err)
	}
	return lic.ID, nil
}

// Update writes the provided subset of {status, removal details, attachment,
// details} and always refreshes updated_at. Returns errs.ErrNoFields without
// touching storage when nothing is provided, and errs.ErrLicenseNotFound
// when the id matches zero rows. Concurrent updates to the same id are
// last-writer-wins.
func (s *LicenseService) Update(ctx context.Context, id string, in UpdateLicenseInput) error {
	changes := map[string]interface{}{}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.RemovalDetails != nil {
		raw, err := json.Marshal(in.RemovalDetails)
		if err != nil {
			return pkgerrors.WithStack(err)
		}
		changes["removal_details_json"] = datatypes.JSON(raw)
	}
	if in.AttachmentData != nil {
		changes["attachment_data"] = *in.AttachmentData
	}
	if in.Details != nil {
		system, err := s.systemOf(ctx, id)
		if err != nil {
			return err
		}
		if err := model.ValidateDetails(system, in.Details); err != nil {
			return err
		}
		raw, err := json.Marshal(in.Details)
		if err != nil {
			return pkgerrors.WithStack(err)
		}
		changes["details_json"] = datatypes.JSON(raw)
	}
	if len(changes) == 0 {
		return errs.ErrNoFields
	}
	changes["updated_at"] = time.Now().UTC()

	res := s.db.WithContext(ctx).Model(&model.License{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return pkgerrors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrLicenseNotFound
	}
	return nil
}

// Reactivate resets the license to Active with a fresh assignment date,
// clears expiry, removal details and any stored attachment (replaced when a
// new one is supplied), and appends an audit ticket, all in one
// transaction. The zero-row guard runs before the ticket insert, so a
// missing license never produces a ticket; a failed ticket insert rolls the
// license update back.
func (s *LicenseService) Reactivate(ctx context.Context, id, reason string, newAssignmentDate *model.Date, attachment *string) (string, error) {
	var missing []string
	if reason == "" {
		missing = append(missing, "reason")
	}
	if newAssignmentDate == nil {
		missing = append(missing, "newAssignmentDate")
	}
	if len(missing) > 0 {
		return "", errs.MissingFields(missing...)
	}

	ticketID := reactivationTicketID()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changes := map[string]interface{}{
			"status":               model.LicenseStatusActive,
			"assignment_date":      *newAssignmentDate,
			"expiry_date":          nil,
			"removal_details_json": nil,
			"attachment_data":      attachment,
			"updated_at":           time.Now().UTC(),
		}
		res := tx.Model(&model.License{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return pkgerrors.WithStack(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrLicenseNotFound
		}

		notes := fmt.Sprintf("License reactivated by user input. Reason: %s", reason)
		ticket := model.Ticket{
			TicketID: ticketID,
			ActionDescription: fmt.Sprintf("Reactivate License for ID %s (Reason: %s, New Assignment Date: %s)",
				id, reason, newAssignmentDate),
			Status:    "Closed",
			Timestamp: model.NewDateTime(time.Now()),
			Notes:     &notes,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return pkgerrors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return ticketID, nil
}

func (s *LicenseService) systemOf(ctx context.Context, id string) (model.System, error) {
	var lic model.License
	err := s.db.WithContext(ctx).Select("system").Where("id = ?", id).First(&lic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errs.ErrLicenseNotFound
	}
	if err != nil {
		return "", pkgerrors.WithStack(err)
	}
	return lic.System, nil
}

func reactivationTicketID() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "REACTIVATE-" + hex[:8]
}

func decodeLicenseJSON(lic *model.License) {
	lic.Details = decodeJSONField(lic.ID, "details_json", lic.DetailsRaw)
	lic.RemovalDetails = decodeJSONField(lic.ID, "removal_details_json", lic.RemovalDetailsRaw)
}

// decodeJSONField turns a stored JSON column into a map. NULL, empty and
// malformed values all yield an empty map; malformed values log a warning.
func decodeJSONField(id, field string, raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Str("license_id", id).Str("field", field).Err(err).
			Msg("could not decode stored JSON, substituting empty object")
		return map[string]interface{}{}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
