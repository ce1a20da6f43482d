package model

import (
	"time"

	"gorm.io/datatypes"
)

// System identifies the downstream system a license was granted on.
type System string

const (
	SystemDMS  System = "DMS"
	SystemLSQ  System = "LSQ"
	SystemCRM  System = "CRM"
	SystemZoho System = "ZOHO"
)

type LicenseStatus string

const (
	LicenseStatusActive   LicenseStatus = "Active"
	LicenseStatusInactive LicenseStatus = "Inactive"
)

// DefaultRequestType is written when the caller does not specify one.
const DefaultRequestType = "Add License"

// License is a tracked grant of access to a downstream system for a named
// holder. The details / removal-details columns hold serialized JSON and are
// decoded into the companion map fields at the service boundary only.
type License struct {
	ID             string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	TicketID       string        `gorm:"type:varchar(64);not null" json:"ticket_id"`
	System         System        `gorm:"type:varchar(16);index;not null" json:"system"`
	Name           string        `gorm:"type:varchar(255);not null" json:"name"`
	Mobile         *string       `gorm:"type:varchar(32)" json:"mobile"`
	Email          *string       `gorm:"type:varchar(255)" json:"email"`
	RequestType    string        `gorm:"type:varchar(64);not null" json:"request_type"`
	AssignmentDate Date          `gorm:"type:date;index;not null" json:"assignment_date"`
	ExpiryDate     *Date         `gorm:"type:date" json:"expiry_date"`
	Status         LicenseStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	DetailsRaw        datatypes.JSON `gorm:"column:details_json" json:"-"`
	RemovalDetailsRaw datatypes.JSON `gorm:"column:removal_details_json" json:"-"`

	// Decoded views of the raw columns, populated on read.
	Details        map[string]interface{} `gorm:"-" json:"details_json"`
	RemovalDetails map[string]interface{} `gorm:"-" json:"removal_details_json"`

	AttachmentData *string   `gorm:"type:text" json:"attachment_data"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	RequestedDate  Date      `gorm:"type:date;not null" json:"requested_date"`
	RequestorName  string    `gorm:"type:varchar(255);not null" json:"requestor_name"`
}

func (License) TableName() string { return "licenses" }

// Ticket is an audit-log entry describing an administrative action.
// TicketID is caller-supplied (or generated with the REACTIVATE- prefix) and
// is the primary key, so duplicate inserts fail at the storage layer.
type Ticket struct {
	TicketID          string   `gorm:"column:ticket_id;type:varchar(64);primaryKey" json:"ticket_id"`
	ActionDescription string   `gorm:"type:text;not null" json:"action_description"`
	Timestamp         DateTime `gorm:"index;not null" json:"timestamp"`
	Status            string   `gorm:"type:varchar(32);not null" json:"status"`
	Notes             *string  `gorm:"type:text" json:"notes"`
}

func (Ticket) TableName() string { return "tickets" }

type User struct {
	Username string `gorm:"type:varchar(64);primaryKey" json:"username"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
}

func (User) TableName() string { return "users" }
