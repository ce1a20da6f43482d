package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/psds-microservice/license-tracker/internal/errs"
)

// SystemDetails is the typed shape of a license details payload. The payload
// is keyed by a lowercase sub-key matching the license's system; exactly the
// section for that system may be present.
type SystemDetails struct {
	DMS  *DMSDetails  `json:"dms,omitempty"`
	LSQ  *LSQDetails  `json:"lsq,omitempty"`
	CRM  *CRMDetails  `json:"crm,omitempty"`
	Zoho *ZohoDetails `json:"zoho,omitempty"`
}

type DMSDetails struct {
	DealerName   string `json:"dealerName,omitempty"`
	DealerCode   string `json:"dealerCode,omitempty"`
	LocationCode string `json:"locationCode,omitempty"`
	City         string `json:"city,omitempty"`
	HubName      string `json:"hubName,omitempty"`
}

type LSQDetails struct {
	LicenseType        string `json:"licenseType,omitempty"`
	SalesExecutiveName string `json:"salesExecutiveName,omitempty"`
	MobileNumber       string `json:"mobileNumber,omitempty"`
	Team               string `json:"team,omitempty"`
	HubName            string `json:"hubName,omitempty"`
	City               string `json:"city,omitempty"`
}

type CRMDetails struct {
	DealerName string `json:"dealerName,omitempty"`
	HubName    string `json:"hubName,omitempty"`
	City       string `json:"city,omitempty"`
}

type ZohoDetails struct {
	FirstName          string `json:"firstName,omitempty"`
	LastName           string `json:"lastName,omitempty"`
	EmailAddress       string `json:"emailAddress,omitempty"`
	Role               string `json:"role,omitempty"`
	AccountCreatedTime string `json:"accountCreatedTime,omitempty"`
}

// detailsSection maps a system to its expected sub-key.
func detailsSection(system System) string {
	switch system {
	case SystemDMS:
		return "dms"
	case SystemLSQ:
		return "lsq"
	case SystemCRM:
		return "crm"
	case SystemZoho:
		return "zoho"
	default:
		return ""
	}
}

// ValidateDetails checks a details payload against the tagged-union shape for
// the given system. An empty payload is valid. A non-empty payload must
// decode into SystemDetails (unknown top-level keys rejected) and must not
// carry a section for a different system.
func ValidateDetails(system System, payload map[string]interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return errs.Invalid(fmt.Sprintf("details_json is not serializable: %v", err))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var details SystemDetails
	if err := dec.Decode(&details); err != nil {
		return errs.Invalid(fmt.Sprintf("details_json does not match any known system shape: %v", err))
	}

	own := detailsSection(system)
	for section, present := range map[string]bool{
		"dms":  details.DMS != nil,
		"lsq":  details.LSQ != nil,
		"crm":  details.CRM != nil,
		"zoho": details.Zoho != nil,
	} {
		if present && section != own {
			return errs.Invalid(fmt.Sprintf("details_json carries %q section for a %s license", section, system))
		}
	}
	return nil
}
