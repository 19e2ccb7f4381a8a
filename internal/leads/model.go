package leads

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceContactForm marks leads captured by the website's contact form.
const SourceContactForm = "website_contact_form"

// Status tracks where a lead is in the sales follow-up.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusClosed    Status = "closed"
)

// Service is a service category offered on the contact form.
type Service string

const (
	ServiceCloudMigration   Service = "cloud_migration"
	ServiceSecurity         Service = "security"
	ServiceOptimization     Service = "optimization"
	ServiceTeamAugmentation Service = "team_augmentation"
	ServiceDataArchitecture Service = "data_architecture"
	ServiceDevOps           Service = "devops"
	ServiceConsulting       Service = "consulting"
)

var knownServices = map[Service]struct{}{
	ServiceCloudMigration:   {},
	ServiceSecurity:         {},
	ServiceOptimization:     {},
	ServiceTeamAugmentation: {},
	ServiceDataArchitecture: {},
	ServiceDevOps:           {},
	ServiceConsulting:       {},
}

// Known reports whether s is one of the categories listed on the form.
func (s Service) Known() bool {
	_, ok := knownServices[s]
	return ok
}

// Lead represents an inquiry submitted through the contact form.
// Optional fields are nil when the visitor left them blank.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Phone     *string   `json:"phone"`
	Message   string    `json:"message"`
	Service   *Service  `json:"service"`
	Source    string    `json:"source"`
	Status    Status    `json:"status"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitRequest is the contact form body.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Service string `json:"service"`
}

// UnmarshalJSON accepts numbers as text, so a phone typed as 5550100 is kept
// as "5550100". null reads as an empty field. Objects, arrays and booleans are
// rejected.
func (r *SubmitRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"name", &r.Name},
		{"email", &r.Email},
		{"company", &r.Company},
		{"phone", &r.Phone},
		{"message", &r.Message},
		{"service", &r.Service},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		text, err := formText(value)
		if err != nil {
			return fmt.Errorf("leads: field %s: %w", f.key, err)
		}
		*f.dst = text
	}
	return nil
}

func formText(value json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text, nil
	}
	var number json.Number
	if err := json.Unmarshal(value, &number); err == nil {
		return number.String(), nil
	}
	return "", fmt.Errorf("expected text, got %s", value)
}
