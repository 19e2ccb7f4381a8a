package leads

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the required fields, then the email shape, and builds a new
// Lead from the request. Blank optional fields become nil.
func Validate(req SubmitRequest) (*Lead, error) {
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}

	lead := &Lead{
		Name:    req.Name,
		Email:   req.Email,
		Company: optional(req.Company),
		Phone:   optional(req.Phone),
		Message: req.Message,
		Source:  SourceContactForm,
		Status:  StatusNew,
	}
	if req.Service != "" {
		svc := Service(req.Service)
		lead.Service = &svc
	}
	return lead, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
