package request

import (
	"strings"

	domainErrors "github.com/bazaarly/backbone/pkg/domain/errors"
)

type CheckRateLimitRequest struct {
	Policy     string `json:"policy"`     // @required
	Identifier string `json:"identifier"` // @required
}

func (r *CheckRateLimitRequest) Validate() error {
	r.Policy = strings.TrimSpace(r.Policy)
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Policy == "" {
		return domainErrors.NewValidationError("policy", "policy is required")
	}
	if r.Identifier == "" {
		return domainErrors.NewValidationError("identifier", "identifier is required")
	}
	return nil
}
