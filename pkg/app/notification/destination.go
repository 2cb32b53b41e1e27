package notification

import (
	"context"
	"strings"

	domainErrors "github.com/bazaarly/backbone/pkg/domain/errors"
	domain "github.com/bazaarly/backbone/pkg/domain/notification"
)

// resolveDestination returns the direct address of the job when present and
// the stored contact address for the job's channel otherwise.
func resolveDestination(ctx context.Context, contacts domain.ContactResolver, job *domain.Job) (string, *domain.DispatchError) {
	if job.Recipient.HasAddress() {
		return strings.TrimSpace(job.Recipient.Address), nil
	}
	if job.Recipient.UserID == nil {
		return "", domain.NewDestinationUnresolved("job has neither a user nor an address")
	}
	userID := *job.Recipient.UserID
	if job.Channel == domain.ChannelInApp {
		return userID.String(), nil
	}
	if contacts == nil {
		return "", domain.NewDestinationUnresolved("no contact lookup configured for user %s", userID)
	}

	contact, err := contacts.Resolve(ctx, userID)
	if err != nil {
		if domainErrors.IsNotFoundError(err) {
			return "", domain.NewDestinationUnresolved("no contact on file for user %s", userID)
		}
		return "", domain.NewDestinationUnresolved("contact lookup for user %s failed: %v", userID, err)
	}
	address := strings.TrimSpace(contact.AddressFor(job.Channel))
	if address == "" {
		return "", domain.NewDestinationUnresolved("no %s on file for user %s", job.Channel, userID)
	}
	return address, nil
}
