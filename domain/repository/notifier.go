package repository

import "context"

// INotifier delivers a one-way, fire-and-forget outcome message to the user
// through an external channel. Delivery retries and formatting are the
// collaborator's concern.
type INotifier interface {
	Notify(ctx context.Context, userID, subject, body string) error
}
