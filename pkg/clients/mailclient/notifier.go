package mailclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/hsnesn/staffrota/pkg/clients/directory"
	"github.com/hsnesn/staffrota/pkg/notify"
)

// Notifier delivers notification events by email, resolving recipient
// addresses through the directory.
type Notifier struct {
	client *Client
	dir    directory.Directory
}

// NewNotifier wires a mail client and a directory into a notify.Notifier.
func NewNotifier(client *Client, dir directory.Directory) *Notifier {
	return &Notifier{client: client, dir: dir}
}

// Notify renders and sends one event. Delivery failures are returned to the
// dispatcher, which logs and swallows them.
func (n *Notifier) Notify(ctx context.Context, event notify.Event) error {
	user, err := n.dir.ResolveUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient %s: %w", event.UserID, err)
	}

	subject, body := renderEvent(event, user.DisplayName)
	if subject == "" {
		return fmt.Errorf("no template for event kind %q", event.Kind)
	}

	return n.client.SendEmail(user.Email, subject, body)
}

func renderEvent(event notify.Event, displayName string) (subject, body string) {
	switch event.Kind {
	case notify.KindAssignmentsConfirmed:
		subject = "Your assignments are confirmed"
		body = fmt.Sprintf("Hi %s,\n\nYour assignments for %s are confirmed on the following dates:\n\n%s\n",
			displayName, event.Scope.String(), strings.Join(event.Dates, "\n"))
	case notify.KindAvailabilityCleared:
		subject = fmt.Sprintf("Availability cleared for %s", event.Month)
		body = fmt.Sprintf("Hi %s,\n\nYour availability for %s in %s was cleared by the operations team. Please submit again if you can still work that month.\n",
			displayName, event.Month, event.Scope.String())
	}
	return subject, body
}
