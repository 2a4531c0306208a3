package servicebus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"social-scheduler/domain/repository"
)

// OutcomeSender delivers dispatch outcome notifications to an Azure Service
// Bus queue. Authentication goes through the default credential chain, so
// managed identity works in Azure and az login works locally.
type OutcomeSender struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
}

type outcomeMessage struct {
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOutcomeSender(namespace, queue string) (*OutcomeSender, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, err
	}
	sender, err := client.NewSender(queue, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, err
	}
	return &OutcomeSender{client: client, sender: sender}, nil
}

func (s *OutcomeSender) Notify(ctx context.Context, userID, subject, body string) error {
	payload, err := json.Marshal(outcomeMessage{
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.sender.SendMessage(ctx, &azservicebus.Message{
		Body:        payload,
		ContentType: stringPtr("application/json"),
	}, nil)
}

func (s *OutcomeSender) Close(ctx context.Context) error {
	if err := s.sender.Close(ctx); err != nil {
		return err
	}
	return s.client.Close(ctx)
}

func stringPtr(s string) *string { return &s }

var _ repository.INotifier = (*OutcomeSender)(nil)
