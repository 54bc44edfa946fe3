package services

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"lifelink-api/internal/adapters/persistence/models"
)

// NotificationService delivers best-effort webhook notifications. Delivery
// failures are logged and never propagated: a notification must not roll back
// the mutation that triggered it.
type NotificationService struct {
	webhookURL string
	token      string
	enabled    bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	webhookURL := os.Getenv("NOTIFY_WEBHOOK_URL")
	return &NotificationService{
		webhookURL: webhookURL,
		token:      os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		enabled:    webhookURL != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendWebhook posts a message to the configured webhook
func (s *NotificationService) sendWebhook(message string) error {
	if !s.enabled {
		return nil
	}

	data := url.Values{}
	data.Set("message", message)

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewBufferString(data.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// NotifyNewRequest sends notification for a newly created blood request
func (s *NotificationService) NotifyNewRequest(request *models.BloodRequest, patientName string) {
	urgency := ""
	if request.Kind == "emergency" {
		urgency = " [EMERGENCY]"
	}

	message := fmt.Sprintf(`New blood request%s

Request: #%d
Patient: %s
Blood type: %s
Notes: %s`,
		urgency,
		request.ID,
		patientName,
		request.BloodType,
		request.Notes,
	)

	s.sendWebhook(message)
}

// NotifyRequestAccepted sends notification when a donor commits to a request
func (s *NotificationService) NotifyRequestAccepted(request *models.BloodRequest, donorName string) {
	date := ""
	if request.ScheduledDate != nil {
		date = request.ScheduledDate.Format("2006-01-02")
	}

	message := fmt.Sprintf(`Blood request accepted

Request: #%d
Blood type: %s
Donor: %s
Scheduled: %s`,
		request.ID,
		request.BloodType,
		donorName,
		date,
	)

	s.sendWebhook(message)
}

// NotifyRequestCompleted sends notification when a donation is completed
func (s *NotificationService) NotifyRequestCompleted(request *models.BloodRequest) {
	message := fmt.Sprintf(`Blood donation completed

Request: #%d
Blood type: %s`,
		request.ID,
		request.BloodType,
	)

	s.sendWebhook(message)
}

// NotifyNewMessage sends notification about a new direct message
func (s *NotificationService) NotifyNewMessage(senderName string, receiverID uint) {
	message := fmt.Sprintf(`New message

From: %s
To user: #%d`,
		senderName,
		receiverID,
	)

	s.sendWebhook(message)
}

// NotifyDonationReminder reminds a donor of an upcoming donation
func (s *NotificationService) NotifyDonationReminder(donorName string, donation *models.ScheduledDonation) {
	message := fmt.Sprintf(`Donation reminder

Donor: %s
Scheduled: %s`,
		donorName,
		donation.ScheduledDate.Format("2006-01-02"),
	)

	s.sendWebhook(message)
}
