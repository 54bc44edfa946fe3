package services

import (
	"context"
	"log"
	"time"

	"lifelink-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService runs scheduled background jobs: morning reminders for
// today's donation appointments, and an hourly sweep that cancels pending
// requests whose valid_until date has passed.
type ReminderService struct {
	donationRepo repositories.DonationRepository
	requestRepo  repositories.RequestRepository
	userRepo     repositories.UserRepository
	notify       *NotificationService
	feed         *ChangeFeed
	cron         *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(
	donationRepo repositories.DonationRepository,
	requestRepo repositories.RequestRepository,
	userRepo repositories.UserRepository,
	notify *NotificationService,
	feed *ChangeFeed,
) *ReminderService {
	return &ReminderService{
		donationRepo: donationRepo,
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		notify:       notify,
		feed:         feed,
		cron:         cron.New(),
	}
}

// Start registers and launches the cron jobs
func (s *ReminderService) Start() {
	// Donation reminders at 08:30 every day
	s.cron.AddFunc("30 8 * * *", s.sendDonationReminders)

	// Expire stale pending requests at the top of every hour
	s.cron.AddFunc("0 * * * *", s.expirePendingRequests)

	s.cron.Start()
	log.Println("🚀 ReminderService started")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

// sendDonationReminders notifies every donor with an appointment today
func (s *ReminderService) sendDonationReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	donations, err := s.donationRepo.ListByDate(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Reminder sweep failed to list donations: %v", err)
		return
	}

	for _, donation := range donations {
		donor, err := s.userRepo.GetByID(ctx, donation.DonorID)
		if err != nil {
			log.Printf("⚠️ Reminder skipped donation %d: %v", donation.ID, err)
			continue
		}
		s.notify.NotifyDonationReminder(donor.FullName, donation)
	}

	if len(donations) > 0 {
		log.Printf("✅ Sent %d donation reminders", len(donations))
	}
}

// expirePendingRequests cancels pending requests past their valid_until date
func (s *ReminderService) expirePendingRequests() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.requestRepo.ExpirePending(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Expiry sweep failed: %v", err)
		return
	}

	if expired > 0 {
		log.Printf("✅ Expired %d stale pending requests", expired)
		s.feed.Publish(CollectionRequests, 0, "updated")
	}
}
