package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func newRequestServiceForTest(users ...*models.User) (*RequestService, *fakeRequestRepo, *mockDonationRepo) {
	requestRepo := newFakeRequestRepo()
	donationRepo := &mockDonationRepo{}
	svc := NewRequestService(requestRepo, userRepoWith(users...), donationRepo, disabledNotifier(), NewChangeFeed())
	return svc, requestRepo, donationRepo
}

func testPatient() *models.User {
	return &models.User{ID: 1, Username: "alice", Role: "PATIENT", FullName: "Alice P", BloodGroup: "A+"}
}

func testDonor() *models.User {
	return &models.User{ID: 2, Username: "bob", Role: "DONOR", FullName: "Bob D", BloodGroup: "A+"}
}

func acceptTomorrow() *AcceptRequestInput {
	return &AcceptRequestInput{ScheduledDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02")}
}

func TestRequestCreateAndListForPatient(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{
		BloodType: "A+",
		Kind:      "emergency",
		Notes:     "surgery on friday",
	})
	assert.NoError(t, err)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "emergency", created.Kind)
	assert.NotZero(t, created.ID)

	list, err := svc.ListForPatient(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// Other patients see nothing
	other, err := svc.ListForPatient(ctx, 99)
	assert.NoError(t, err)
	assert.Empty(t, other)
}

func TestRequestCreateDefaultsToNormalKind(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient())

	created, err := svc.Create(context.Background(), 1, &CreateRequestInput{BloodType: "O-"})
	assert.NoError(t, err)
	assert.Equal(t, "normal", created.Kind)
}

func TestRequestCreateValidation(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "X+"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+", Kind: "urgent"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err = svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+", ValidUntil: yesterday})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRequestCreateRecordsEvent(t *testing.T) {
	svc, repo, _ := newRequestServiceForTest(testPatient())

	created, err := svc.Create(context.Background(), 1, &CreateRequestInput{BloodType: "B+"})
	assert.NoError(t, err)

	events, err := svc.History(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "pending", events[0].ToStatus)
	assert.Equal(t, uint(1), events[0].PerformedBy)
	assert.Len(t, repo.events, 1)
}

func TestRequestAcceptHappyPath(t *testing.T) {
	svc, _, donationRepo := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	accepted, err := svc.Accept(ctx, created.ID, 2, &AcceptRequestInput{ScheduledDate: tomorrow})
	assert.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)
	assert.NotNil(t, accepted.DonorID)
	assert.Equal(t, uint(2), *accepted.DonorID)
	assert.NotNil(t, accepted.ScheduledDate)

	// Accepting also books the donation slot
	assert.EqualValues(t, 1, donationRepo.createCalls)
}

func TestRequestAcceptRequiresScheduledDate(t *testing.T) {
	svc, repo, donationRepo := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)

	_, err = svc.Accept(ctx, created.ID, 2, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Accept(ctx, created.ID, 2, &AcceptRequestInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// An accepted request always carries a date; a dateless accept never
	// commits and never books a donation
	stored, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)
	assert.Nil(t, stored.DonorID)
	assert.Nil(t, stored.ScheduledDate)
	assert.EqualValues(t, 0, donationRepo.createCalls)
}

func TestRequestAcceptRejectsPastDate(t *testing.T) {
	svc, repo, donationRepo := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err = svc.Accept(ctx, created.ID, 2, &AcceptRequestInput{ScheduledDate: yesterday})
	assert.ErrorIs(t, err, domain.ErrPastDate)
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)
	assert.EqualValues(t, 0, donationRepo.createCalls)
}

func TestRequestAcceptOnNonPendingFails(t *testing.T) {
	svc, repo, _ := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)

	_, err = svc.Accept(ctx, created.ID, 2, acceptTomorrow())
	assert.NoError(t, err)

	// Second accept must fail and leave the stored record untouched
	_, err = svc.Accept(ctx, created.ID, 2, acceptTomorrow())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "accepted", stored.Status)
}

func TestRequestAcceptRaceHasOneWinner(t *testing.T) {
	svc, repo, _ := newRequestServiceForTest(testPatient(), testDonor(),
		&models.User{ID: 3, Username: "carol", Role: "DONOR", FullName: "Carol D", BloodGroup: "A+"})
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, donorID := range []uint{2, 3} {
		wg.Add(1)
		go func(i int, donorID uint) {
			defer wg.Done()
			_, errs[i] = svc.Accept(ctx, created.ID, donorID, acceptTomorrow())
		}(i, donorID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners)

	stored, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "accepted", stored.Status)
}

func TestRequestFullLifecycle(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "O+", Kind: "normal"})
	assert.NoError(t, err)

	accepted, err := svc.Accept(ctx, created.ID, 2, acceptTomorrow())
	assert.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)

	completed, err := svc.Complete(ctx, created.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	// Terminal: no further transitions
	_, err = svc.Cancel(ctx, created.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.Complete(ctx, created.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Audit trail reads oldest first
	events, err := svc.History(ctx, created.ID)
	assert.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, "pending", events[0].ToStatus)
	assert.Equal(t, "accepted", events[1].ToStatus)
	assert.Equal(t, "completed", events[2].ToStatus)
}

func TestRequestCompleteRequiresAccepted(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "AB-"})
	assert.NoError(t, err)

	_, err = svc.Complete(ctx, created.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRequestCancelFromPendingAndDoubleCancel(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "B-"})
	assert.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, created.ID, 1, "no longer needed")
	assert.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = svc.Cancel(ctx, created.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRequestNotFound(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	_, err := svc.GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Accept(ctx, 42, 2, acceptTomorrow())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Cancel(ctx, 42, 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.History(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestListForDonorMatchesBloodGroup(t *testing.T) {
	svc, _, _ := newRequestServiceForTest(testPatient(), testDonor())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)
	_, err = svc.Create(ctx, 1, &CreateRequestInput{BloodType: "O-"})
	assert.NoError(t, err)

	// Donor 2 has blood group A+ and only sees the matching request
	matching, err := svc.ListForDonor(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, matching, 1)
	assert.Equal(t, "A+", matching[0].BloodType)
}

func TestRequestChangeFeedPublishesOnTransitions(t *testing.T) {
	feed := NewChangeFeed()
	svc := NewRequestService(newFakeRequestRepo(), userRepoWith(testPatient(), testDonor()),
		&mockDonationRepo{}, disabledNotifier(), feed)
	ctx := context.Background()

	events, cancel := feed.Subscribe()
	defer cancel()

	created, err := svc.Create(ctx, 1, &CreateRequestInput{BloodType: "A+"})
	assert.NoError(t, err)
	_, err = svc.Accept(ctx, created.ID, 2, acceptTomorrow())
	assert.NoError(t, err)

	first := <-events
	assert.Equal(t, CollectionRequests, first.Collection)
	assert.Equal(t, "created", first.Action)
	second := <-events
	assert.Equal(t, "updated", second.Action)
	assert.Equal(t, created.ID, second.EntityID)
}
