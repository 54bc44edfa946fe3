package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Hand-written mocks with function fields so each test overrides only what
// it needs. Call counters are atomic because some tests exercise the
// services concurrently.

// ============================================================
// UserRepository mock
// ============================================================

type mockUserRepo struct {
	CreateFn           func(ctx context.Context, user *models.User) error
	GetByIDFn          func(ctx context.Context, id uint) (*models.User, error)
	GetByUsernameFn    func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	UpdateFn           func(ctx context.Context, user *models.User) error
	DeleteFn           func(ctx context.Context, id uint) error
	ListFn             func(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	SearchDonorsFn     func(ctx context.Context, bloodGroup, query string, limit int) ([]*models.User, error)
	ExistsByUsernameFn func(ctx context.Context, username string) (bool, error)
	ExistsByEmailFn    func(ctx context.Context, email string) (bool, error)

	getByIDCalls int32
}

var _ repositories.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.CreateFn(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	atomic.AddInt32(&m.getByIDCalls, 1)
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetByUsernameFn(ctx, username)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	return m.UpdateFn(ctx, user)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uint) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return m.ListFn(ctx, offset, limit)
}

func (m *mockUserRepo) SearchDonors(ctx context.Context, bloodGroup, query string, limit int) ([]*models.User, error) {
	return m.SearchDonorsFn(ctx, bloodGroup, query, limit)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.ExistsByUsernameFn(ctx, username)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.ExistsByEmailFn(ctx, email)
}

// userRepoWith returns a mock that resolves every lookup to the given users
func userRepoWith(users ...*models.User) *mockUserRepo {
	byID := make(map[uint]*models.User)
	for _, u := range users {
		byID[u.ID] = u
	}
	return &mockUserRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			if u, ok := byID[id]; ok {
				return u, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}

// ============================================================
// RefreshTokenRepository mock
// ============================================================

type mockRefreshTokenRepo struct {
	CreateFn            func(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHashFn    func(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeFn            func(ctx context.Context, id uint) error
	RevokeByTokenHashFn func(ctx context.Context, tokenHash string) error
	RevokeAllByUserIDFn func(ctx context.Context, userID uint) error
	DeleteExpiredFn     func(ctx context.Context) error

	revokeAllCalls int32
}

var _ repositories.RefreshTokenRepository = (*mockRefreshTokenRepo)(nil)

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	return m.GetByTokenHashFn(ctx, tokenHash)
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, id uint) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, id)
	}
	return nil
}

func (m *mockRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if m.RevokeByTokenHashFn != nil {
		return m.RevokeByTokenHashFn(ctx, tokenHash)
	}
	return nil
}

func (m *mockRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	atomic.AddInt32(&m.revokeAllCalls, 1)
	if m.RevokeAllByUserIDFn != nil {
		return m.RevokeAllByUserIDFn(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx)
	}
	return nil
}

// ============================================================
// RequestRepository mock
// ============================================================

type mockRequestRepo struct {
	CreateFn        func(ctx context.Context, request *models.BloodRequest) error
	GetByIDFn       func(ctx context.Context, id uint) (*models.BloodRequest, error)
	ListByPatientFn func(ctx context.Context, patientID uint) ([]*models.BloodRequest, error)
	ListMatchingFn  func(ctx context.Context, bloodType string) ([]*models.BloodRequest, error)
	ListFn          func(ctx context.Context, offset, limit int) ([]*models.BloodRequest, int64, error)
	TransitionFn    func(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (bool, error)
	ExpirePendingFn func(ctx context.Context, before time.Time) (int64, error)
	CreateEventFn   func(ctx context.Context, event *models.RequestEvent) error
	ListEventsFn    func(ctx context.Context, requestID uint) ([]*models.RequestEvent, error)

	transitionCalls int32
	eventCalls      int32
}

var _ repositories.RequestRepository = (*mockRequestRepo)(nil)

func (m *mockRequestRepo) Create(ctx context.Context, request *models.BloodRequest) error {
	return m.CreateFn(ctx, request)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockRequestRepo) ListByPatient(ctx context.Context, patientID uint) ([]*models.BloodRequest, error) {
	return m.ListByPatientFn(ctx, patientID)
}

func (m *mockRequestRepo) ListMatching(ctx context.Context, bloodType string) ([]*models.BloodRequest, error) {
	return m.ListMatchingFn(ctx, bloodType)
}

func (m *mockRequestRepo) List(ctx context.Context, offset, limit int) ([]*models.BloodRequest, int64, error) {
	return m.ListFn(ctx, offset, limit)
}

func (m *mockRequestRepo) Transition(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (bool, error) {
	atomic.AddInt32(&m.transitionCalls, 1)
	return m.TransitionFn(ctx, id, from, to, updates)
}

func (m *mockRequestRepo) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	return m.ExpirePendingFn(ctx, before)
}

func (m *mockRequestRepo) CreateEvent(ctx context.Context, event *models.RequestEvent) error {
	atomic.AddInt32(&m.eventCalls, 1)
	if m.CreateEventFn != nil {
		return m.CreateEventFn(ctx, event)
	}
	return nil
}

func (m *mockRequestRepo) ListEvents(ctx context.Context, requestID uint) ([]*models.RequestEvent, error) {
	return m.ListEventsFn(ctx, requestID)
}

// ============================================================
// RequestRepository in-memory fake
// ============================================================

// fakeRequestRepo is a stateful in-memory store whose Transition behaves like
// the conditional UPDATE in the real repository: compare-and-set under one
// lock, so races resolve to exactly one winner.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uint]*models.BloodRequest
	events   []*models.RequestEvent
	nextID   uint
}

var _ repositories.RequestRepository = (*fakeRequestRepo)(nil)

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uint]*models.BloodRequest), nextID: 1}
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.BloodRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request.ID = f.nextID
	f.nextID++
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepo) ListByPatient(ctx context.Context, patientID uint) ([]*models.BloodRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BloodRequest
	for _, request := range f.requests {
		if request.PatientID == patientID {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListMatching(ctx context.Context, bloodType string) ([]*models.BloodRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BloodRequest
	for _, request := range f.requests {
		open := request.Status == "pending" || request.Status == "accepted"
		if open && (bloodType == "" || request.BloodType == bloodType) {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, offset, limit int) ([]*models.BloodRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BloodRequest
	for _, request := range f.requests {
		copied := *request
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) Transition(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = to
	if donorID, ok := updates["donor_id"].(uint); ok {
		request.DonorID = &donorID
	}
	if date, ok := updates["scheduled_date"].(*time.Time); ok {
		request.ScheduledDate = date
	}
	return true, nil
}

func (f *fakeRequestRepo) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	for _, request := range f.requests {
		if request.Status == "pending" && request.ValidUntil != nil && request.ValidUntil.Before(before) {
			request.Status = "cancelled"
			expired++
		}
	}
	return expired, nil
}

func (f *fakeRequestRepo) CreateEvent(ctx context.Context, event *models.RequestEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = uint(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRequestRepo) ListEvents(ctx context.Context, requestID uint) ([]*models.RequestEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.RequestEvent
	for _, event := range f.events {
		if event.RequestID == requestID {
			out = append(out, event)
		}
	}
	return out, nil
}

// ============================================================
// InventoryRepository in-memory fake
// ============================================================

// fakeInventoryRepo is a real in-memory implementation rather than a
// function-field mock: the interesting behavior is the atomic conditional
// delta, and the concurrency test needs it to actually serialize.
type fakeInventoryRepo struct {
	mu      sync.Mutex
	entries map[string]*models.HospitalInventory
	nextID  uint
}

var _ repositories.InventoryRepository = (*fakeInventoryRepo)(nil)

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{entries: make(map[string]*models.HospitalInventory), nextID: 1}
}

func invKey(hospitalID uint, bloodType string) string {
	return fmt.Sprintf("%d/%s", hospitalID, bloodType)
}

func (f *fakeInventoryRepo) EnsureEntry(ctx context.Context, hospitalID uint, bloodType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := invKey(hospitalID, bloodType)
	if _, ok := f.entries[key]; !ok {
		f.entries[key] = &models.HospitalInventory{
			ID:         f.nextID,
			HospitalID: hospitalID,
			BloodType:  bloodType,
		}
		f.nextID++
	}
	return nil
}

func (f *fakeInventoryRepo) AdjustUnits(ctx context.Context, hospitalID uint, bloodType string, delta int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[invKey(hospitalID, bloodType)]
	if !ok {
		return false, nil
	}
	if entry.UnitsAvailable+delta < 0 {
		return false, nil
	}
	entry.UnitsAvailable += delta
	return true, nil
}

func (f *fakeInventoryRepo) SetUnits(ctx context.Context, hospitalID uint, bloodType string, units int) error {
	if err := f.EnsureEntry(ctx, hospitalID, bloodType); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[invKey(hospitalID, bloodType)].UnitsAvailable = units
	return nil
}

func (f *fakeInventoryRepo) Get(ctx context.Context, hospitalID uint, bloodType string) (*models.HospitalInventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[invKey(hospitalID, bloodType)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeInventoryRepo) ListByHospital(ctx context.Context, hospitalID uint) ([]*models.HospitalInventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.HospitalInventory
	for _, entry := range f.entries {
		if entry.HospitalID == hospitalID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ============================================================
// DonationRepository mock
// ============================================================

type mockDonationRepo struct {
	CreateFn       func(ctx context.Context, donation *models.ScheduledDonation) error
	GetByIDFn      func(ctx context.Context, id uint) (*models.ScheduledDonation, error)
	ListUpcomingFn func(ctx context.Context, donorID uint) ([]*models.ScheduledDonation, error)
	ListByDateFn   func(ctx context.Context, date time.Time) ([]*models.ScheduledDonation, error)
	UpdateStatusFn func(ctx context.Context, id uint, from, to string) (bool, error)

	createCalls int32
}

var _ repositories.DonationRepository = (*mockDonationRepo)(nil)

func (m *mockDonationRepo) Create(ctx context.Context, donation *models.ScheduledDonation) error {
	atomic.AddInt32(&m.createCalls, 1)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, donation)
	}
	return nil
}

func (m *mockDonationRepo) GetByID(ctx context.Context, id uint) (*models.ScheduledDonation, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockDonationRepo) ListUpcoming(ctx context.Context, donorID uint) ([]*models.ScheduledDonation, error) {
	return m.ListUpcomingFn(ctx, donorID)
}

func (m *mockDonationRepo) ListByDate(ctx context.Context, date time.Time) ([]*models.ScheduledDonation, error) {
	return m.ListByDateFn(ctx, date)
}

func (m *mockDonationRepo) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	return m.UpdateStatusFn(ctx, id, from, to)
}

// ============================================================
// MessageRepository mock
// ============================================================

type mockMessageRepo struct {
	CreateFn       func(ctx context.Context, message *models.Message) error
	ConversationFn func(ctx context.Context, userID, partnerID uint) ([]*models.Message, error)
	MarkReadFn     func(ctx context.Context, userID, partnerID uint) error
	CountUnreadFn  func(ctx context.Context, userID uint) (int64, error)

	markReadCalls int32
}

var _ repositories.MessageRepository = (*mockMessageRepo)(nil)

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	return m.CreateFn(ctx, message)
}

func (m *mockMessageRepo) Conversation(ctx context.Context, userID, partnerID uint) ([]*models.Message, error) {
	return m.ConversationFn(ctx, userID, partnerID)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, userID, partnerID uint) error {
	atomic.AddInt32(&m.markReadCalls, 1)
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, userID, partnerID)
	}
	return nil
}

func (m *mockMessageRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return m.CountUnreadFn(ctx, userID)
}

// disabledNotifier returns a notification service with no webhook configured,
// so every Notify call is a no-op
func disabledNotifier() *NotificationService {
	return &NotificationService{enabled: false}
}
