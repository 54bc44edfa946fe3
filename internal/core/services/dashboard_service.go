package services

import (
	"context"
	"time"

	"lifelink-api/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregation queries. It reads straight
// from the DB because the numbers are advisory and slightly stale is fine.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers     int64 `json:"total_users"`
	TotalPatients  int64 `json:"total_patients"`
	TotalDonors    int64 `json:"total_donors"`
	TotalHospitals int64 `json:"total_hospitals"`

	// Request Statistics
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	AcceptedRequests  int64 `json:"accepted_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	CancelledRequests int64 `json:"cancelled_requests"`
	EmergencyPending  int64 `json:"emergency_pending"`

	// Monthly Statistics
	RequestsThisMonth  int64 `json:"requests_this_month"`
	DonationsThisMonth int64 `json:"donations_this_month"`

	// Inventory
	TotalUnits  int64                `json:"total_units"`
	UnitsByType []BloodTypeUnitCount `json:"units_by_type"`
}

// BloodTypeUnitCount aggregates stock across all hospitals for one blood type
type BloodTypeUnitCount struct {
	BloodType string `json:"blood_type"`
	Units     int64  `json:"units"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// User counts by role
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", domain.RolePatient).Count(&data.TotalPatients)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", domain.RoleDonor).Count(&data.TotalDonors)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", domain.RoleHospital).Count(&data.TotalHospitals)

	// Request counts by status
	s.db.WithContext(ctx).Table("blood_requests").Where("deleted_at IS NULL").Count(&data.TotalRequests)
	s.db.WithContext(ctx).Table("blood_requests").Where("status = ? AND deleted_at IS NULL", domain.StatusPending).Count(&data.PendingRequests)
	s.db.WithContext(ctx).Table("blood_requests").Where("status = ? AND deleted_at IS NULL", domain.StatusAccepted).Count(&data.AcceptedRequests)
	s.db.WithContext(ctx).Table("blood_requests").Where("status = ? AND deleted_at IS NULL", domain.StatusCompleted).Count(&data.CompletedRequests)
	s.db.WithContext(ctx).Table("blood_requests").Where("status = ? AND deleted_at IS NULL", domain.StatusCancelled).Count(&data.CancelledRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("status = ? AND kind = ? AND deleted_at IS NULL", domain.StatusPending, domain.KindEmergency).
		Count(&data.EmergencyPending)

	// This month
	monthStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.Local)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("created_at >= ? AND deleted_at IS NULL", monthStart).
		Count(&data.RequestsThisMonth)
	s.db.WithContext(ctx).Table("scheduled_donations").
		Where("status = ? AND updated_at >= ?", domain.DonationCompleted, monthStart).
		Count(&data.DonationsThisMonth)

	// Inventory totals across all hospitals
	s.db.WithContext(ctx).Table("hospital_inventory").
		Select("COALESCE(SUM(units_available), 0)").
		Scan(&data.TotalUnits)
	s.db.WithContext(ctx).Table("hospital_inventory").
		Select("blood_type, COALESCE(SUM(units_available), 0) AS units").
		Group("blood_type").
		Order("blood_type ASC").
		Scan(&data.UnitsByType)

	return data, nil
}

// ============================================================
// Patient Dashboard
// ============================================================

// PatientDashboardData represents patient dashboard data
type PatientDashboardData struct {
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	AcceptedRequests  int64 `json:"accepted_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	UnreadMessages    int64 `json:"unread_messages"`
}

// GetPatientDashboard returns dashboard data for one patient
func (s *DashboardService) GetPatientDashboard(ctx context.Context, patientID uint) (*PatientDashboardData, error) {
	data := &PatientDashboardData{}

	s.db.WithContext(ctx).Table("blood_requests").
		Where("patient_id = ? AND deleted_at IS NULL", patientID).
		Count(&data.TotalRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("patient_id = ? AND status = ? AND deleted_at IS NULL", patientID, domain.StatusPending).
		Count(&data.PendingRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("patient_id = ? AND status = ? AND deleted_at IS NULL", patientID, domain.StatusAccepted).
		Count(&data.AcceptedRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("patient_id = ? AND status = ? AND deleted_at IS NULL", patientID, domain.StatusCompleted).
		Count(&data.CompletedRequests)

	s.db.WithContext(ctx).Table("messages").
		Where("receiver_id = ? AND is_read = ?", patientID, false).
		Count(&data.UnreadMessages)

	return data, nil
}

// ============================================================
// Donor Dashboard
// ============================================================

// DonorDashboardData represents donor dashboard data
type DonorDashboardData struct {
	MatchingRequests   int64 `json:"matching_requests"`
	AcceptedRequests   int64 `json:"accepted_requests"`
	CompletedDonations int64 `json:"completed_donations"`
	UpcomingDonations  int64 `json:"upcoming_donations"`
	UnreadMessages     int64 `json:"unread_messages"`
}

// GetDonorDashboard returns dashboard data for one donor
func (s *DashboardService) GetDonorDashboard(ctx context.Context, donorID uint, bloodGroup string) (*DonorDashboardData, error) {
	data := &DonorDashboardData{}

	matching := s.db.WithContext(ctx).Table("blood_requests").
		Where("status = ? AND deleted_at IS NULL", domain.StatusPending)
	if bloodGroup != "" {
		matching = matching.Where("blood_type = ?", bloodGroup)
	}
	matching.Count(&data.MatchingRequests)

	s.db.WithContext(ctx).Table("blood_requests").
		Where("donor_id = ? AND status = ? AND deleted_at IS NULL", donorID, domain.StatusAccepted).
		Count(&data.AcceptedRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("donor_id = ? AND status = ? AND deleted_at IS NULL", donorID, domain.StatusCompleted).
		Count(&data.CompletedDonations)
	s.db.WithContext(ctx).Table("scheduled_donations").
		Where("donor_id = ? AND status = ?", donorID, domain.DonationScheduled).
		Count(&data.UpcomingDonations)
	s.db.WithContext(ctx).Table("messages").
		Where("receiver_id = ? AND is_read = ?", donorID, false).
		Count(&data.UnreadMessages)

	return data, nil
}

// ============================================================
// Hospital Dashboard
// ============================================================

// HospitalDashboardData represents hospital dashboard data
type HospitalDashboardData struct {
	TotalUnits       int64                `json:"total_units"`
	UnitsByType      []BloodTypeUnitCount `json:"units_by_type"`
	LowStockTypes    []string             `json:"low_stock_types"`
	PendingRequests  int64                `json:"pending_requests"`
	EmergencyPending int64                `json:"emergency_pending"`
}

// LowStockThreshold is the unit count at or below which a blood type is
// flagged on the hospital dashboard
const LowStockThreshold = 5

// GetHospitalDashboard returns dashboard data for one hospital
func (s *DashboardService) GetHospitalDashboard(ctx context.Context, hospitalID uint) (*HospitalDashboardData, error) {
	data := &HospitalDashboardData{}

	s.db.WithContext(ctx).Table("hospital_inventory").
		Where("hospital_id = ?", hospitalID).
		Select("COALESCE(SUM(units_available), 0)").
		Scan(&data.TotalUnits)
	s.db.WithContext(ctx).Table("hospital_inventory").
		Where("hospital_id = ?", hospitalID).
		Select("blood_type, units_available AS units").
		Order("blood_type ASC").
		Scan(&data.UnitsByType)
	s.db.WithContext(ctx).Table("hospital_inventory").
		Where("hospital_id = ? AND units_available <= ?", hospitalID, LowStockThreshold).
		Order("blood_type ASC").
		Pluck("blood_type", &data.LowStockTypes)

	s.db.WithContext(ctx).Table("blood_requests").
		Where("status = ? AND deleted_at IS NULL", domain.StatusPending).
		Count(&data.PendingRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("status = ? AND kind = ? AND deleted_at IS NULL", domain.StatusPending, domain.KindEmergency).
		Count(&data.EmergencyPending)

	return data, nil
}
