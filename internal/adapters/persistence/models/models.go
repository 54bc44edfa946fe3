package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;default:'PATIENT'" json:"role"`
	FullName     string         `gorm:"size:100" json:"full_name"`
	Phone        string         `gorm:"size:20" json:"phone"`
	BloodGroup   string         `gorm:"size:3;index" json:"blood_group"`
	HospitalName string         `gorm:"size:100" json:"hospital_name,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	BloodGroup   string    `json:"blood_group,omitempty"`
	HospitalName string    `json:"hospital_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		FullName:     u.FullName,
		Phone:        u.Phone,
		BloodGroup:   u.BloodGroup,
		HospitalName: u.HospitalName,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Blood Request Tables
// ============================================================

// BloodRequest is a patient's ask for blood of a given type and urgency
type BloodRequest struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	PatientID     uint           `gorm:"not null;index" json:"patient_id"`
	BloodType     string         `gorm:"size:3;not null;index" json:"blood_type"`
	Kind          string         `gorm:"size:20;not null;default:'normal'" json:"kind"`
	Status        string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes         string         `gorm:"type:text" json:"notes"`
	ValidUntil    *time.Time     `gorm:"type:date" json:"valid_until"`
	DonorID       *uint          `gorm:"index" json:"donor_id"`
	ScheduledDate *time.Time     `gorm:"type:date" json:"scheduled_date"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Donor   *User `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}

func (BloodRequest) TableName() string {
	return "blood_requests"
}

// BloodRequestResponse DTO
type BloodRequestResponse struct {
	ID            uint       `json:"id"`
	PatientID     uint       `json:"patient_id"`
	PatientName   string     `json:"patient_name,omitempty"`
	BloodType     string     `json:"blood_type"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	DonorID       *uint      `json:"donor_id,omitempty"`
	DonorName     string     `json:"donor_name,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (r *BloodRequest) ToResponse() *BloodRequestResponse {
	resp := &BloodRequestResponse{
		ID:            r.ID,
		PatientID:     r.PatientID,
		BloodType:     r.BloodType,
		Kind:          r.Kind,
		Status:        r.Status,
		Notes:         r.Notes,
		ValidUntil:    r.ValidUntil,
		DonorID:       r.DonorID,
		ScheduledDate: r.ScheduledDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if r.Patient != nil {
		resp.PatientName = r.Patient.FullName
	}
	if r.Donor != nil {
		resp.DonorName = r.Donor.FullName
	}

	return resp
}

// RequestEvent audit history — one row per lifecycle transition
type RequestEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   uint      `gorm:"not null;index" json:"request_id"`
	FromStatus  string    `gorm:"size:20" json:"from_status"`
	ToStatus    string    `gorm:"size:20;not null" json:"to_status"`
	Note        string    `gorm:"type:text" json:"note"`
	PerformedBy uint      `gorm:"not null" json:"performed_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Request   *BloodRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Performer *User         `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (RequestEvent) TableName() string {
	return "request_events"
}

// ============================================================
// Inventory Tables
// ============================================================

// HospitalInventory per-hospital, per-blood-type unit counts.
// Identity is the composite (hospital_id, blood_type); rows are created
// implicitly at 0 units on first adjustment and never deleted.
type HospitalInventory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	HospitalID     uint      `gorm:"not null;uniqueIndex:idx_hospital_blood" json:"hospital_id"`
	BloodType      string    `gorm:"size:3;not null;uniqueIndex:idx_hospital_blood" json:"blood_type"`
	UnitsAvailable int       `gorm:"not null;default:0" json:"units_available"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"last_updated"`

	// Relations
	Hospital *User `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

func (HospitalInventory) TableName() string {
	return "hospital_inventory"
}

// ============================================================
// Scheduling Tables
// ============================================================

// ScheduledDonation a donor's committed donation appointment, optionally
// linked to the blood request it fulfills
type ScheduledDonation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DonorID       uint      `gorm:"not null;index" json:"donor_id"`
	RequestID     *uint     `gorm:"index" json:"request_id"`
	ScheduledDate time.Time `gorm:"type:date;not null" json:"scheduled_date"`
	Status        string    `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Donor   *User         `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Request *BloodRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
}

func (ScheduledDonation) TableName() string {
	return "scheduled_donations"
}

// ============================================================
// Messaging Tables
// ============================================================

// Message donor–patient communication. Append-only; no edit/delete.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	RequestID  *uint     `gorm:"index" json:"request_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&BloodRequest{},
		&RequestEvent{},
		&HospitalInventory{},
		&ScheduledDonation{},
		&Message{},
	)
}
