package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RolePatient  Role = "PATIENT"
	RoleDonor    Role = "DONOR"
	RoleHospital Role = "HOSPITAL"
	RoleAdmin    Role = "ADMIN"
)

// IsValidRole reports whether a role can be chosen at registration time.
// ADMIN accounts are created by the seeder or by another admin, never self-assigned.
func IsValidRole(r string) bool {
	switch Role(r) {
	case RolePatient, RoleDonor, RoleHospital:
		return true
	}
	return false
}

// RequestStatus represents the lifecycle state of a blood request
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// IsTerminal reports whether a status has no outgoing transitions
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the request state machine permits from → to.
// pending → {accepted, cancelled}; accepted → {completed, cancelled}.
func CanTransition(from, to RequestStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusCancelled
	case StatusAccepted:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// RequestKind represents request urgency
type RequestKind string

const (
	KindNormal    RequestKind = "normal"
	KindEmergency RequestKind = "emergency"
)

// IsValidKind reports whether k is a recognized request kind
func IsValidKind(k string) bool {
	return RequestKind(k) == KindNormal || RequestKind(k) == KindEmergency
}

// DonationStatus represents the state of a scheduled donation
type DonationStatus string

const (
	DonationScheduled DonationStatus = "scheduled"
	DonationCompleted DonationStatus = "completed"
	DonationCancelled DonationStatus = "cancelled"
)

// User represents a user in the domain layer
type User struct {
	ID           uint
	Username     string
	Email        string
	Password     string // Hashed
	Role         Role
	FullName     string
	Phone        string
	BloodGroup   string // Donors and patients
	HospitalName string // Hospital staff only
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
