package config

import (
	"log"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/pkg/bloodtype"
	"lifelink-api/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedDemoHospital(); err != nil {
		log.Printf("⚠️ Hospital seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@lifelink.example.org",
		Password: hashedPassword,
		Role:     "ADMIN",
		FullName: "System Administrator",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded default admin user")
	return nil
}

// seedDemoHospital seeds a demo hospital account with an empty inventory
// entry per blood type, so dev environments have stock rows to adjust
func (s *Seeder) seedDemoHospital() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "HOSPITAL").Count(&count)
	if count > 0 {
		return nil // At least one hospital exists
	}

	hashedPassword, err := password.Hash("hospital123")
	if err != nil {
		return err
	}

	hospital := &models.User{
		Username:     "general-hospital",
		Email:        "blood-bank@lifelink.example.org",
		Password:     hashedPassword,
		Role:         "HOSPITAL",
		FullName:     "Blood Bank Staff",
		HospitalName: "General Hospital",
		IsActive:     true,
	}

	if err := s.db.Create(hospital).Error; err != nil {
		return err
	}

	for _, bt := range bloodtype.All {
		entry := &models.HospitalInventory{
			HospitalID: hospital.ID,
			BloodType:  bt,
		}
		if err := s.db.Create(entry).Error; err != nil {
			return err
		}
	}

	log.Println("🌱 Seeded demo hospital with empty inventory")
	return nil
}
