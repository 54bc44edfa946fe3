package repositories

import (
	"context"

	"lifelink-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// inventoryRepository implements InventoryRepository interface
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new hospital inventory repository
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

// EnsureEntry creates the (hospital, blood type) row at 0 units if absent.
// The composite unique index makes a concurrent duplicate insert fail cleanly.
func (r *inventoryRepository) EnsureEntry(ctx context.Context, hospitalID uint, bloodType string) error {
	entry := models.HospitalInventory{
		HospitalID: hospitalID,
		BloodType:  bloodType,
	}
	return r.db.WithContext(ctx).
		Where("hospital_id = ? AND blood_type = ?", hospitalID, bloodType).
		FirstOrCreate(&entry).Error
}

// AdjustUnits applies a relative delta in a single UPDATE. The guard
// `units_available + delta >= 0` rides in the WHERE clause, so the
// read-modify-write happens inside the database and concurrent deltas on the
// same key serialize on the row without lost updates. Returns false when the
// delta would drive the count negative; the row is left untouched.
func (r *inventoryRepository) AdjustUnits(ctx context.Context, hospitalID uint, bloodType string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.HospitalInventory{}).
		Where("hospital_id = ? AND blood_type = ? AND units_available + ? >= 0",
			hospitalID, bloodType, delta).
		Update("units_available", gorm.Expr("units_available + ?", delta))

	return res.RowsAffected > 0, res.Error
}

// SetUnits sets an absolute unit count, creating the entry if needed
func (r *inventoryRepository) SetUnits(ctx context.Context, hospitalID uint, bloodType string, units int) error {
	if err := r.EnsureEntry(ctx, hospitalID, bloodType); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.HospitalInventory{}).
		Where("hospital_id = ? AND blood_type = ?", hospitalID, bloodType).
		Update("units_available", units).Error
}

// Get gets one inventory entry
func (r *inventoryRepository) Get(ctx context.Context, hospitalID uint, bloodType string) (*models.HospitalInventory, error) {
	var entry models.HospitalInventory
	err := r.db.WithContext(ctx).
		Where("hospital_id = ? AND blood_type = ?", hospitalID, bloodType).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByHospital gets all entries for a hospital ordered by blood type
func (r *inventoryRepository) ListByHospital(ctx context.Context, hospitalID uint) ([]*models.HospitalInventory, error) {
	var entries []*models.HospitalInventory
	err := r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("blood_type ASC").
		Find(&entries).Error
	return entries, err
}
