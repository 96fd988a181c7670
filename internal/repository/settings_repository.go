package repository

import (
	"context"

	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// SettingChange is one upsert (Value set) or delete (Value nil) of a
// system_settings row.
type SettingChange struct {
	Key         string
	Value       *string
	Description string
}

// Get returns the stored value for key, or nil when no row exists.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*string, error) {
	var rows []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT value FROM system_settings WHERE key = ? LIMIT 1
	`, key).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Apply executes all changes in a single transaction so a settings update is
// observed either completely or not at all.
func (r *SettingsRepository) Apply(ctx context.Context, changes []SettingChange) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			if change.Value == nil {
				if err := tx.Exec(`
					DELETE FROM system_settings WHERE key = ?
				`, change.Key).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Exec(`
				INSERT INTO system_settings (key, value, description, updated_at)
				VALUES (?, ?, ?, NOW())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value, updated_at = NOW()
			`, change.Key, *change.Value, change.Description).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
