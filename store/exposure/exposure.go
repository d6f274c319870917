package exposure

import (
	"context"

	"moonlend/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type exposureStore struct {
	db *db.DB
}

// New new exposure store
func New(db *db.DB) core.IExposureStore {
	return &exposureStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.ExposureRecord{})
		if err := tx.AutoMigrate(core.ExposureRecord{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *exposureStore) Save(ctx context.Context, record *core.ExposureRecord) error {
	if err := s.db.Update().Where("mint=?", record.Mint).FirstOrCreate(record).Error; err != nil {
		return err
	}
	return nil
}

func (s *exposureStore) Find(ctx context.Context, mint string) (*core.ExposureRecord, error) {
	var record core.ExposureRecord
	if err := s.db.View().Where("mint=?", mint).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.ExposureRecord{}, nil
		}
		return nil, err
	}
	return &record, nil
}

func (s *exposureStore) All(ctx context.Context) ([]*core.ExposureRecord, error) {
	var records []*core.ExposureRecord
	if err := s.db.View().Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *exposureStore) Update(ctx context.Context, tx *db.DB, record *core.ExposureRecord, version int64) error {
	record.Version = version + 1
	updates := tx.Update().Model(core.ExposureRecord{}).Where("mint=? and version=?", record.Mint, version).Update(record)
	if err := updates.Error; err != nil {
		return err
	}
	if updates.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}
	return nil
}
