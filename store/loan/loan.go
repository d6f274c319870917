package loan

import (
	"context"

	"moonlend/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type loanStore struct {
	db *db.DB
}

// New new loan store
func New(db *db.DB) core.ILoanStore {
	return &loanStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Loan{})
		if err := tx.AutoMigrate(core.Loan{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *loanStore) Create(ctx context.Context, loan *core.Loan) error {
	if err := s.db.Update().Where("address=?", loan.Address).FirstOrCreate(loan).Error; err != nil {
		return err
	}
	return nil
}

func (s *loanStore) Find(ctx context.Context, id uint64) (*core.Loan, error) {
	var loan core.Loan
	if err := s.db.View().Where("id=?", id).First(&loan).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Loan{}, nil
		}
		return nil, err
	}
	return &loan, nil
}

func (s *loanStore) FindByAddress(ctx context.Context, address string) (*core.Loan, error) {
	var loan core.Loan
	if err := s.db.View().Where("address=?", address).First(&loan).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Loan{}, nil
		}
		return nil, err
	}
	return &loan, nil
}

func (s *loanStore) ListActive(ctx context.Context) ([]*core.Loan, error) {
	var loans []*core.Loan
	if err := s.db.View().Where("status=?", core.LoanStatusActive).Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *loanStore) ListActiveByMint(ctx context.Context, mint string) ([]*core.Loan, error) {
	var loans []*core.Loan
	if err := s.db.View().Where("mint=? and status=?", mint, core.LoanStatusActive).Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *loanStore) Update(ctx context.Context, tx *db.DB, loan *core.Loan, version int64) error {
	loan.Version = version + 1
	updates := tx.Update().Model(core.Loan{}).Where("id=? and version=?", loan.ID, version).Update(loan)
	if err := updates.Error; err != nil {
		return err
	}
	if updates.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}
	return nil
}
