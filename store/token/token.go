package token

import (
	"context"

	"moonlend/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type tokenStore struct {
	db *db.DB
}

// New new token config store
func New(db *db.DB) core.ITokenStore {
	return &tokenStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.TokenConfig{})
		if err := tx.AutoMigrate(core.TokenConfig{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Save upsert the mirror row by mint; the on-chain config account wins
func (s *tokenStore) Save(ctx context.Context, token *core.TokenConfig) error {
	return s.db.Tx(func(tx *db.DB) error {
		var existing core.TokenConfig
		if err := tx.Update().Where("mint=?", token.Mint).First(&existing).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return tx.Update().Create(token).Error
			}
			return err
		}

		token.ID = existing.ID
		token.Version = existing.Version + 1
		return tx.Update().Model(core.TokenConfig{}).Where("mint=? and version=?", token.Mint, existing.Version).Update(token).Error
	})
}

func (s *tokenStore) Find(ctx context.Context, mint string) (*core.TokenConfig, error) {
	var token core.TokenConfig
	if err := s.db.View().Where("mint=?", mint).First(&token).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.TokenConfig{}, nil
		}
		return nil, err
	}
	return &token, nil
}

func (s *tokenStore) All(ctx context.Context) ([]*core.TokenConfig, error) {
	var tokens []*core.TokenConfig
	if err := s.db.View().Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *tokenStore) AllEnabled(ctx context.Context) ([]*core.TokenConfig, error) {
	var tokens []*core.TokenConfig
	if err := s.db.View().Where("enabled=?", true).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
