package cmd

import (
	"moonlend/core"
	"moonlend/store/event"
	"moonlend/store/exposure"
	"moonlend/store/loan"
	"moonlend/store/token"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideLoanStore(db *db.DB) core.ILoanStore {
	return loan.New(db)
}

func provideTokenStore(db *db.DB) core.ITokenStore {
	return token.New(db)
}

func provideExposureStore(db *db.DB) core.IExposureStore {
	return exposure.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}
