package models

import (
	"bitbucket.org/pleinsud/facade_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Company{},
		&Profile{},
		&Plan{},
		&Subscription{},
		&Customer{},
		&Project{},
		&Facade{},
		&Photo{},
		&MetrageRef{},
		&Quote{},
		&QuoteVersion{},
		&QuoteLine{},
		&AuditLog{},
	)
}
