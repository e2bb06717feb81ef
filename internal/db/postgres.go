//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	RegisterDialector(func(dsn string) gorm.Dialector { return postgres.Open(dsn) }, "postgres", "postgresql", "pg")
}
