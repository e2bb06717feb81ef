package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Pure-Go driver, so the binary builds without cgo.
func init() {
	RegisterDialector(func(dsn string) gorm.Dialector { return sqlite.Open(dsn) }, "sqlite")
}
