//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	RegisterDialector(func(dsn string) gorm.Dialector { return mysql.Open(dsn) }, "mysql", "mariadb")
}
