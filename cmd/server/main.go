package main

import (
	"os"
)

// @title DocVault API
// @version 1.0
// @description Document vault API: user accounts, login, document upload/download and admin statistics.
// @BasePath /api
// @schemes http
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
