// Package store persists gestor ledgers.
//
// Every store rewrites the whole ledger on Save, atomically: a reader sees
// either the previous ledger or the new one, never a partial write.
package store

import (
	"fmt"
	"strings"

	"github.com/etnz/gestor"
)

// Drivers known to Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver, located at path. Amounts read from stores
// that do not record a currency are given currency.
func Open(driver, path, currency string) (gestor.Store, error) {
	switch strings.ToLower(driver) {
	case DriverFile, "":
		return NewFile(path, currency)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(path, currency)
	default:
		return nil, fmt.Errorf("unknown ledger driver %q, want %q or %q", driver, DriverFile, DriverSQLite)
	}
}
