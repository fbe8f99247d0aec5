// Package repository holds the MySQL data access layer. The sentinel errors
// below let services tell failure scenarios apart without inspecting driver
// errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist within the caller's
// restaurant. Rows of other tenants are reported the same way.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller may not touch a resource.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as deleting a table that still serves an order
// or losing a lock race to another transaction.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key would be violated, e.g. a
// second table with the same number in one restaurant.
var ErrDuplicate = errors.New("duplicate")

// ErrStockExhausted is returned by a conditional stock decrement that
// matched no row because stock fell below the requested quantity.
var ErrStockExhausted = errors.New("stock exhausted")

// ErrTableTaken is returned when a table could not be occupied because it
// is no longer available.
var ErrTableTaken = errors.New("table not available")

// MySQL server error numbers the repository translates.
const (
	mysqlDupEntry        = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlRowIsReferenced = 1451
)

// translate maps driver errors onto the sentinels above. Deadlocks and lock
// wait timeouts both mean a concurrent writer won, which callers treat as a
// conflict.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return errors.Join(ErrDuplicate, err)
		case mysqlDeadlock, mysqlLockWaitTimeout:
			return errors.Join(ErrConflict, err)
		case mysqlRowIsReferenced:
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}
