package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"sweet-shop/internal/domain"
)

// mapError 把驱动/gorm 错误翻译成 domain 错误；parent 为调用方原始 ctx，
// 用于区分「获取超时」与「请求本身被取消」
func mapError(parent context.Context, err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if isDomain(err) {
		return err
	}
	where := entity
	if id != "" {
		where += " " + id
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", where, domain.ErrNotFound)
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", where, domain.ErrAlreadyExists)
	case isForeignKey(err):
		return fmt.Errorf("%s: referenced row: %w", where, domain.ErrNotFound)
	case isCheck(err):
		return fmt.Errorf("%s: constraint: %w", where, domain.ErrValidation)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if parent != nil && parent.Err() != nil {
			// 请求生命周期结束，原样上抛
			return fmt.Errorf("%s: %w", where, err)
		}
		return fmt.Errorf("%s: %w: %v", where, domain.ErrStorageUnavailable, err)
	}
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %v", where, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", where, err)
}

func isDomain(err error) bool {
	for _, target := range []error{
		domain.ErrNoRowMatched, domain.ErrStorageUnavailable, domain.ErrNotFound, domain.ErrValidation,
		domain.ErrAlreadyExists, domain.ErrInsufficientStock, domain.ErrInvalidCredentials, domain.ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func isForeignKey(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == 1452 || myErr.Number == 1451) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isCheck(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 3819 {
		return true
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// isTransient 连接丢失、锁等待超时、死锁、串行化冲突等可重试故障
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection_exception
			pgErr.Code == "40001", // serialization_failure
			pgErr.Code == "40P01", // deadlock_detected
			pgErr.Code == "55P03", // lock_not_available
			pgErr.Code == "57P01": // admin_shutdown
			return true
		}
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213, 1040: // lock wait timeout, deadlock, too many connections
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "connection refused")
}
