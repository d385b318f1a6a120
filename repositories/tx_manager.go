package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"docmeta/config"
	"docmeta/logger"

	"github.com/go-sql-driver/mysql"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

// MySQL error numbers that are safe to retry by re-running the whole
// transactional closure.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// IsTransient reports whether err is a transient store failure: a deadlock,
// a lock-wait timeout, or a lost connection. Anything else is permanent and
// must surface to the caller unchanged.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDeadlock || myErr.Number == mysqlErrLockWaitTimeout
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// GormTxManager wraps gorm transactions in a retry policy. fn runs at least
// once; on a transient failure the rolled-back closure is executed again
// with exponential backoff.
type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	maxRetries := uint64(3)
	base := 50 * time.Millisecond
	if config.AppConfig != nil {
		maxRetries = uint64(config.AppConfig.Database.TxRetryMax)
		base = time.Duration(config.AppConfig.Database.TxRetryBaseMs) * time.Millisecond
	}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := m.db.WithContext(ctx).Transaction(fn)
		if IsTransient(err) {
			logger.Warnf("transient store failure, retrying transaction: %v", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
