package reportsync

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	mysqlDriver "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means the source document no longer exists.
	ErrNotFound = errors.New("source document not found")
	// ErrValidation means the source document is incomplete and cannot be loaded.
	ErrValidation = errors.New("source document failed validation")
	// ErrUnknownEntity means no handler is registered for an entity name.
	ErrUnknownEntity = errors.New("unknown entity")
)

type ErrorKind string

const (
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindInfra       ErrorKind = "infra"
	ErrorKindProgramming ErrorKind = "programming"
)

// Classify maps an error returned from Sync onto the failure taxonomy.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case isInfra(err):
		return ErrorKindInfra
	default:
		return ErrorKindProgramming
	}
}

func isInfra(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqlDriver.ErrInvalidConn) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return true
	}
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
