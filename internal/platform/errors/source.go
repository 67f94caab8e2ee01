package errors

// Metrics source helpers: map pgx and clickhouse driver failures onto project codes

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the metrics source cares about
const (
	pgErrInvalidTextRepresentation = "22P02"
	pgErrInvalidRegex              = "2201B"
	pgErrUndefinedTable            = "42P01"
	pgErrUndefinedColumn           = "42703"
	pgErrInsufficientPrivilege     = "42501"
	pgErrInvalidPassword           = "28P01"
	pgErrInvalidAuthorization      = "28000"
	pgErrQueryCanceled             = "57014"
	pgErrCannotConnectNow          = "57P03"
	pgErrTooManyConnections        = "53300"
)

// ClickHouse server exception codes the metrics source cares about
const (
	chErrUnknownTable        int32 = 60
	chErrCannotCompileRegexp int32 = 427
	chErrTimeoutExceeded     int32 = 159
	chErrAuthFailed          int32 = 516
	chErrTooManyQueries      int32 = 202
)


// sourceClass is the code plus upstream status a driver failure maps to
type sourceClass struct {
	code   ErrorCode
	status int
}

func classifyPg(pgErr *pgconn.PgError) sourceClass {
	switch pgErr.Code {
	case pgErrInvalidRegex, pgErrInvalidTextRepresentation:
		return sourceClass{ErrorCodeInvalidArgument, 0}
	case pgErrInvalidPassword, pgErrInvalidAuthorization:
		return sourceClass{ErrorCodeUnauthorized, http.StatusUnauthorized}
	case pgErrInsufficientPrivilege:
		return sourceClass{ErrorCodeForbidden, http.StatusForbidden}
	case pgErrCannotConnectNow, pgErrTooManyConnections:
		return sourceClass{ErrorCodeUnavailable, http.StatusServiceUnavailable}
	case pgErrQueryCanceled:
		return sourceClass{ErrorCodeUpstream, http.StatusGatewayTimeout}
	case pgErrUndefinedTable, pgErrUndefinedColumn:
		return sourceClass{ErrorCodeUpstream, http.StatusInternalServerError}
	}
	return sourceClass{ErrorCodeUpstream, 0}
}

func classifyCH(ex *clickhouse.Exception) sourceClass {
	switch ex.Code {
	case chErrCannotCompileRegexp:
		return sourceClass{ErrorCodeInvalidArgument, 0}
	case chErrAuthFailed:
		return sourceClass{ErrorCodeUnauthorized, http.StatusUnauthorized}
	case chErrTooManyQueries:
		return sourceClass{ErrorCodeTooManyRequests, http.StatusTooManyRequests}
	case chErrTimeoutExceeded:
		return sourceClass{ErrorCodeUpstream, http.StatusGatewayTimeout}
	case chErrUnknownTable:
		return sourceClass{ErrorCodeUpstream, http.StatusInternalServerError}
	}
	return sourceClass{ErrorCodeUpstream, 0}
}

// FromSource wraps a metrics source failure with a mapped code and upstream status.
// Errors that are already ours pass through untouched so the original kind survives
// Context cancellation is reported as Unavailable without an upstream status
func FromSource(err error, backend string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return Wrapf(err, ErrorCodeUnavailable, "%s query cancelled", backend)
	}

	cls := sourceClass{ErrorCodeUpstream, 0}
	var (
		pgErr *pgconn.PgError
		chErr *clickhouse.Exception
	)
	switch {
	case stderrs.As(err, &pgErr):
		cls = classifyPg(pgErr)
	case stderrs.As(err, &chErr):
		cls = classifyCH(chErr)
	}
	return &Error{
		code:   cls.code,
		msg:    fmt.Sprintf("%s query failed", backend),
		status: cls.status,
		cause:  err,
	}
}

// IsRetryable reports whether a source failure is transient. Only the bulk loader retries; queries never do
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	case ErrorCodeInvalidArgument, ErrorCodeUnauthorized, ErrorCodeForbidden, ErrorCodeValidation:
		return false
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "connection reset"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "canceling statement due to statement timeout"),
		strings.Contains(s, "terminating connection due to administrator command"):
		return true
	default:
		return false
	}
}
