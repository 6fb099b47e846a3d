package errors

// Postgres helpers: SQLSTATE classification, field extraction, retry hints

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes this service reacts to
const (
	stateUniqueViolation     = "23505"
	stateForeignKeyViolation = "23503"
	stateNotNullViolation    = "23502"
	stateCheckViolation      = "23514"
	stateStringTooLong       = "22001"
	stateBadTextRepr         = "22P02"

	stateSerializationFailure = "40001"
	stateDeadlock             = "40P01"
	stateLockUnavailable      = "55P03"
	stateReadOnlyTx           = "25006"
	stateCannotConnect        = "57P03" // server still starting
)

// codeBySQLState classifies SQLSTATEs into project error codes,
// anything absent falls through to ErrorCodeDB
var codeBySQLState = map[string]ErrorCode{
	stateUniqueViolation: ErrorCodeDuplicateKey,

	// the payload referenced a row that is not there, treat as bad input
	stateForeignKeyViolation: ErrorCodeInvalidArgument,
	stateStringTooLong:       ErrorCodeInvalidArgument,
	stateBadTextRepr:         ErrorCodeInvalidArgument,

	stateNotNullViolation: ErrorCodeValidation,
	stateCheckViolation:   ErrorCodeValidation,

	// server-side contention, retryable
	stateSerializationFailure: ErrorCodeDB,
	stateDeadlock:             ErrorCodeDB,
	stateLockUnavailable:      ErrorCodeDB,

	// dependency briefly gone
	stateReadOnlyTx:    ErrorCodeUnavailable,
	stateCannotConnect: ErrorCodeUnavailable,
}

// retryableStates are transient contention SQLSTATEs
var retryableStates = map[string]bool{
	stateSerializationFailure: true,
	stateDeadlock:             true,
	stateLockUnavailable:      true,
}

// retryableTexts are driver message fragments seen on commit/abort or
// lock/timeout cases where no structured PgError survives
var retryableTexts = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"serialization failure",
	"canceling statement due to statement timeout",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
	"terminating connection due to administrator command",
}

// ExtractPgError returns (*pgconn.PgError, true) if the root cause is a PgError.
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(Root(err), &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether the error is a Postgres error with the given SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// predicates for the common constraint classes

// IsDuplicateKey reports whether the error is a unique constraint violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, stateUniqueViolation) }

// IsForeignKeyViolation reports whether the error is a foreign key constraint violation
func IsForeignKeyViolation(err error) bool { return IsSQLState(err, stateForeignKeyViolation) }

// IsNotNullViolation reports whether the error is a not-null constraint violation
func IsNotNullViolation(err error) bool { return IsSQLState(err, stateNotNullViolation) }

// IsCheckViolation reports whether the error is a check constraint violation
func IsCheckViolation(err error) bool { return IsSQLState(err, stateCheckViolation) }

// IsSerializationFailure reports whether the error is a serialization failure
func IsSerializationFailure(err error) bool { return IsSQLState(err, stateSerializationFailure) }

// IsDeadlock reports whether the error is a deadlock detected error
func IsDeadlock(err error) bool { return IsSQLState(err, stateDeadlock) }

// IsLockNotAvailable reports whether the error is a lock not available error
func IsLockNotAvailable(err error) bool { return IsSQLState(err, stateLockUnavailable) }

// IsConnectionUnavailable reports whether the error is a "cannot connect now" error
func IsConnectionUnavailable(err error) bool { return IsSQLState(err, stateCannotConnect) }

// DBErrorCode maps a Postgres error to an ErrorCode with an ok flag
// !ok means err wasn't a PgError; caller may fall back to generic handling
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	if code, ok := codeBySQLState[pgErr.Code]; ok {
		return code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a pg error with a mapped ErrorCode and message.
// If err is nil, returns nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is the formatted variant of FromPostgres
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// AttachFieldFromPg tries to enrich an error with a field name derived from PgError.
// Priority: ColumnName -> last token of ConstraintName (i.e., staff_name_key -> name).
// Returns the original error if no field can be inferred
func AttachFieldFromPg(err error) error {
	var pgErr *pgconn.PgError
	if !stderrs.As(Root(err), &pgErr) {
		return err
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(err, col)
	}
	if c := strings.TrimSpace(pgErr.ConstraintName); c != "" {
		//   staff_name_key -> name
		//   appointments_job_id_fkey -> fkey (not great) so prefer ColumnName when available
		tok := c
		if i := strings.LastIndex(c, "_"); i >= 0 && i+1 < len(c) {
			tok = c[i+1:]
		}
		if tok != "" && tok != "key" {
			return WithField(err, tok)
		}
	}
	return err
}

// FromPostgresWithField wraps the error (like FromPostgres) and then attempts to
// attach a field name if discoverable from the PgError metadata
func FromPostgresWithField(err error, msg string) error {
	return AttachFieldFromPg(FromPostgres(err, msg))
}

// IsRetryable reports whether a database error represents a transient condition
// worth retrying. It handles both structured *pgconn.PgError codes and the
// generic pgx text seen on commit (e.g. "commit unexpectedly resulted in rollback")
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// local cancellations and timeouts are the caller's call, never auto-retried
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	root := Root(err)

	var pgErr *pgconn.PgError
	if stderrs.As(root, &pgErr) {
		return retryableStates[pgErr.Code]
	}

	s := strings.ToLower(root.Error())
	for _, frag := range retryableTexts {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
