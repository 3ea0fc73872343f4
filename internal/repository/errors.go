package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names referenced by services when mapping conflicts.
const (
	ConstraintUserEmail         = "users_email_key"
	ConstraintAgentEmail        = "agents_email_key"
	ConstraintAgentUser         = "agents_user_id_key"
	ConstraintAgentQRCode       = "agents_qr_code_key"
	ConstraintEmployeeEmail     = "employees_email_key"
	ConstraintEmployeeUser      = "employees_user_id_key"
	ConstraintEmployeeQRCode    = "employees_qr_code_key"
	ConstraintQRCodeRegistry    = "profile_qr_codes_pkey"
	ConstraintRatingQuestionFK  = "ratings_question_id_fkey"
	ConstraintRatingAgentFK     = "ratings_agent_id_fkey"
	ConstraintRatingEmployeeFK  = "ratings_employee_id_fkey"
	ConstraintComplaintAgent    = "complaints_agent_id_fkey"
	ConstraintComplaintEmployee = "complaints_employee_id_fkey"

	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsNotFound reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// UniqueViolation returns the violated constraint name when err is a unique violation.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// ForeignKeyViolation returns the violated constraint name when err is a foreign key violation.
func ForeignKeyViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// NewUniqueViolation builds the error Postgres reports for a duplicate key.
func NewUniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

// NewForeignKeyViolation builds the error Postgres reports for a dangling reference.
func NewForeignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: constraint, Message: "insert or update violates foreign key constraint"}
}
