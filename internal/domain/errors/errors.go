// Package errors defines the failure kinds surfaced by the store.
//
// Every structured error matches exactly one sentinel through errors.Is, so
// callers can branch on the kind without caring about the concrete type:
//
//	if errors.Is(err, domainerrors.ErrNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrSchemaViolation     = errors.New("schema violation")
	ErrMissingColumn       = errors.New("missing column")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrNoIndex             = errors.New("no index")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrUnsupportedOperand  = errors.New("unsupported operand")
	ErrCorruptSnapshot     = errors.New("corrupt snapshot")
)

// Kind is the stable, machine-readable name of a sentinel
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindAlreadyExists       Kind = "already_exists"
	KindSchemaViolation     Kind = "schema_violation"
	KindMissingColumn       Kind = "missing_column"
	KindTypeMismatch        Kind = "type_mismatch"
	KindNoIndex             Kind = "no_index"
	KindUnknownColumn       Kind = "unknown_column"
	KindUnsupportedOperator Kind = "unsupported_operator"
	KindUnsupportedOperand  Kind = "unsupported_operand"
	KindCorruptSnapshot     Kind = "corrupt_snapshot"
	KindInternal            Kind = "internal"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	// first: a corrupt snapshot wraps the constraint error that exposed it
	{ErrCorruptSnapshot, KindCorruptSnapshot},
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrSchemaViolation, KindSchemaViolation},
	{ErrMissingColumn, KindMissingColumn},
	{ErrTypeMismatch, KindTypeMismatch},
	{ErrNoIndex, KindNoIndex},
	{ErrUnknownColumn, KindUnknownColumn},
	{ErrUnsupportedOperator, KindUnsupportedOperator},
	{ErrUnsupportedOperand, KindUnsupportedOperand},
}

// KindOf classifies err. Errors that match no sentinel are KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// NotFoundError reports a missing database, table or record
type NotFoundError struct {
	Entity string // "database", "table", "record"
	Name   string
	Parent string // owning database or table, empty at top level
}

func (e *NotFoundError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("%s %q does not exist in %s", e.Entity, e.Name, e.Parent)
	}
	return fmt.Sprintf("%s %q does not exist", e.Entity, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyExistsError reports a duplicate name on create
type AlreadyExistsError struct {
	Entity string
	Name   string
	Parent string
}

func (e *AlreadyExistsError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("%s %q already exists in %s", e.Entity, e.Name, e.Parent)
	}
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// Constraint names used by ConstraintError
const (
	ConstraintSchema   = "schema_violation"
	ConstraintRequired = "missing_column"
	ConstraintType     = "type_mismatch"
)

// ConstraintError represents a write rejected by the table schema
type ConstraintError struct {
	Table      string      // table name
	Column     string      // column name (empty if table-level)
	Value      interface{} // offending value (may be nil)
	Constraint string      // ConstraintSchema, ConstraintRequired or ConstraintType
	Reason     string      // human-readable explanation (optional)
}

func (e *ConstraintError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("constraint violation in %s.%s", e.Table, e.Column))

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Constraint))
	}

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func (e *ConstraintError) Is(target error) bool {
	switch e.Constraint {
	case ConstraintRequired:
		return target == ErrMissingColumn
	case ConstraintType:
		return target == ErrTypeMismatch
	default:
		return target == ErrSchemaViolation
	}
}

func NewSchemaViolation(table, column, reason string) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Constraint: ConstraintSchema,
		Reason:     reason,
	}
}

func NewMissingColumn(table, column string) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Constraint: ConstraintRequired,
		Reason:     "missing required value",
	}
}

func NewTypeMismatch(table, column string, value interface{}, expectedType, actualType string) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Value:      value,
		Constraint: ConstraintType,
		Reason:     fmt.Sprintf("expected %s, got %s", expectedType, actualType),
	}
}

// ColumnNotFoundError reports a reference to a column the schema does not declare
type ColumnNotFoundError struct {
	TableName  string
	ColumnName string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q does not exist in table %s", e.ColumnName, e.TableName)
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrUnknownColumn }

// NoIndexError reports an index-only lookup on a column without an index
type NoIndexError struct {
	TableName  string
	ColumnName string
}

func (e *NoIndexError) Error() string {
	return fmt.Sprintf("no index on column %s.%s", e.TableName, e.ColumnName)
}

func (e *NoIndexError) Is(target error) bool { return target == ErrNoIndex }

// QueryError reports an extended query the evaluator cannot run
type QueryError struct {
	Column   string
	Operator string
	Operand  interface{}
	Reason   string
	kind     error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.kind, e.Column, e.Operator)
	if e.Operand != nil {
		msg += fmt.Sprintf(" %v", e.Operand)
	}
	if e.Reason != "" {
		msg += " - " + e.Reason
	}
	return msg
}

func (e *QueryError) Is(target error) bool { return target == e.kind }

func NewUnsupportedOperator(column, operator string) *QueryError {
	return &QueryError{
		Column:   column,
		Operator: operator,
		kind:     ErrUnsupportedOperator,
	}
}

func NewUnsupportedOperand(column, operator string, operand interface{}, reason string) *QueryError {
	return &QueryError{
		Column:   column,
		Operator: operator,
		Operand:  operand,
		Reason:   reason,
		kind:     ErrUnsupportedOperand,
	}
}

// CorruptSnapshotError reports structurally invalid snapshot input
type CorruptSnapshotError struct {
	Path   string // empty when reading from a stream
	Reason string
	Err    error
}

func (e *CorruptSnapshotError) Error() string {
	msg := "corrupt snapshot"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptSnapshotError) Is(target error) bool { return target == ErrCorruptSnapshot }

func (e *CorruptSnapshotError) Unwrap() error { return e.Err }
