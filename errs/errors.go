// Package errs defines the fatal error taxonomy raised by the binspector
// engine while building descriptors or running a read/write pass.
//
// Every error type here carries enough context (a field-name stack and,
// where available, a cursor offset) to let a caller pinpoint exactly where
// in a nested record a decode or encode failed; both appear in Error().
// Every error type's Is method matches any error of the same type, and
// Kind() reports its taxonomy entry, so callers can branch on category
// without string matching:
//
//	var ve *errs.ValidationTestFailedError
//	if errors.As(err, &ve) {
//	    fmt.Println(ve.Kind(), ve.Value)
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies which entry of the error taxonomy an error belongs to.
type Kind int

const (
	KindEOF Kind = iota
	KindSelfReferringField
	KindUnknownPropertyType
	KindNoConditionMatched
	KindRelationNotDefined
	KindRelationAlreadyDefined
	KindReferringToEmptyClass
	KindWrongArgumentReturnType
	KindValidationTestFailed
	KindReference
	KindWrongBitfieldClassImplementation
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindSelfReferringField:
		return "SelfReferringField"
	case KindUnknownPropertyType:
		return "UnknownPropertyType"
	case KindNoConditionMatched:
		return "NoConditionMatched"
	case KindRelationNotDefined:
		return "RelationNotDefined"
	case KindRelationAlreadyDefined:
		return "RelationAlreadyDefined"
	case KindReferringToEmptyClass:
		return "ReferringToEmptyClass"
	case KindWrongArgumentReturnType:
		return "WrongArgumentReturnType"
	case KindValidationTestFailed:
		return "ValidationTestFailed"
	case KindReference:
		return "ReferenceError"
	case KindWrongBitfieldClassImplementation:
		return "WrongBitfieldClassImplementation"
	default:
		return "Unknown"
	}
}

// fieldStack formats the chain of field names from outermost to innermost,
// e.g. "header.chunks.length".
type fieldStack []string

func (s fieldStack) String() string {
	out := ""
	for i, name := range s {
		if i > 0 {
			out += "."
		}
		out += name
	}

	return out
}

// baseError carries the common shape (kind, field stack, offset) shared by
// every taxonomy entry. It is embedded, not exported directly.
type baseError struct {
	kind   Kind
	fields fieldStack
	offset uint64
	hasOff bool
}

func (e *baseError) Kind() Kind { return e.kind }

// WithField prepends a field name to the stack, used by the reader/writer as
// an error bubbles up through nested records.
func (e *baseError) WithField(name string) {
	e.fields = append(fieldStack{name}, e.fields...)
}

func (e *baseError) offsetSuffix() string {
	if !e.hasOff {
		return ""
	}

	return fmt.Sprintf(" (offset 0x%x)", e.offset)
}

// EOFError reports an unexpected end-of-buffer encountered while a
// primitive or nested read was in progress and not absorbed by a
// controller (e.g. Until(EOF)).
type EOFError struct {
	baseError
}

func NewEOFError(offset uint64) *EOFError {
	return &EOFError{baseError{kind: KindEOF, offset: offset, hasOff: true}}
}

func (e *EOFError) Error() string {
	return fmt.Sprintf("binspector: unexpected EOF at field %q%s", e.fields, e.offsetSuffix())
}

func (e *EOFError) Is(target error) bool {
	_, ok := target.(*EOFError)
	return ok
}

// SelfReferringFieldError is raised when a nested relation cycles through
// its declaring type without passing through a condition (Select) that
// defers resolution to read time.
type SelfReferringFieldError struct {
	baseError
	TypeName string
}

func NewSelfReferringFieldError(typeName string) *SelfReferringFieldError {
	return &SelfReferringFieldError{baseError: baseError{kind: KindSelfReferringField}, TypeName: typeName}
}

func (e *SelfReferringFieldError) Error() string {
	return fmt.Sprintf("binspector: field %q self-references type %q without a conditional guard", e.fields, e.TypeName)
}

func (e *SelfReferringFieldError) Is(target error) bool {
	_, ok := target.(*SelfReferringFieldError)
	return ok
}

// UnknownPropertyTypeError is raised when a field's relation is neither
// primitive, nested, nor resolved by any condition.
type UnknownPropertyTypeError struct {
	baseError
}

func NewUnknownPropertyTypeError() *UnknownPropertyTypeError {
	return &UnknownPropertyTypeError{baseError{kind: KindUnknownPropertyType}}
}

func (e *UnknownPropertyTypeError) Error() string {
	return fmt.Sprintf("binspector: field %q has no resolvable relation", e.fields)
}

func (e *UnknownPropertyTypeError) Is(target error) bool {
	_, ok := target.(*UnknownPropertyTypeError)
	return ok
}

// NoConditionMatchedError is raised when every condition attached to a
// field evaluated false and no Else default was provided.
type NoConditionMatchedError struct {
	baseError
}

func NewNoConditionMatchedError() *NoConditionMatchedError {
	return &NoConditionMatchedError{baseError{kind: KindNoConditionMatched}}
}

func (e *NoConditionMatchedError) Error() string {
	return fmt.Sprintf("binspector: no condition matched for field %q and no Else default was given", e.fields)
}

func (e *NoConditionMatchedError) Is(target error) bool {
	_, ok := target.(*NoConditionMatchedError)
	return ok
}

// RelationNotDefinedError is a descriptor-time error raised when a field is
// built without ever attaching a relation, controller-driven default, or
// condition chain.
type RelationNotDefinedError struct {
	baseError
}

func NewRelationNotDefinedError(field string) *RelationNotDefinedError {
	e := &RelationNotDefinedError{baseError{kind: KindRelationNotDefined}}
	e.WithField(field)

	return e
}

func (e *RelationNotDefinedError) Error() string {
	return fmt.Sprintf("binspector: field %q has no relation defined", e.fields)
}

func (e *RelationNotDefinedError) Is(target error) bool {
	_, ok := target.(*RelationNotDefinedError)
	return ok
}

// RelationAlreadyDefinedError is a descriptor-time error raised when a
// field's relation is set more than once during descriptor construction.
type RelationAlreadyDefinedError struct {
	baseError
}

func NewRelationAlreadyDefinedError(field string) *RelationAlreadyDefinedError {
	e := &RelationAlreadyDefinedError{baseError{kind: KindRelationAlreadyDefined}}
	e.WithField(field)

	return e
}

func (e *RelationAlreadyDefinedError) Error() string {
	return fmt.Sprintf("binspector: field %q already has a relation defined", e.fields)
}

func (e *RelationAlreadyDefinedError) Is(target error) bool {
	_, ok := target.(*RelationAlreadyDefinedError)
	return ok
}

// ReferringToEmptyClassError is raised when a nested relation points to a
// record type with zero fields.
type ReferringToEmptyClassError struct {
	baseError
	TypeName string
}

func NewReferringToEmptyClassError(typeName string) *ReferringToEmptyClassError {
	return &ReferringToEmptyClassError{baseError: baseError{kind: KindReferringToEmptyClass}, TypeName: typeName}
}

func (e *ReferringToEmptyClassError) Error() string {
	return fmt.Sprintf("binspector: field %q refers to empty record type %q", e.fields, e.TypeName)
}

func (e *ReferringToEmptyClassError) Is(target error) bool {
	_, ok := target.(*ReferringToEmptyClassError)
	return ok
}

// WrongArgumentReturnTypeError is raised when an argument-resolver (the
// function supplying constructor arguments for a nested relation) returns a
// value that is not a slice.
type WrongArgumentReturnTypeError struct {
	baseError
}

func NewWrongArgumentReturnTypeError() *WrongArgumentReturnTypeError {
	return &WrongArgumentReturnTypeError{baseError{kind: KindWrongArgumentReturnType}}
}

func (e *WrongArgumentReturnTypeError) Error() string {
	return fmt.Sprintf("binspector: argument resolver for field %q did not return a slice of arguments", e.fields)
}

func (e *WrongArgumentReturnTypeError) Is(target error) bool {
	_, ok := target.(*WrongArgumentReturnTypeError)
	return ok
}

// ValidationTestFailedError is raised when a validator rejects a decoded
// value. It carries the field name, the offending value, and the cursor
// offset the caller passes in (the reader passes the offset after the
// field was read).
type ValidationTestFailedError struct {
	baseError
	Value any
}

func NewValidationTestFailedError(value any, offset uint64) *ValidationTestFailedError {
	return &ValidationTestFailedError{
		baseError: baseError{kind: KindValidationTestFailed, offset: offset, hasOff: true},
		Value:     value,
	}
}

func (e *ValidationTestFailedError) Error() string {
	return fmt.Sprintf("binspector: validation failed for field %q, value=%v%s", e.fields, e.Value, e.offsetSuffix())
}

func (e *ValidationTestFailedError) Is(target error) bool {
	_, ok := target.(*ValidationTestFailedError)
	return ok
}

// ReferenceError is raised by the expression resolver when a dotted path
// references a key missing from the instance or the ambient context, and
// when an arithmetic expression's path resolves to a non-numeric value.
type ReferenceError struct {
	baseError
	Path string
}

func NewReferenceError(path string) *ReferenceError {
	return &ReferenceError{baseError: baseError{kind: KindReference}, Path: path}
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("binspector: reference error resolving %q (field %q)", e.Path, e.fields)
}

func (e *ReferenceError) Is(target error) bool {
	_, ok := target.(*ReferenceError)
	return ok
}

// WrongBitfieldClassImplementationError is raised by descriptor.Builder.Build
// when a bitfield group is left open. A record that holds a closed bitfield
// group alongside ordinary relation fields does not raise it.
type WrongBitfieldClassImplementationError struct {
	baseError
	TypeName string
}

func NewWrongBitfieldClassImplementationError(typeName string) *WrongBitfieldClassImplementationError {
	return &WrongBitfieldClassImplementationError{baseError: baseError{kind: KindWrongBitfieldClassImplementation}, TypeName: typeName}
}

func (e *WrongBitfieldClassImplementationError) Error() string {
	return fmt.Sprintf("binspector: record %q leaves a bitfield group open (BeginBitfield without EndBitfield)", e.TypeName)
}

func (e *WrongBitfieldClassImplementationError) Is(target error) bool {
	_, ok := target.(*WrongBitfieldClassImplementationError)
	return ok
}

// WithField is a package-level helper that prepends a field name onto any
// taxonomy error's field stack, used by the reader/writer while unwinding
// nested record calls. Errors outside this package pass through unchanged.
func WithField(err error, name string) error {
	var fe interface{ WithField(string) }
	if errors.As(err, &fe) {
		fe.WithField(name)
	}

	return err
}
