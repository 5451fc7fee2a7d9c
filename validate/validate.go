// Package validate implements read-time assertions against a decoded
// field value: Match against a literal (by deep equality) and Validate
// against an arbitrary predicate.
package validate

import (
	"reflect"

	"github.com/binspector/binspector/errs"
)

// Predicate reports whether value is acceptable.
type Predicate func(value any, instance map[string]any) (bool, error)

// Validator is one entry in a field's validation chain, run after
// transformers on read only.
type Validator struct {
	Pred Predicate
	Name string
}

// Match returns a Validator that compares the decoded value to literal
// by deep equality (covering arrays/slices).
func Match(literal any) Validator {
	return Validator{
		Name: "Match",
		Pred: func(value any, _ map[string]any) (bool, error) {
			return reflect.DeepEqual(value, literal), nil
		},
	}
}

// Validate returns a Validator around an arbitrary user predicate.
func Validate(name string, pred Predicate) Validator {
	return Validator{Name: name, Pred: pred}
}

// Chain is an ordered list of validators attached to a field.
type Chain []Validator

// Run evaluates every validator in order and returns
// errs.ValidationTestFailedError for the first one that rejects value.
func (c Chain) Run(value any, instance map[string]any, offset uint64) error {
	for _, v := range c {
		ok, err := v.Pred(value, instance)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NewValidationTestFailedError(value, offset)
		}
	}

	return nil
}
