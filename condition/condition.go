// Package condition implements runtime selection among candidate
// relations for a field whose binding depends on sibling values:
// IfThen/Else chains, a Choice switch on a resolved key, and a
// late-bound Select lookup that enables recursive and mutually
// recursive record types.
package condition

import (
	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/errs"
	"github.com/binspector/binspector/relation"
)

// Predicate evaluates a condition's guard against the instance being
// built and the ambient context.
type Predicate func(instance map[string]any, ctx *bctx.Context) (bool, error)

// Clause is one link in an IfThen/Else chain: if Pred returns true (or
// Pred is nil, modeling an unconditional Else), Rel is the field's
// relation.
type Clause struct {
	Pred Predicate
	Rel  relation.Relation
}

// If returns a Clause that selects rel when pred evaluates true.
func If(pred Predicate, rel relation.Relation) Clause {
	return Clause{Pred: pred, Rel: rel}
}

// Else returns an unconditional default Clause, valid only as the last
// entry of a Chain.
func Else(rel relation.Relation) Clause {
	return Clause{Rel: rel}
}

// Chain is an ordered IfThen/.../Else condition list. The first clause
// whose predicate is true (or which has no predicate, i.e. an Else) wins.
type Chain []Clause

// Resolve evaluates the chain in order and returns the first matching
// relation. If none match, it returns errs.NoConditionMatchedError.
func (c Chain) Resolve(instance map[string]any, ctx *bctx.Context) (relation.Relation, error) {
	for _, clause := range c {
		if clause.Pred == nil {
			return clause.Rel, nil
		}

		ok, err := clause.Pred(instance, ctx)
		if err != nil {
			return relation.Relation{}, err
		}
		if ok {
			return clause.Rel, nil
		}
	}

	return relation.Relation{}, errs.NewNoConditionMatchedError()
}

// KeyFunc resolves the discriminant a Choice switches on.
type KeyFunc func(instance map[string]any, ctx *bctx.Context) (any, error)

// Choice is a switch on a resolved key: the relation bound to the key's
// value, or Default if the key isn't in the table and Default is set.
type Choice struct {
	Key        KeyFunc
	Cases      map[any]relation.Relation
	HasDefault bool
	Default    relation.Relation
}

// NewChoice builds a Choice over cases, keyed by KeyFunc's resolved
// value.
func NewChoice(key KeyFunc, cases map[any]relation.Relation) *Choice {
	return &Choice{Key: key, Cases: cases}
}

// WithDefault attaches a fallback relation used when the resolved key has
// no matching case.
func (c *Choice) WithDefault(rel relation.Relation) *Choice {
	c.HasDefault = true
	c.Default = rel

	return c
}

// Resolve evaluates the key and looks it up in Cases.
func (c *Choice) Resolve(instance map[string]any, ctx *bctx.Context) (relation.Relation, error) {
	key, err := c.Key(instance, ctx)
	if err != nil {
		return relation.Relation{}, err
	}

	if rel, ok := c.Cases[key]; ok {
		return rel, nil
	}

	if c.HasDefault {
		return c.Default, nil
	}

	return relation.Relation{}, errs.NewNoConditionMatchedError()
}

// SelectFunc is invoked at read/write time to produce a relation,
// typically by looking up a descriptor in a registry keyed by a runtime
// value — the indirection that lets a type reference itself or a type
// declared later without creating a Go initialization cycle.
type SelectFunc func(instance map[string]any, ctx *bctx.Context) (relation.Relation, error)

// Select wraps a SelectFunc as a single-clause resolver.
type Select struct {
	Fn SelectFunc
}

// NewSelect returns a Select condition around fn.
func NewSelect(fn SelectFunc) *Select {
	return &Select{Fn: fn}
}

// Resolve invokes the underlying SelectFunc.
func (s *Select) Resolve(instance map[string]any, ctx *bctx.Context) (relation.Relation, error) {
	return s.Fn(instance, ctx)
}

// Resolver is satisfied by Chain, *Choice, and *Select, letting a field
// descriptor hold any one of them uniformly.
type Resolver interface {
	Resolve(instance map[string]any, ctx *bctx.Context) (relation.Relation, error)
}
