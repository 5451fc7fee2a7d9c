package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binspector/binspector/errs"
)

func TestMatch_Accepts(t *testing.T) {
	v := Match(uint8(42))
	ok, err := v.Pred(uint8(42), nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMatch_Rejects(t *testing.T) {
	v := Match(uint8(42))
	ok, err := v.Pred(uint8(7), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMatch_DeepEqualSlice(t *testing.T) {
	v := Match([]any{uint8(1), uint8(2)})
	ok, err := v.Pred([]any{uint8(1), uint8(2)}, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestValidate_CustomPredicate(t *testing.T) {
	v := Validate("even", func(value any, _ map[string]any) (bool, error) {
		n, _ := value.(uint8)
		return n%2 == 0, nil
	})

	ok, err := v.Pred(uint8(4), nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = v.Pred(uint8(3), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestChain_Run_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	chain := Chain{
		Validate("always-true", func(value any, _ map[string]any) (bool, error) {
			calls++
			return true, nil
		}),
		Match(uint8(99)),
		Validate("never-reached", func(value any, _ map[string]any) (bool, error) {
			calls++
			return true, nil
		}),
	}

	err := chain.Run(uint8(5), nil, 12)
	require.Error(t, err)

	var vErr *errs.ValidationTestFailedError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, 1, calls)
}

func TestChain_Run_AllPass(t *testing.T) {
	chain := Chain{Match(uint8(5)), Validate("positive", func(value any, _ map[string]any) (bool, error) {
		return true, nil
	})}

	err := chain.Run(uint8(5), nil, 0)
	require.NoError(t, err)
}
