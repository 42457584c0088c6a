package expression

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_CompileBool(t *testing.T) {
	t.Parallel()

	c := NewCache(10)
	env := map[string]any{"battery": 0.8}

	program, err := c.CompileBool("battery > 0.5", env)
	require.NoError(t, err)
	ok, err := EvalBool(program, env)
	require.NoError(t, err)
	require.True(t, ok)

	again, err := c.CompileBool("battery > 0.5", map[string]any{})
	require.NoError(t, err)
	require.Same(t, program, again)

	size, hits, misses, ratio := c.Stats()
	require.Equal(t, 1, size)
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(1), misses)
	require.InDelta(t, 0.5, ratio, 1e-9)
	require.Contains(t, c.String(), "hits=1")
}

func TestCache_KeyedByEnvironmentType(t *testing.T) {
	t.Parallel()

	type structEnv struct {
		Value any `expr:"value"`
	}

	c := NewCache(10)
	_, err := c.CompileBool("value == 1", map[string]any{})
	require.NoError(t, err)
	program, err := c.CompileBool("value == 1", structEnv{})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	ok, err := EvalBool(program, structEnv{Value: 1})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCache_UndefinedVariables(t *testing.T) {
	t.Parallel()

	c := NewCache(10)
	program, err := c.CompileBool("missing == nil", map[string]any{})
	require.NoError(t, err)
	ok, err := EvalBool(program, map[string]any{})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCache_Errors(t *testing.T) {
	t.Parallel()

	c := NewCache(10)
	_, err := c.CompileBool("", map[string]any{})
	require.ErrorIs(t, err, ErrEmptyExpression)

	_, err = c.CompileBool("1 +", map[string]any{})
	require.Error(t, err)

	_, err = c.CompileBool(`"str"`, map[string]any{})
	require.Error(t, err, "non-boolean expressions are rejected at compile time")
	require.Equal(t, 0, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := NewCache(2)
	env := map[string]any{}
	a, err := c.CompileBool("true", env)
	require.NoError(t, err)
	_, err = c.CompileBool("false", env)
	require.NoError(t, err)

	// touch "true" so that "false" is the eviction candidate
	_, err = c.CompileBool("true", env)
	require.NoError(t, err)
	_, err = c.CompileBool("1 == 1", env)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	_, hitsBefore, _, _ := c.Stats()
	got, err := c.CompileBool("true", env)
	require.NoError(t, err)
	require.Same(t, a, got)
	_, hitsAfter, _, _ := c.Stats()
	require.Equal(t, hitsBefore+1, hitsAfter)

	_, _, missesBefore, _ := c.Stats()
	_, err = c.CompileBool("false", env)
	require.NoError(t, err)
	_, _, missesAfter, _ := c.Stats()
	require.Equal(t, missesBefore+1, missesAfter)

	c.Resize(1)
	require.Equal(t, 1, c.Len())
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewCache(4)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, src := range []string{"x > 1", "x > 2", "x > 3", "x > 4", "x > 5"} {
				program, err := c.CompileBool(src, map[string]any{})
				if err != nil {
					t.Error(err)
					return
				}
				if _, err := EvalBool(program, map[string]any{"x": 3}); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, c.Len(), 4)
}
