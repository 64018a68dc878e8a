package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionRef(t *testing.T) {
	t.Parallel()

	ref, err := parseActionRef("checkout@v1")
	require.NoError(t, err)
	assert.Equal(t, "checkout", ref.Name)
	assert.Equal(t, "v1", ref.Version)

	_, err = parseActionRef("checkout")
	assert.ErrorIs(t, err, ErrBadActionRef)

	_, err = parseActionRef("@v1")
	assert.ErrorIs(t, err, ErrBadActionRef)

	_, err = parseActionRef("checkout@")
	assert.ErrorIs(t, err, ErrBadActionRef)
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	action, err := reg.resolve(actionRef{Name: "checkout", Version: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "checkout", action.Name())

	_, err = reg.resolve(actionRef{Name: "teleport", Version: "v1"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCheckoutAction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inv := &Invocation{
		With: map[string]string{"path": dir},
		Env:  map[string]string{},
		Dir:  ".",
	}

	err := checkoutAction{}.Run(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, dir, inv.Dir)
}

func TestCheckoutActionMissingPath(t *testing.T) {
	t.Parallel()

	inv := &Invocation{
		With: map[string]string{"path": "does-not-exist"},
		Env:  map[string]string{},
		Dir:  t.TempDir(),
	}

	err := checkoutAction{}.Run(context.Background(), inv)
	assert.Error(t, err)
}

func TestSetupEnvAction(t *testing.T) {
	t.Parallel()

	inv := &Invocation{
		With: map[string]string{"A": "1", "B": "2"},
		Env:  map[string]string{"A": "0"},
	}

	err := setupEnvAction{}.Run(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, inv.Env)

	err = setupEnvAction{}.Run(context.Background(), &Invocation{Env: map[string]string{}})
	assert.Error(t, err)
}
