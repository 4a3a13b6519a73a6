package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	token, err := NewStatic("secret").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}

func TestStaticEmptyToken(t *testing.T) {
	_, err := NewStatic("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("PANTRYSYNC_TEST_TOKEN", "rotated")

	token, err := NewEnvProvider("PANTRYSYNC_TEST_TOKEN").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", token)
}

func TestEnvProviderMissing(t *testing.T) {
	_, err := NewEnvProvider("PANTRYSYNC_ABSENT_TOKEN").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}
