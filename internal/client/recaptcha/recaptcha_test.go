package recaptcha

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFresh_DisabledProviderYieldsEmptyToken(t *testing.T) {
	tok, err := Fresh(context.Background(), Disabled{}, "register")
	require.NoError(t, err)
	require.Empty(t, tok)

	tok, err = Fresh(context.Background(), nil, "register")
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestFresh_EnabledProviderReturnsToken(t *testing.T) {
	var gotAction string
	p := FuncProvider(func(ctx context.Context, action string) (string, error) {
		gotAction = action
		return "tok-1", nil
	})

	tok, err := Fresh(context.Background(), p, "phone_verification")
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
	require.Equal(t, "phone_verification", gotAction)
}

func TestFresh_EmptyTokenBlocksSubmission(t *testing.T) {
	p := FuncProvider(func(context.Context, string) (string, error) { return "", nil })

	_, err := Fresh(context.Background(), p, "register")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestFresh_ExecutionErrorBlocksSubmission(t *testing.T) {
	boom := errors.New("widget failed to load")
	p := FuncProvider(func(context.Context, string) (string, error) { return "", boom })

	_, err := Fresh(context.Background(), p, "register")
	require.ErrorIs(t, err, ErrNoToken)
	require.ErrorIs(t, err, boom)
}

func TestStatic(t *testing.T) {
	require.False(t, Static("").Enabled())
	require.True(t, Static("tok").Enabled())

	tok, err := Fresh(context.Background(), Static("tok"), "login")
	require.NoError(t, err)
	require.Equal(t, "tok", tok)
}
