package client

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTerminal(t *testing.T, terminal bool, password []byte, err error) {
	t.Helper()
	oldRead, oldIs := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldIs })

	isTerminal = func(int) bool { return terminal }
	readPassword = func(int) ([]byte, error) { return password, err }
}

func TestPromptKey(t *testing.T) {
	withTerminal(t, true, []byte(" secret \n"), nil)

	var out bytes.Buffer
	key, err := PromptKey(os.Stdin, &out)
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
	assert.Equal(t, "Enter licence key: \n", out.String())
}

func TestPromptKey_NotATerminal(t *testing.T) {
	withTerminal(t, false, nil, nil)

	_, err := PromptKey(os.Stdin, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoTerminal)
}

func TestPromptKey_ReadError(t *testing.T) {
	withTerminal(t, true, nil, errors.New("boom"))

	_, err := PromptKey(os.Stdin, &bytes.Buffer{})
	assert.EqualError(t, err, "boom")
}
