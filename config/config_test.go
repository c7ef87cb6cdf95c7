package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRepoOnly(t *testing.T) {
	repo := strings.NewReader("[user]\n\tname = adalovelace\n\temail = ada@example.com\n")

	cfg, err := Resolve(nil, repo)
	require.NoError(t, err)

	name, err := cfg.UserName()
	require.NoError(t, err)
	assert.Equal(t, "adalovelace", name)

	email, err := cfg.UserEmail()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
}

func TestResolveRepoOverridesGlobal(t *testing.T) {
	global := strings.NewReader("[user]\n\tname = globaluser\n\temail = global@example.com\n")
	repo := strings.NewReader("[user]\n\tname = repouser\n")

	cfg, err := Resolve(global, repo)
	require.NoError(t, err)

	name, err := cfg.UserName()
	require.NoError(t, err)
	assert.Equal(t, "repouser", name)

	// email falls back to the global value since repo leaves it blank.
	email, err := cfg.UserEmail()
	require.NoError(t, err)
	assert.Equal(t, "global@example.com", email)
}

func TestResolveNeitherReaderRejectsEmptyName(t *testing.T) {
	cfg, err := Resolve(nil, nil)
	require.NoError(t, err)

	_, err = cfg.UserName()
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestUserNameTooLongRejected(t *testing.T) {
	repo := strings.NewReader("[user]\n\tname = waytoolongusername1234\n\temail = a@b.com\n")
	cfg, err := Resolve(nil, repo)
	require.NoError(t, err)

	_, err = cfg.UserName()
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestUserEmailInvalidRejected(t *testing.T) {
	repo := strings.NewReader("[user]\n\tname = ada\n\temail = not-an-email\n")
	cfg, err := Resolve(nil, repo)
	require.NoError(t, err)

	_, err = cfg.UserEmail()
	assert.ErrorIs(t, err, ErrInvalidName)
}
