// Package config resolves gud's committer identity from a repo-local
// config file merged over a user-global one. It is deliberately kept apart
// from the core packages (spec.md §1 treats configuration storage as an
// external collaborator); the core only depends on the Source interface.
//
// Grounded on gud/config.py (GlobalConfig/RepoConfig,
// Repository.resolve_working_config) in original_source/, reimplemented
// with github.com/go-git/gcfg for INI parsing (the library go-git itself
// vendors for this format) and dario.cat/mergo for the global-into-repo
// merge instead of per-section dict copying.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"dario.cat/mergo"
	"github.com/go-git/gcfg"
)

// ErrInvalidName is returned when user.name or user.email fails
// validation (§7's invalid-name kind).
var ErrInvalidName = errors.New("gud: invalid-name")

// usernameRE and emailRE port helpers.is_valid_username /
// helpers.is_valid_email from the original source.
var (
	usernameRE = regexp.MustCompile(`^\w+$`)
	emailRE    = regexp.MustCompile(`^\w+@[a-zA-Z]+\.[a-zA-Z]+$`)
)

const maxUserNameLen = 16

// Source is the committer-identity contract the core consumes at commit
// time (§6: "user.name" / "user.email").
type Source interface {
	UserName() (string, error)
	UserEmail() (string, error)
}

type userSection struct {
	Name  string
	Email string
}

type iniConfig struct {
	User userSection
}

// Config is a resolved (global + repo-local) configuration.
type Config struct {
	ini iniConfig
}

// UserName returns the configured user.name, validated against the
// original source's username rule: word characters only, 16 or fewer.
func (c *Config) UserName() (string, error) {
	name := c.ini.User.Name
	if name == "" || len(name) > maxUserNameLen || !usernameRE.MatchString(name) {
		return "", fmt.Errorf("gud: user.name %q: %w", name, ErrInvalidName)
	}
	return name, nil
}

// UserEmail returns the configured user.email, validated against the
// original source's basic email shape.
func (c *Config) UserEmail() (string, error) {
	email := c.ini.User.Email
	if !emailRE.MatchString(email) {
		return "", fmt.Errorf("gud: user.email %q: %w", email, ErrInvalidName)
	}
	return email, nil
}

// Resolve merges a repo-local config over a user-global one: repo-local
// values win, global values fill in anything the repo leaves blank. Both
// readers may be nil (a fresh repo has no local config yet; a sandboxed
// environment may have no global one).
func Resolve(global, repo io.Reader) (*Config, error) {
	var globalCfg, repoCfg iniConfig

	if global != nil {
		if err := gcfg.ReadInto(&globalCfg, global); err != nil {
			return nil, fmt.Errorf("gud: parsing global config: %w", err)
		}
	}
	if repo != nil {
		if err := gcfg.ReadInto(&repoCfg, repo); err != nil {
			return nil, fmt.Errorf("gud: parsing repo config: %w", err)
		}
	}

	merged := repoCfg
	if err := mergo.Merge(&merged, globalCfg); err != nil {
		return nil, fmt.Errorf("gud: merging config: %w", err)
	}

	return &Config{ini: merged}, nil
}

// GlobalPath returns the conventional per-user config path: $XDG_CONFIG_HOME/gud/config,
// or ~/.config/gud/config if that variable is unset.
func GlobalPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gud", "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gud", "config"), nil
}

// OpenGlobal opens the user-global config file, returning (nil, nil) if
// it does not exist yet — callers then resolve purely from the repo-local
// file.
func OpenGlobal() (io.ReadCloser, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}
