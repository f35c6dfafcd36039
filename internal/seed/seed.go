// Package seed bootstraps accounts from a YAML file, typically the first
// admin of a fresh database.
//
//	users:
//	  - username: root
//	    password: change-me
//	    role: admin
//	  - username: alice
//	    password: alice-pw
//	    position: graphic_design
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"task_portal/internal/core"
	"task_portal/internal/models"
)

type File struct {
	Users []User `yaml:"users"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Role defaults to staff.
	Role     string `yaml:"role"`
	Position string `yaml:"position"`
}

func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document. Unknown keys are rejected so that a
// misspelled field does not silently create an account without it.
func Parse(raw []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

type Seeder interface {
	SeedUser(ctx context.Context, in core.NewUser) (bool, error)
}

// Apply creates every listed user that does not exist yet and returns
// how many were created. It stops at the first invalid entry.
func Apply(ctx context.Context, log *slog.Logger, svc Seeder, f File) (int, error) {
	created := 0
	for i, u := range f.Users {
		nu := core.NewUser{
			Username: u.Username,
			Password: u.Password,
			Role:     models.RoleStaff,
		}
		if u.Role != "" {
			nu.Role = models.Role(u.Role)
		}
		if u.Position != "" {
			p := models.Position(u.Position)
			nu.Position = &p
		}

		ok, err := svc.SeedUser(ctx, nu)
		if err != nil {
			return created, fmt.Errorf("seed user %d (%q): %w", i+1, u.Username, err)
		}
		if !ok {
			log.Debug("seed user exists, skipped", "username", u.Username)
			continue
		}
		log.Info("seed user created", "username", u.Username, "role", nu.Role)
		created++
	}
	return created, nil
}
