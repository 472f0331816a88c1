package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/bgrs/internal/pkg/auth"
)

func TestRunMintsValidToken(t *testing.T) {
	t.Setenv("BGRS_JWT_SECRET", "ops-secret")
	missing := filepath.Join(t.TempDir(), "none.yaml")

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", missing, "--subject", "gobber", "--ttl", "5m"}, &out))

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "ops-secret",
		AccessTokenExp: time.Minute,
		TokenIssuer:    "bgrs",
	})
	claims, err := jwtService.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "gobber", claims.Username)
	assert.Equal(t, "ADMIN", claims.RoleType)
}

func TestRunRequiresSecret(t *testing.T) {
	err := run([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "JWT secret")
}

func TestRunRejectsUnknownRole(t *testing.T) {
	t.Setenv("BGRS_JWT_SECRET", "ops-secret")
	err := run([]string{"--role", "JANITOR"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown role")
}
