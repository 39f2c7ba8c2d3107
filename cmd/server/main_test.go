package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/auth"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	outletID := uuid.New()

	out, err := runCLI(t, "token", "--outlet", outletID.String(), "--role", "manager")
	require.NoError(t, err)

	claims, err := auth.ValidateToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, outletID, claims.OutletID)
	assert.Equal(t, enum.UserRoleManager, claims.Role)
}

func TestTokenCommand_Validation(t *testing.T) {
	_, err := runCLI(t, "token")
	assert.Error(t, err, "missing --outlet")

	_, err = runCLI(t, "token", "--outlet", "not-a-uuid")
	assert.Error(t, err)

	_, err = runCLI(t, "token", "--outlet", uuid.New().String(), "--role", "chef")
	assert.Error(t, err)
}

func TestMigrateCommand_RequiresDirection(t *testing.T) {
	_, err := runCLI(t, "migrate", "sideways")
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "")
	_, err = runCLI(t, "migrate", "up")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
