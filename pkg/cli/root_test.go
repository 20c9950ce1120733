package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweave/console/pkg/api/apitest"
	"github.com/streamweave/console/pkg/tokenstore"
)

var (
	adminCred = apitest.Credential{Email: "admin@lab.example.org", Password: "hunter2", Role: "admin"}
	userCred  = apitest.Credential{Email: "user@lab.example.org", Password: "secret", Role: "user"}
)

// newTestEnv points the CLI at a fake backend with an isolated token file.
func newTestEnv(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer(adminCred, userCred)
	t.Cleanup(srv.Close)
	t.Setenv("SW_API_URL", srv.URL)
	t.Setenv("SW_TOKEN_PATH", filepath.Join(t.TempDir(), "token"))
	t.Setenv("SW_LOG_LEVEL", "error")
	return srv
}

func TestRootCommandHasAllSubcommands(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{
		"login", "logout", "whoami", "list", "get", "create",
		"update", "delete", "restore", "trigger", "watch",
	} {
		assert.Contains(t, root.Subcommands, name)
	}
}

func TestLoginStoresToken(t *testing.T) {
	newTestEnv(t)

	err := runLogin([]string{"-email", adminCred.Email, "-password", adminCred.Password})

	require.NoError(t, err)
	app, err := newApp()
	require.NoError(t, err)
	token, err := app.Store.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginBadCredentialsLeavesNoToken(t *testing.T) {
	newTestEnv(t)

	err := runLogin([]string{"-email", adminCred.Email, "-password", "wrong"})

	require.Error(t, err)
	app, err := newApp()
	require.NoError(t, err)
	_, loadErr := app.Store.Load()
	assert.ErrorIs(t, loadErr, tokenstore.ErrNoToken)
}

func TestLogoutClearsToken(t *testing.T) {
	newTestEnv(t)
	require.NoError(t, runLogin([]string{"-email", adminCred.Email, "-password", adminCred.Password}))

	require.NoError(t, runLogout(nil))

	app, err := newApp()
	require.NoError(t, err)
	_, loadErr := app.Store.Load()
	assert.ErrorIs(t, loadErr, tokenstore.ErrNoToken)
}

func TestWhoamiRequiresLogin(t *testing.T) {
	newTestEnv(t)

	err := runWhoami(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestWhoamiAfterLogin(t *testing.T) {
	newTestEnv(t)
	require.NoError(t, runLogin([]string{"-email", userCred.Email, "-password", userCred.Password}))

	assert.NoError(t, runWhoami(nil))
}
