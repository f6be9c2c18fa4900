package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/client"
	"workshop_tool_tracker/config"
	"workshop_tool_tracker/db/dbtest"
	"workshop_tool_tracker/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{App: config.AppConfig{Env: config.AppEnvDev, WebOrigin: "*"}}
	a := app.Assemble(cfg, nil, dbtest.New(t), nil)
	routes.RegisterRoutes(a.Router, a)
	srv := httptest.NewServer(a.Router)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", url}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"tools", "list"}, {"tools", "delete"}, {"scan"}, {"borrow"}, {"return"},
		{"records"}, {"notifications", "watch"}, {"notifications", "read-all"}, {"overdue"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestBorrowRequiresAllFlags(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "borrow", "abcd1234", "--borrower", "Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--location")
	assert.Contains(t, err.Error(), "--purpose")
}

func TestCreateScanBorrowDelete(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv.URL, "tools", "create", "Drill", "--description", "cordless")
	require.NoError(t, err)
	assert.Contains(t, out, "Drill")

	out, err = run(t, srv.URL, "tools", "list")
	require.NoError(t, err)
	require.Contains(t, out, "available")

	tools, err := client.New(srv.URL).ListTools(t.Context())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	id := tools[0].ID

	out, err = run(t, srv.URL, "scan", id, "--borrower", "Alice", "--location", "Shop A", "--purpose", "shelves")
	require.NoError(t, err)
	assert.Contains(t, out, "Borrowed.")

	_, err = run(t, srv.URL, "scan", id, "--borrower", "Bob", "--location", "Shop B", "--purpose", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "borrowed")

	recs, err := client.New(srv.URL).ListActiveRecords(t.Context())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	out, err = run(t, srv.URL, "return", recs[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Returned")

	_, err = run(t, srv.URL, "tools", "delete", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	out, err = run(t, srv.URL, "tools", "delete", id, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
}

func TestNotificationsReadAll(t *testing.T) {
	srv := newServer(t)
	_, err := run(t, srv.URL, "tools", "create", "Saw")
	require.NoError(t, err)

	out, err := run(t, srv.URL, "notifications", "read-all")
	require.NoError(t, err)
	assert.Contains(t, out, "1 notification(s) marked as read")

	out, err = run(t, srv.URL, "notifications", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `New tool "Saw" has been added to the system`)
}
