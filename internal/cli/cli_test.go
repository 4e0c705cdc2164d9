package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/repository"
	"github.com/erd-studio/engine/internal/services"
	"github.com/erd-studio/engine/internal/templates"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func memoryOpener(store repository.Gateway) Opener {
	return func(context.Context, bool) (services.ProjectService, func() error, error) {
		return services.NewProjectService(store, templates.New(), nil), func() error { return nil }, nil
	}
}

func run(t *testing.T, store repository.Gateway, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(memoryOpener(store))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(memoryOpener(repository.NewMemoryGateway()))
	for _, name := range []string{"list", "create", "delete", "repair"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{"projects", name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCreateAndListJSON(t *testing.T) {
	store := repository.NewMemoryGateway()

	out, err := run(t, store, "projects", "create", "--name", "Acme", "--template", "saas", "--format", "json")
	require.NoError(t, err)
	var created struct {
		Status string         `json:"status"`
		Data   projectCreated `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "ok", created.Status)
	assert.Equal(t, 7, created.Data.Tables)
	assert.Equal(t, 6, created.Data.Relations)

	out, err = run(t, store, "projects", "list", "--format", "json")
	require.NoError(t, err)
	var listed struct {
		Data []services.ProjectSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Acme", listed.Data[0].Name)
}

func TestListText(t *testing.T) {
	store := repository.NewMemoryGateway()
	_, err := run(t, store, "projects", "create", "--name", "Inventory")
	require.NoError(t, err)

	out, err := run(t, store, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Inventory")
}

func TestDeleteMissing(t *testing.T) {
	out, err := run(t, repository.NewMemoryGateway(), "projects", "delete", "ghost", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, string(appErr.CodeNotFound), resp.Error.Code)
}

func TestRepair(t *testing.T) {
	store := repository.NewMemoryGateway()
	require.NoError(t, store.Put(context.Background(), &diagram.Project{
		ID:   "legacy",
		Name: "legacy",
		Nodes: []diagram.Node{
			{ID: "A", Position: diagram.Position{X: 0}, Data: diagram.TableData{Columns: []diagram.Column{{ID: "a"}}}},
			{ID: "B", Position: diagram.Position{X: 900}, Data: diagram.TableData{Columns: []diagram.Column{{ID: "b"}}}},
		},
		Edges: []diagram.Edge{{ID: "e", Source: "A", Target: "B", SourceHandle: "a", TargetHandle: "b"}},
	}))

	out, err := run(t, store, "projects", "repair", "legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "re-routed 1 edges")

	stored, err := store.Get(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, "sr-a", stored.Edges[0].SourceHandle)
	assert.Equal(t, "tl-b", stored.Edges[0].TargetHandle)

	out, err = run(t, store, "projects", "repair", "legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "already routed")
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, repository.NewMemoryGateway(), "projects", "list", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
