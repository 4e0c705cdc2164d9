package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestProjectListText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Success(projectList{
		{ID: "p-2", Name: "Inventory", Tables: 3, Relations: 2, UpdatedAt: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "p-1", Name: "Acme SaaS", Tables: 7, Relations: 6, UpdatedAt: time.Date(2026, 5, 30, 8, 15, 0, 0, time.UTC)},
	}))
	golden(t).Assert(t, "projects_list", buf.Bytes())
}

func TestRepairJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Success(projectRepaired{ID: "legacy", Changed: 1}))
	golden(t).Assert(t, "repair_json", buf.Bytes())
}
