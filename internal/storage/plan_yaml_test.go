package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohome/internal/core/store"
)

func TestLoadPlanFile(t *testing.T) {
	planPath := filepath.Join(t.TempDir(), "plan.yaml")
	content := `events:
  - name: laundry
    duration: 45
  - name: bread
    duration: 20
    loops: 3
    elapsed_first: 5
    order: 1
`
	require.NoError(t, os.WriteFile(planPath, []byte(content), 0o644))

	params, err := LoadPlanFile(planPath)
	require.NoError(t, err)
	assert.Equal(t, []store.AddParams{
		{Name: "laundry", Duration: 45, Loops: 1},
		{Name: "bread", Duration: 20, Loops: 3, ElapsedFirst: 5, Order: 1},
	}, params)
}

func TestParsePlanErrors(t *testing.T) {
	_, err := ParsePlan([]byte("events: []\n"))
	require.ErrorIs(t, err, ErrEmptyPlan)

	_, err = ParsePlan([]byte("events: [\n"))
	require.Error(t, err)

	_, err = ParsePlan([]byte("events:\n  - name: x\n    duration: 5\n    loops: 0\n"))
	require.ErrorIs(t, err, store.ErrInvalidEventParameters)

	_, err = LoadPlanFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
