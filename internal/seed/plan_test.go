package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlan_OverridesDefaults(t *testing.T) {
	plan, err := ParsePlan([]byte(`
rand_seed: 42
creators: 2
consumers: 3
gated_percent: 100
clean: false
`))
	require.NoError(t, err)

	assert.Equal(t, int64(42), plan.RandSeed)
	assert.Equal(t, 2, plan.Creators)
	assert.Equal(t, 3, plan.Consumers)
	assert.Equal(t, 100, plan.GatedPercent)
	assert.False(t, plan.Clean)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultPlan().PostsPerCreator, plan.PostsPerCreator)
	assert.Equal(t, DefaultPassword, plan.Password)
}

func TestParsePlan_Rejects(t *testing.T) {
	tests := map[string]string{
		"negative count": "creators: -1",
		"percent range":  "gated_percent: 150",
		"empty password": `password: ""`,
		"bad yaml":       "creators: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("posts_per_creator: 7\n"), 0o600))

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, 7, plan.PostsPerCreator)

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
