package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := Default()

	assert.Equal(t, DefaultInputPath, cfg.GetInputPath())
	assert.Equal(t, DefaultOutputDir, cfg.GetOutputDir())
	assert.Equal(t, DefaultDBPath, cfg.GetDBPath())
	assert.Equal(t, DefaultMinClaimsForDetail, cfg.GetMinClaimsForDetail())
	assert.Equal(t, DefaultTopN, cfg.GetTopN())
	assert.Equal(t, []int{18, 25, 35, 45, 55, 65, 130}, cfg.GetAgeBinEdges())
	assert.Len(t, cfg.GetAgeBinLabels(), 6)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("partial config keeps defaults for omitted fields", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "partial.json", `{"top_n": 5, "output_dir": "reports"}`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.GetTopN())
		assert.Equal(t, "reports", cfg.GetOutputDir())
		assert.Equal(t, DefaultInputPath, cfg.GetInputPath())
		assert.Equal(t, DefaultMinClaimsForDetail, cfg.GetMinClaimsForDetail())
	})

	t.Run("explicit empty db path disables persistence", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "nodb.json", `{"db_path": ""}`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "", cfg.GetDBPath())
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "config.yaml", `{}`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()
		for name, content := range map[string]string{
			"bad threshold":   `{"min_claims_for_detail": 0}`,
			"bad top n":       `{"top_n": -1}`,
			"bad label count": `{"age_bin_edges": [18, 30, 60], "age_bin_labels": ["18-29"]}`,
			"unsorted edges":  `{"age_bin_edges": [18, 30, 25], "age_bin_labels": ["a", "b"]}`,
			"not json":        `top_n: 4`,
		} {
			path := writeConfig(t, "bad.json", content)
			_, err := Load(path)
			assert.Error(t, err, name)
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
