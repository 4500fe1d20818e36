package claims

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/claims.report/internal/fsutil"
)

func TestNewCSVSource(t *testing.T) {
	t.Parallel()

	t.Run("missing file wraps fs.ErrNotExist", func(t *testing.T) {
		t.Parallel()
		_, err := NewCSVSource(fsutil.NewMemoryFileSystem(), "absent.csv")
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("empty file errors", func(t *testing.T) {
		t.Parallel()
		mem := fsutil.NewMemoryFileSystem()
		require.NoError(t, mem.WriteFile("claims.csv", nil, 0644))
		_, err := NewCSVSource(mem, "claims.csv")
		assert.Error(t, err)
	})

	t.Run("reads header and ragged rows", func(t *testing.T) {
		t.Parallel()
		mem := fsutil.NewMemoryFileSystem()
		content := "CLAIM_ID,CLAIM_DATE,CLAIM_AMOUNT_PAID\nC1,01/02/2023,120.50\nC2,02/02/2023\n"
		require.NoError(t, mem.WriteFile("claims.csv", []byte(content), 0644))

		src, err := NewCSVSource(mem, "claims.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"CLAIM_ID", "CLAIM_DATE", "CLAIM_AMOUNT_PAID"}, src.Header())

		rows, err := src.Rows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"C1", "01/02/2023", "120.50"}, rows[0])
		assert.Len(t, rows[1], 2)
	})

	t.Run("works against the real filesystem", func(t *testing.T) {
		t.Parallel()
		path := t.TempDir() + "/claims.csv"
		require.NoError(t, os.WriteFile(path, []byte("CLAIM_ID\nC1\n"), 0644))

		src, err := NewCSVSource(fsutil.OSFileSystem{}, path)
		require.NoError(t, err)
		assert.Equal(t, []string{"CLAIM_ID"}, src.Header())
	})
}
