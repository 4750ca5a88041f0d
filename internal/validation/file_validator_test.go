package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/internal/shared/testutil"
)

func TestFileValidator_ValidateTableFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   error
	}{
		{
			name: "csv table",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteBondDataset(t).PurchasesPath
			},
		},
		{
			name: "xlsx table",
			setupFunc: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "Purchases.XLSX")
				require.NoError(t, os.WriteFile(p, []byte("PK"), 0644))
				return p
			},
		},
		{
			name:      "empty path",
			setupFunc: func(t *testing.T) string { return "" },
			wantErr:   ErrPathNotSet,
		},
		{
			name:      "missing file",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			wantErr:   ErrNotExist,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "tables.csv")
				require.NoError(t, os.Mkdir(p, 0755))
				return p
			},
			wantErr: ErrIsDirectory,
		},
		{
			name: "pdf",
			setupFunc: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "disclosure.pdf")
				require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0644))
				return p
			},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "~$purchases.xlsx")
				require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
				return p
			},
			wantErr: ErrSpreadsheetLockFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateTableFile(tt.setupFunc(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "exports", "2024")
		require.NoError(t, v.ValidateOutputDirectory(dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write probe must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(file, nil, 0644))

		assert.Error(t, v.ValidateOutputDirectory(file))
		assert.True(t, handler.ContainsMessage("Failed to create output directory"))
	})
}

func TestNewFileValidator_NilLogger(t *testing.T) {
	v := NewFileValidator(nil)
	assert.ErrorIs(t, v.ValidateTableFile(""), ErrPathNotSet)
}
