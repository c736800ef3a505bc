// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogJSON = `{
  "languages": {
    "en": {
      "lang_name": "English",
      "direction": "ltr",
      "resources": {
        "scripture": {
          "display_name": "unfoldingWord Literal Text",
          "books": {
            "tit": {"download_url": "https://example.org/en_ulb.git"}
          }
        },
        "notes": {
          "display_name": "translationNotes",
          "zip_url": "https://example.org/en_tn.zip"
        }
      }
    }
  }
}`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(p, []byte(testCatalogJSON), 0o644))
	return p
}

func TestResolve_BookSubentryWins(t *testing.T) {
	c, err := Load(writeTestCatalog(t), time.Hour)
	require.NoError(t, err)
	loc, err := c.Resolve("en", "scripture", "tit")
	require.NoError(t, err)
	require.True(t, loc.Found())
	assert.Equal(t, TransportGit, loc.Transport)
	assert.Equal(t, "unfoldingWord Literal Text", loc.ResourceTypeName)
}

func TestResolve_GroupZipFallback(t *testing.T) {
	c, err := Load(writeTestCatalog(t), time.Hour)
	require.NoError(t, err)
	loc, err := c.Resolve("en", "notes", "tit")
	require.NoError(t, err)
	require.True(t, loc.Found())
	assert.Equal(t, TransportZip, loc.Transport)
}

func TestResolve_MissingEntryNotFatal(t *testing.T) {
	c, err := Load(writeTestCatalog(t), time.Hour)
	require.NoError(t, err)
	loc, err := c.Resolve("sw", "scripture", "tit")
	require.NoError(t, err)
	assert.False(t, loc.Found())
}

func TestLoad_MissingCatalogIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), time.Hour)
	assert.Error(t, err)
}

func TestResolve_ResourceTypeAlias(t *testing.T) {
	c, err := Load(writeTestCatalog(t), time.Hour)
	require.NoError(t, err)
	loc, err := c.Resolve("en", "tn", "tit")
	require.NoError(t, err)
	assert.True(t, loc.Found())
}
