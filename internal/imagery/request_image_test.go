package imagery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadOrthomosaic(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "test-token",
			"token_type":   "bearer",
		})
	}))
	defer tokenServer.Close()

	apiCalls := 0
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "estanzuela", payload["campaign"])
		assert.Equal(t, "multispectral", payload["product"])
		w.Write([]byte("tiff-bytes"))
	}))
	defer apiServer.Close()

	t.Setenv("ROOT_PATH", t.TempDir())
	t.Setenv("IMAGERY_CLIENT_ID", "id")
	t.Setenv("IMAGERY_CLIENT_SECRET", "secret")
	t.Setenv("IMAGERY_TOKEN_URL", tokenServer.URL)
	t.Setenv("IMAGERY_API_URL", apiServer.URL)

	path, err := DownloadOrthomosaic("estanzuela", "2026-01-10", ProductMultispectral)
	require.NoError(t, err)
	assert.Contains(t, path, "2026-01-10")
	assert.Contains(t, path, "_ms.tif")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tiff-bytes", string(content))

	// Second download of the same export comes out of the file cache.
	_, err = DownloadOrthomosaic("estanzuela", "2026-01-10", ProductMultispectral)
	require.NoError(t, err)
	assert.Equal(t, 1, apiCalls)
}

func TestDownloadOrthomosaicMissingCredentials(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())
	t.Setenv("IMAGERY_CLIENT_ID", "")
	t.Setenv("IMAGERY_CLIENT_SECRET", "")
	t.Setenv("IMAGERY_TOKEN_URL", "")
	t.Setenv("IMAGERY_API_URL", "")

	_, err := DownloadOrthomosaic("estanzuela", "2026-01-10", ProductRGB)
	assert.Error(t, err)
}
