// internal/render/client_test.go
package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchbot/internal/common/config"
	"searchbot/internal/common/logger"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.RenderConfig{
		Enabled: true,
		BaseURL: serverURL,
		Timeout: 2000,
	}, logger.NewNoOpLogger())
}

func TestClient_Render_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/render", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "# Search Results", payload["markdown"])

		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	img, err := newTestClient(server.URL).Render(context.Background(), "# Search Results")

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), img)
}

func TestClient_Render_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	img, err := newTestClient(server.URL).Render(context.Background(), "# doc")

	assert.Error(t, err)
	assert.Nil(t, img)
}

func TestClient_Render_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL + "/").Render(context.Background(), "# doc")

	require.NoError(t, err)
	assert.Equal(t, "/render", gotPath)
}
