package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docharvest", rootCmd.Use)
}

func TestHarvestCmd_Use(t *testing.T) {
	assert.Equal(t, "harvest", harvestCmd.Use)
}

func TestHarvestCmd_HasQueryFlags(t *testing.T) {
	flag := harvestCmd.Flags().Lookup("query")
	require.NotNil(t, flag, "query flag should exist")
	assert.Equal(t, "q", flag.Shorthand)

	flag = harvestCmd.Flags().Lookup("page-max")
	require.NotNil(t, flag, "page-max flag should exist")
	assert.Equal(t, "0", flag.DefValue)
}

func TestFieldsCmd_RequiresFieldFlag(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"fields", "--base-url", "https://api.example.com", "--token", "x"})
	defer func() {
		rootCmd.SetArgs(nil)
		flagBaseURL = ""
		flagToken = ""
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"field" not set`)
}

func TestReadQuery_InlineAndFileAreExclusive(t *testing.T) {
	harvestQuery = `{"a": 1}`
	harvestQueryFile = "query.json"
	defer func() {
		harvestQuery = ""
		harvestQueryFile = ""
	}()

	_, err := readQuery()
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestReadQuery_DefaultsToEmptyQuery(t *testing.T) {
	query, err := readQuery()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, query)
}

func TestHarvestCmd_PrintsSearchResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/annotations/search", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 77, "queue": "https://api.example.com/v1/queues/5"},
			},
			"pagination": map[string]any{"next": nil},
		})
	}))
	defer srv.Close()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"harvest",
		"--base-url", srv.URL,
		"--token", "test-token",
		"--query", `{"status": ["to_review"]}`,
	})
	defer func() {
		rootCmd.SetArgs(nil)
		harvestQuery = ""
		flagBaseURL = ""
		flagToken = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"ID": 77`)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "docharvest version")
}
