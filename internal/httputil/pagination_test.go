package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devkral/secretgraph/internal/httputil"
)

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		url      string
		expected httputil.Page
		errorMsg string
	}{
		{name: "defaults", url: "/v1/contents", expected: httputil.Page{Limit: httputil.DefaultPageLimit}},
		{name: "window", url: "/v1/contents?offset=10&limit=20", expected: httputil.Page{Offset: 10, Limit: 20}},
		{name: "max limit", url: "/v1/clusters?limit=100", expected: httputil.Page{Limit: 100}},
		{name: "token parameter ignored", url: "/v1/contents?token=abc&offset=3", expected: httputil.Page{Offset: 3, Limit: 50}},
		{
			name:     "negative offset",
			url:      "/v1/contents?offset=-1",
			errorMsg: "invalid offset parameter: must be a non-negative integer",
		},
		{
			name:     "empty offset",
			url:      "/v1/contents?offset=",
			errorMsg: "invalid offset parameter: must be a non-negative integer",
		},
		{
			name:     "zero limit",
			url:      "/v1/contents?limit=0",
			errorMsg: "invalid limit parameter: must be between 1 and 100",
		},
		{
			name:     "limit above max",
			url:      "/v1/clusters?limit=101",
			errorMsg: "invalid limit parameter: must be between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			page, err := httputil.ParsePage(c)

			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
				assert.Equal(t, httputil.Page{}, page)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page)
		})
	}
}
