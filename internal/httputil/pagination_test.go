package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/allisson/delta/internal/httputil"
)

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name             string
		url              string
		expectedPage     int
		expectedPageSize int
		expectError      bool
		errorMsg         string
	}{
		{
			name: "absent parameters",
			url:  "/",
		},
		{
			name:             "valid custom values",
			url:              "/?page=3&pageSize=20",
			expectedPage:     3,
			expectedPageSize: 20,
		},
		{
			name:             "max page size",
			url:              "/?pageSize=100",
			expectedPageSize: 100,
		},
		{
			name:        "page zero",
			url:         "/?page=0",
			expectError: true,
			errorMsg:    "invalid page parameter: must be a positive integer",
		},
		{
			name:        "page not an integer",
			url:         "/?page=abc",
			expectError: true,
			errorMsg:    "invalid page parameter: must be a positive integer",
		},
		{
			name:        "page size zero",
			url:         "/?pageSize=0",
			expectError: true,
			errorMsg:    "invalid pageSize parameter: must be between 1 and 100",
		},
		{
			name:        "page size exceeds max",
			url:         "/?pageSize=101",
			expectError: true,
			errorMsg:    "invalid pageSize parameter: must be between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			c.Request = req

			page, pageSize, err := httputil.ParsePage(c, "page", "pageSize")

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
				assert.Equal(t, 0, page)
				assert.Equal(t, 0, pageSize)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedPage, page)
				assert.Equal(t, tt.expectedPageSize, pageSize)
			}
		})
	}
}
