package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	CompanyName string `json:"company_name" binding:"required"`
	Address     string `json:"address"`
}

func TestBindEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		keys        []string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "Wrapped",
			keys:     []string{"company"},
			body:     `{"company": {"company_name": "Acme", "address": "1 Le Loi"}}`,
			expected: bindTarget{CompanyName: "Acme", Address: "1 Le Loi"},
		},
		{
			name:     "Flat",
			keys:     []string{"company"},
			body:     `{"company_name": "Công ty Điện lực", "address": "Hà Nội"}`,
			expected: bindTarget{CompanyName: "Công ty Điện lực", Address: "Hà Nội"},
		},
		{
			name:     "Second Key",
			keys:     []string{"auditor", "user"},
			body:     `{"user": {"company_name": "Gamma"}}`,
			expected: bindTarget{CompanyName: "Gamma"},
		},
		{
			name:     "Scalar Under Key Stays Flat",
			keys:     []string{"company"},
			body:     `{"company": "x", "company_name": "Beta"}`,
			expected: bindTarget{CompanyName: "Beta"},
		},
		{
			name:        "Wrong Type",
			keys:        []string{"company"},
			body:        `{"company_name": 5}`,
			expectError: true,
		},
		{
			name:        "Required Field Missing",
			keys:        []string{"company"},
			body:        `{"company": {"address": "no name"}}`,
			expectError: true,
		},
		{
			name:        "Empty Body",
			keys:        []string{"company"},
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("PUT", "/session/company", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTarget
			err := bindEnvelope(c, &result, tt.keys...)

			rest, _ := io.ReadAll(c.Request.Body)
			assert.Equal(t, tt.body, string(rest), "body is restored")

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
