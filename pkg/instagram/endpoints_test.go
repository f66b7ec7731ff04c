package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileURL(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected string
	}{
		{
			name:     "simple username",
			username: "testuser",
			expected: fmt.Sprintf("%s%s?username=testuser", BaseURL, ProfileEndpoint),
		},
		{
			name:     "username with underscore",
			username: "test_user",
			expected: fmt.Sprintf("%s%s?username=test_user", BaseURL, ProfileEndpoint),
		},
		{
			name:     "username with dots",
			username: "test.user",
			expected: fmt.Sprintf("%s%s?username=test.user", BaseURL, ProfileEndpoint),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ProfileURL(BaseURL, tt.username)
			assert.Equal(t, tt.expected, result)

			_, err := url.Parse(result)
			assert.NoError(t, err)
		})
	}
}

func TestMediaURL(t *testing.T) {
	tests := []struct {
		name          string
		after         string
		limit         int
		expectedFirst float64
		expectAfter   bool
	}{
		{name: "without cursor", after: "", limit: 0, expectedFirst: DefaultMediaLimit},
		{name: "with cursor", after: "QVFE", limit: 24, expectedFirst: 24, expectAfter: true},
		{name: "limit capped", after: "", limit: 500, expectedFirst: MaxMediaLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := MediaURL("http://fake/", "123456", tt.after, tt.limit)

			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "fake", parsed.Host)
			assert.Equal(t, MediaEndpoint, parsed.Path)
			assert.Equal(t, MediaQueryHash, parsed.Query().Get("query_hash"))

			var variables map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(parsed.Query().Get("variables")), &variables))
			assert.Equal(t, "123456", variables["id"])
			assert.Equal(t, tt.expectedFirst, variables["first"])

			after, ok := variables["after"]
			assert.Equal(t, tt.expectAfter, ok)
			if tt.expectAfter {
				assert.Equal(t, tt.after, after)
			}
		})
	}
}

func TestLoginURLs(t *testing.T) {
	assert.Equal(t, "http://fake/accounts/login/ajax/", LoginURL("http://fake/"))
	assert.Equal(t, "http://fake/accounts/login/", LoginPageURL("http://fake"))
}

func TestGetUserProfileURL(t *testing.T) {
	assert.Equal(t, "", GetUserProfileURL(""))
	assert.Equal(t, BaseURL+"/nasa/", GetUserProfileURL("nasa"))
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"nasa", true},
		{"john.doe_99", true},
		{"", false},
		{"has space", false},
		{"emoji😀", false},
		{"abcdefghijklmnopqrstuvwxyz12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUsername(tt.username))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"@nasa", "nasa"},
		{"nasa/", "nasa"},
		{"  nasa  ", "nasa"},
		{"https://www.instagram.com/nasa/", "nasa"},
		{"instagram.com/natgeo", "natgeo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUsername(tt.input))
		})
	}
}
