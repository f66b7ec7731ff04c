package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// ProfileEndpoint is the endpoint pattern for user profiles
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// MediaEndpoint is the endpoint pattern for user media
	MediaEndpoint = "/graphql/query/"

	// LoginPageEndpoint serves the csrftoken cookie needed to log in
	LoginPageEndpoint = "/accounts/login/"

	// LoginEndpoint accepts username and password
	LoginEndpoint = "/accounts/login/ajax/"

	// MediaQueryHash is the query hash for fetching user media
	MediaQueryHash = "e769aa130647d2354c40ea6a439bfc08"

	// WebAppID is the X-IG-App-ID header the web client sends
	WebAppID = "936619743392459"

	// DefaultMediaLimit is the default number of media items to fetch per request
	DefaultMediaLimit = 12

	// MaxMediaLimit is the maximum number of media items that can be fetched per request
	MaxMediaLimit = 50
)

// ProfileURL constructs the URL for fetching a user's profile
func ProfileURL(base, username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(base, "/"), ProfileEndpoint, params.Encode())
}

// MediaURL constructs the URL for one page of a user's media
func MediaURL(base, userID, after string, limit int) string {
	if limit <= 0 {
		limit = DefaultMediaLimit
	} else if limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}

	variables := map[string]interface{}{
		"id":    userID,
		"first": limit,
	}
	if after != "" {
		variables["after"] = after
	}
	encoded, _ := json.Marshal(variables)

	params := url.Values{}
	params.Set("query_hash", MediaQueryHash)
	params.Set("variables", string(encoded))

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(base, "/"), MediaEndpoint, params.Encode())
}

// LoginURL returns the ajax login endpoint
func LoginURL(base string) string {
	return strings.TrimRight(base, "/") + LoginEndpoint
}

// LoginPageURL returns the login page used to obtain a csrftoken
func LoginPageURL(base string) string {
	return strings.TrimRight(base, "/") + LoginPageEndpoint
}

// GetUserProfileURL constructs the public profile URL for a user
func GetUserProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/", BaseURL, username)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @, a profile URL prefix and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return ""
	}

	for _, prefix := range []string{"https://www.instagram.com/", "http://www.instagram.com/", "https://instagram.com/", "instagram.com/"} {
		if strings.HasPrefix(strings.ToLower(username), prefix) {
			username = username[len(prefix):]
			break
		}
	}

	username = strings.TrimPrefix(username, "@")
	username = strings.TrimRight(username, "/ ")

	return username
}
