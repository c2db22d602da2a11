package instagram

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL hosts authentication and the GraphQL query endpoint
	DefaultBaseURL = "https://www.instagram.com/"

	// DefaultAPIBaseURL hosts the REST profile endpoints
	DefaultAPIBaseURL = "https://i.instagram.com"

	loginPath          = "accounts/login/ajax/"
	logoutPath         = "accounts/logout/"
	graphqlPath        = "graphql/query/"
	webProfileInfoPath = "/api/v1/users/web_profile_info/"
	userInfoPath       = "/api/v1/users/%s/info/"

	// PostsQueryHash selects the timeline media query
	PostsQueryHash = "42323d64886122307be10013ad2dcc44"

	// StoriesQueryHash selects the reels media query used for both main and highlight stories
	StoriesQueryHash = "45246d3fe16ccc6577e0bd297a5db1ab"

	// HighlightReelsQueryHash selects the query listing a user's highlight reels
	HighlightReelsQueryHash = "c9100bf9110dd6361671f113dd02e7d6"

	// CommentsQueryHash selects the query listing the comments of a post
	CommentsQueryHash = "bc3296d1ce80a24b1b6e40b1e72903f5"

	// DefaultPageSize is the number of items requested per page
	DefaultPageSize = 50

	// HighlightChunkSize is the number of highlight reel ids sent per request
	HighlightChunkSize = 3

	// Unlimited asks a paginated scrape for everything the platform returns
	Unlimited = math.MaxInt
)

const (
	// MobileUserAgent is sent by default; story endpoints require it
	MobileUserAgent = "Instagram 123.0.0.21.114 (iPhone; CPU iPhone OS 11_4 like Mac OS X; en_US; en-US; scale=2.00; 750x1334) AppleWebKit/605.1.15"

	// DesktopUserAgent is sent on login and logout
	DesktopUserAgent = "Mozilla/5.0 (Windows NT 6.1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/77.0.3865.120 Safari/537.36"

	// AppID identifies the web client on REST calls
	AppID = "936619743392459"

	headerCSRFToken     = "X-CSRFToken"
	headerRequestedWith = "X-Requested-With"
	headerAppID         = "X-IG-App-ID"
	headerReferer       = "Referer"
	headerUserAgent     = "User-Agent"
	xmlHTTPRequest      = "XMLHttpRequest"
	csrfTokenCookie     = "csrftoken"
)

// endpoints resolves platform URLs against configurable hosts
type endpoints struct {
	base string
	api  string
}

func newEndpoints(baseURL, apiBaseURL string) endpoints {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return endpoints{
		base: baseURL,
		api:  strings.TrimRight(apiBaseURL, "/"),
	}
}

func (e endpoints) root() string    { return e.base }
func (e endpoints) login() string   { return e.base + loginPath }
func (e endpoints) logout() string  { return e.base + logoutPath }
func (e endpoints) graphql() string { return e.base + graphqlPath }

func (e endpoints) webProfileInfo() string {
	return e.api + webProfileInfoPath
}

func (e endpoints) userInfo(userID string) string {
	return e.api + fmt.Sprintf(userInfoPath, url.PathEscape(userID))
}

// GetPostURL constructs the public URL for a post
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%sp/%s/", DefaultBaseURL, shortcode)
}

// GetUserProfileURL constructs the public profile URL for a user
func GetUserProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s%s/", DefaultBaseURL, username)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
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

// SanitizeUsername strips a leading @ and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimPrefix(username, "@")
	return strings.TrimRight(username, "/ ")
}
