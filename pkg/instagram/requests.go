package instagram

import (
	"encoding/json"
	"fmt"
	"time"
)

// encodePassword builds the enc_password form value. Version 0 means the
// password travels in plain text behind the timestamp prefix.
func encodePassword(password string, at time.Time) string {
	return fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", at.Unix(), password)
}

func loginForm(creds UsernamePassword, at time.Time) map[string]string {
	return map[string]string{
		"username":      creds.Username,
		"enc_password":  encodePassword(creds.Password, at),
		"queryParams":   "{}",
		"optIntoOneTap": "false",
	}
}

func logoutForm(csrfToken string) map[string]string {
	return map[string]string{
		"csrfmiddlewaretoken": csrfToken,
	}
}

type postsVariables struct {
	ID    string `json:"id"`
	First int    `json:"first"`
	After string `json:"after"`
}

type commentsVariables struct {
	Shortcode string `json:"shortcode"`
	First     int    `json:"first"`
	After     string `json:"after"`
}

type reelsVariables struct {
	ReelIDs            []string `json:"reel_ids"`
	TagNames           []string `json:"tag_names"`
	LocationIDs        []string `json:"location_ids"`
	HighlightReelIDs   []string `json:"highlight_reel_ids"`
	PrecomposedOverlay bool     `json:"precomposed_overlay"`
}

func mainStoriesVariables(userID string) reelsVariables {
	return reelsVariables{
		ReelIDs:          []string{userID},
		TagNames:         []string{},
		LocationIDs:      []string{},
		HighlightReelIDs: []string{},
	}
}

func highlightStoriesVariables(reelIDs []string) reelsVariables {
	return reelsVariables{
		ReelIDs:          []string{},
		TagNames:         []string{},
		LocationIDs:      []string{},
		HighlightReelIDs: reelIDs,
	}
}

type highlightReelsVariables struct {
	UserID                 string `json:"user_id"`
	IncludeChaining        bool   `json:"include_chaining"`
	IncludeReel            bool   `json:"include_reel"`
	IncludeSuggestedUsers  bool   `json:"include_suggested_users"`
	IncludeLoggedOutExtras bool   `json:"include_logged_out_extras"`
	IncludeHighlightReels  bool   `json:"include_highlight_reels"`
	IncludeRelatedProfiles bool   `json:"include_related_profiles"`
}

func newHighlightReelsVariables(userID string) highlightReelsVariables {
	return highlightReelsVariables{UserID: userID, IncludeHighlightReels: true}
}

// graphqlParams encodes the query string of a GraphQL query request
func graphqlParams(queryHash string, variables any) (map[string]string, error) {
	raw, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variables: %w", err)
	}
	return map[string]string{
		"query_hash": queryHash,
		"variables":  string(raw),
	}, nil
}
