package instagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	errs "instascraper/pkg/errors"
)

// The platform payload types below mirror only the fields the scraper reads.
// They never leave this file: every decode function returns domain values.

type countPayload struct {
	Count int `json:"count"`
}

// followPayload keeps the count optional so a missing counter can be told
// apart from zero
type followPayload struct {
	Count *int `json:"count"`
}

type pageInfoPayload struct {
	EndCursor   *string `json:"end_cursor"`
	HasNextPage *bool   `json:"has_next_page"`
}

type userPayload struct {
	ID                    string         `json:"id"`
	Username              string         `json:"username"`
	FullName              string         `json:"full_name"`
	Biography             *string        `json:"biography"`
	ExternalURL           *string        `json:"external_url"`
	CategoryName          *string        `json:"category_name"`
	BusinessCategoryName  *string        `json:"business_category_name"`
	BusinessEmail         *string        `json:"business_email"`
	BusinessPhoneNumber   *string        `json:"business_phone_number"`
	ProfilePicURL         *string        `json:"profile_pic_url"`
	ProfilePicURLHD       *string        `json:"profile_pic_url_hd"`
	IsPrivate             bool           `json:"is_private"`
	IsVerified            bool           `json:"is_verified"`
	IsBusinessAccount     bool           `json:"is_business_account"`
	IsProfessionalAccount bool           `json:"is_professional_account"`
	IsJoinedRecently      bool           `json:"is_joined_recently"`
	HasClips              bool           `json:"has_clips"`
	HasChannel            bool           `json:"has_channel"`
	HasGuides             bool           `json:"has_guides"`
	HideLikeAndViewCounts bool           `json:"hide_like_and_view_counts"`
	BlockedByViewer       bool           `json:"blocked_by_viewer"`
	FollowedByViewer      bool           `json:"followed_by_viewer"`
	FollowsViewer         bool           `json:"follows_viewer"`
	CountryBlock          bool           `json:"country_block"`
	HighlightReelCount    int            `json:"highlight_reel_count"`
	EdgeFollowedBy        *followPayload `json:"edge_followed_by"`
	EdgeFollow            *followPayload `json:"edge_follow"`
}

type webProfileResponse struct {
	Data struct {
		User *userPayload `json:"user"`
	} `json:"data"`
}

type imagePayload struct {
	URL *string `json:"url"`
}

type userInfoResponse struct {
	User *struct {
		HasAnonymousProfilePicture *bool          `json:"has_anonymous_profile_picture"`
		HDProfilePicURLInfo        *imagePayload  `json:"hd_profile_pic_url_info"`
		HDProfilePicVersions       []imagePayload `json:"hd_profile_pic_versions"`
	} `json:"user"`
}

type postNodePayload struct {
	ID                 string `json:"id"`
	Shortcode          string `json:"shortcode"`
	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	CommentsDisabled     bool          `json:"comments_disabled"`
	TakenAtTimestamp     int64         `json:"taken_at_timestamp"`
	Dimensions           Dimensions    `json:"dimensions"`
	DisplayURL           string        `json:"display_url"`
	EdgeMediaToComment   *countPayload `json:"edge_media_to_comment"`
	EdgeMediaPreviewLike *countPayload `json:"edge_media_preview_like"`
	MediaPreview         *string       `json:"media_preview"`
	ThumbnailSrc         string        `json:"thumbnail_src"`
	IsVideo              bool          `json:"is_video"`
	VideoViewCount       *int          `json:"video_view_count"`
}

type postsResponse struct {
	Data struct {
		User *struct {
			EdgeOwnerToTimelineMedia struct {
				Edges []struct {
					Node postNodePayload `json:"node"`
				} `json:"edges"`
				PageInfo pageInfoPayload `json:"page_info"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

type commentNodePayload struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
	Owner     struct {
		ID            string `json:"id"`
		ProfilePicURL string `json:"profile_pic_url"`
		Username      string `json:"username"`
	} `json:"owner"`
}

type commentsResponse struct {
	Data struct {
		ShortcodeMedia *struct {
			EdgeMediaToComment struct {
				Edges []struct {
					Node commentNodePayload `json:"node"`
				} `json:"edges"`
				PageInfo pageInfoPayload `json:"page_info"`
			} `json:"edge_media_to_comment"`
		} `json:"shortcode_media"`
	} `json:"data"`
}

type reelItemPayload struct {
	DisplayResources []struct {
		ConfigHeight int    `json:"config_height"`
		ConfigWidth  int    `json:"config_width"`
		Src          string `json:"src"`
	} `json:"display_resources"`
	DisplayURL          string  `json:"display_url"`
	ExpiringAtTimestamp int64   `json:"expiring_at_timestamp"`
	ID                  string  `json:"id"`
	IsVideo             bool    `json:"is_video"`
	MediaPreview        *string `json:"media_preview"`
	TakenAtTimestamp    int64   `json:"taken_at_timestamp"`
}

type reelsMediaResponse struct {
	Data *struct {
		ReelsMedia []struct {
			Items []reelItemPayload `json:"items"`
		} `json:"reels_media"`
	} `json:"data"`
}

type highlightReelsResponse struct {
	Data struct {
		User *struct {
			EdgeHighlightReels struct {
				Edges []struct {
					Node struct {
						ID string `json:"id"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_highlight_reels"`
		} `json:"user"`
	} `json:"data"`
}

type loginResponse struct {
	Authenticated bool    `json:"authenticated"`
	Status        *string `json:"status"`
	Message       *string `json:"message"`
}

// page is one slice of a cursor-paginated collection
type page[T any] struct {
	items []T
	cursor string
	// last is set when the platform sent no cursor or reported no further pages
	last bool
}

// unescape restores ampersands the platform leaves escaped as \u0026 in URLs
func unescape(s string) string {
	return strings.ReplaceAll(s, `\u0026`, "&")
}

func unescapePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := unescape(*s)
	return &v
}

func epoch(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// visibleCount maps the platform's negative "hidden" sentinel to nil
func visibleCount(c *countPayload) *int {
	if c == nil || c.Count < 0 {
		return nil
	}
	n := c.Count
	return &n
}

// followCount requires a present, non-negative counter
func followCount(field string, c *followPayload) (int, error) {
	switch {
	case c == nil || c.Count == nil:
		return 0, errs.Decode("web profile", fmt.Errorf("missing %s.count", field))
	case *c.Count < 0:
		return 0, errs.Decode("web profile", fmt.Errorf("negative %s.count: %d", field, *c.Count))
	}
	return *c.Count, nil
}

func unmarshal(what string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errs.Decode(what, err)
	}
	return nil
}

func decodeUser(body []byte) (User, error) {
	var res webProfileResponse
	if err := unmarshal("web profile", body, &res); err != nil {
		return User{}, err
	}
	u := res.Data.User
	if u == nil {
		return User{}, errs.Decode("web profile", errors.New("missing data.user"))
	}
	followers, err := followCount("edge_followed_by", u.EdgeFollowedBy)
	if err != nil {
		return User{}, err
	}
	following, err := followCount("edge_follow", u.EdgeFollow)
	if err != nil {
		return User{}, err
	}

	return User{
		ID:                    u.ID,
		Username:              u.Username,
		FullName:              u.FullName,
		Biography:             u.Biography,
		ExternalURL:           u.ExternalURL,
		CategoryName:          u.CategoryName,
		BusinessCategoryName:  u.BusinessCategoryName,
		BusinessEmail:         u.BusinessEmail,
		BusinessPhoneNumber:   u.BusinessPhoneNumber,
		ProfilePicURL:         unescapePtr(u.ProfilePicURL),
		ProfilePicURLHD:       unescapePtr(u.ProfilePicURLHD),
		IsPrivate:             u.IsPrivate,
		IsVerified:            u.IsVerified,
		IsBusinessAccount:     u.IsBusinessAccount,
		IsProfessionalAccount: u.IsProfessionalAccount,
		IsJoinedRecently:      u.IsJoinedRecently,
		HasClips:              u.HasClips,
		HasChannel:            u.HasChannel,
		HasGuides:             u.HasGuides,
		HideLikeAndViewCounts: u.HideLikeAndViewCounts,
		BlockedByViewer:       u.BlockedByViewer,
		FollowedByViewer:      u.FollowedByViewer,
		FollowsViewer:         u.FollowsViewer,
		CountryBlock:          u.CountryBlock,
		HighlightReelCount:    u.HighlightReelCount,
		followers:             followers,
		following:             following,
	}, nil
}

// decodeProfilePic returns the best profile picture URL, or false when the
// user has none.
func decodeProfilePic(body []byte) (string, bool, error) {
	var res userInfoResponse
	if err := unmarshal("user info", body, &res); err != nil {
		return "", false, err
	}
	u := res.User
	if u == nil {
		return "", false, errs.Decode("user info", errors.New("missing user"))
	}

	if u.HasAnonymousProfilePicture != nil && *u.HasAnonymousProfilePicture {
		return "", false, nil
	}
	if u.HDProfilePicURLInfo != nil && u.HDProfilePicURLInfo.URL != nil {
		return unescape(*u.HDProfilePicURLInfo.URL), true, nil
	}
	// largest version comes last
	for i := len(u.HDProfilePicVersions) - 1; i >= 0; i-- {
		if url := u.HDProfilePicVersions[i].URL; url != nil {
			return unescape(*url), true, nil
		}
	}
	return "", false, nil
}

func decodePostsPage(body []byte) (page[Post], error) {
	var res postsResponse
	if err := unmarshal("posts", body, &res); err != nil {
		return page[Post]{}, err
	}
	if res.Data.User == nil {
		return page[Post]{}, errs.Decode("posts", errors.New("missing data.user"))
	}
	media := res.Data.User.EdgeOwnerToTimelineMedia

	posts := make([]Post, 0, len(media.Edges))
	for _, edge := range media.Edges {
		posts = append(posts, toPost(edge.Node))
	}
	return newPage(posts, media.PageInfo), nil
}

func toPost(n postNodePayload) Post {
	p := Post{
		ID:               n.ID,
		Shortcode:        n.Shortcode,
		DisplayURL:       unescape(n.DisplayURL),
		ThumbnailSrc:     unescape(n.ThumbnailSrc),
		Dimensions:       n.Dimensions,
		Comments:         visibleCount(n.EdgeMediaToComment),
		Likes:            visibleCount(n.EdgeMediaPreviewLike),
		CommentsDisabled: n.CommentsDisabled,
		IsVideo:          n.IsVideo,
		MediaPreview:     n.MediaPreview,
		TakenAt:          epoch(n.TakenAtTimestamp),
	}
	if edges := n.EdgeMediaToCaption.Edges; len(edges) > 0 {
		caption := edges[0].Node.Text
		p.Caption = &caption
	}
	if n.VideoViewCount != nil {
		p.VideoViewCount = *n.VideoViewCount
	}
	return p
}

func decodeCommentsPage(body []byte) (page[Comment], error) {
	var res commentsResponse
	if err := unmarshal("comments", body, &res); err != nil {
		return page[Comment]{}, err
	}
	if res.Data.ShortcodeMedia == nil {
		return page[Comment]{}, errs.Decode("comments", errors.New("missing data.shortcode_media"))
	}
	edge := res.Data.ShortcodeMedia.EdgeMediaToComment

	comments := make([]Comment, 0, len(edge.Edges))
	for _, e := range edge.Edges {
		n := e.Node
		comments = append(comments, Comment{
			ID:             n.ID,
			Text:           n.Text,
			CreatedAt:      epoch(n.CreatedAt),
			UserID:         n.Owner.ID,
			Username:       n.Owner.Username,
			UserProfilePic: unescape(n.Owner.ProfilePicURL),
		})
	}
	return newPage(comments, edge.PageInfo), nil
}

func newPage[T any](items []T, info pageInfoPayload) page[T] {
	p := page[T]{items: items}
	if info.EndCursor == nil {
		p.last = true
	} else {
		p.cursor = *info.EndCursor
	}
	if info.HasNextPage != nil && !*info.HasNextPage {
		p.last = true
	}
	return p
}

// decodeReelsMedia flattens the items of every reel in arrival order
func decodeReelsMedia(body []byte) ([]Story, error) {
	var res reelsMediaResponse
	if err := unmarshal("reels media", body, &res); err != nil {
		return nil, err
	}
	if res.Data == nil {
		return nil, errs.Decode("reels media", errors.New("missing data"))
	}

	var stories []Story
	for _, reel := range res.Data.ReelsMedia {
		for _, item := range reel.Items {
			stories = append(stories, toStory(item))
		}
	}
	return stories, nil
}

func toStory(item reelItemPayload) Story {
	sources := make([]StorySource, 0, len(item.DisplayResources))
	for _, r := range item.DisplayResources {
		sources = append(sources, StorySource{
			Height: r.ConfigHeight,
			Width:  r.ConfigWidth,
			URL:    unescape(r.Src),
		})
	}
	return Story{
		ID:           item.ID,
		DisplayURL:   unescape(item.DisplayURL),
		Sources:      sources,
		IsVideo:      item.IsVideo,
		MediaPreview: item.MediaPreview,
		ExpiringAt:   epoch(item.ExpiringAtTimestamp),
		TakenAt:      epoch(item.TakenAtTimestamp),
	}
}

func decodeHighlightReelIDs(body []byte) ([]string, error) {
	var res highlightReelsResponse
	if err := unmarshal("highlight reels", body, &res); err != nil {
		return nil, err
	}
	if res.Data.User == nil {
		return nil, errs.Decode("highlight reels", errors.New("missing data.user"))
	}

	edges := res.Data.User.EdgeHighlightReels.Edges
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Node.ID)
	}
	return ids, nil
}

func decodeLogin(body []byte) (loginResponse, error) {
	var res loginResponse
	err := unmarshal("login response", body, &res)
	return res, err
}
