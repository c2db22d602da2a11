package instagram

import "time"

// User is a profile as returned by the web profile info endpoint
type User struct {
	ID                    string  `json:"id" yaml:"id"`
	Username              string  `json:"username" yaml:"username"`
	FullName              string  `json:"full_name" yaml:"full_name"`
	Biography             *string `json:"biography,omitempty" yaml:"biography,omitempty"`
	ExternalURL           *string `json:"external_url,omitempty" yaml:"external_url,omitempty"`
	CategoryName          *string `json:"category_name,omitempty" yaml:"category_name,omitempty"`
	BusinessCategoryName  *string `json:"business_category_name,omitempty" yaml:"business_category_name,omitempty"`
	BusinessEmail         *string `json:"business_email,omitempty" yaml:"business_email,omitempty"`
	BusinessPhoneNumber   *string `json:"business_phone_number,omitempty" yaml:"business_phone_number,omitempty"`
	ProfilePicURL         *string `json:"profile_pic_url,omitempty" yaml:"profile_pic_url,omitempty"`
	ProfilePicURLHD       *string `json:"profile_pic_url_hd,omitempty" yaml:"profile_pic_url_hd,omitempty"`
	IsPrivate             bool    `json:"is_private" yaml:"is_private"`
	IsVerified            bool    `json:"is_verified" yaml:"is_verified"`
	IsBusinessAccount     bool    `json:"is_business_account" yaml:"is_business_account"`
	IsProfessionalAccount bool    `json:"is_professional_account" yaml:"is_professional_account"`
	IsJoinedRecently      bool    `json:"is_joined_recently" yaml:"is_joined_recently"`
	HasClips              bool    `json:"has_clips" yaml:"has_clips"`
	HasChannel            bool    `json:"has_channel" yaml:"has_channel"`
	HasGuides             bool    `json:"has_guides" yaml:"has_guides"`
	HideLikeAndViewCounts bool    `json:"hide_like_and_view_counts" yaml:"hide_like_and_view_counts"`
	BlockedByViewer       bool    `json:"blocked_by_viewer" yaml:"blocked_by_viewer"`
	FollowedByViewer      bool    `json:"followed_by_viewer" yaml:"followed_by_viewer"`
	FollowsViewer         bool    `json:"follows_viewer" yaml:"follows_viewer"`
	CountryBlock          bool    `json:"country_block" yaml:"country_block"`
	HighlightReelCount    int     `json:"highlight_reel_count" yaml:"highlight_reel_count"`

	followers int
	following int
}

// Followers returns the number of accounts following the user
func (u User) Followers() int {
	return u.followers
}

// Following returns the number of accounts the user follows
func (u User) Following() int {
	return u.following
}

// Dimensions of a media item in pixels
type Dimensions struct {
	Height int `json:"height" yaml:"height"`
	Width  int `json:"width" yaml:"width"`
}

// Post is a timeline media item. Comments and Likes are nil when the
// owner hides them.
type Post struct {
	ID               string     `json:"id" yaml:"id"`
	Shortcode        string     `json:"shortcode" yaml:"shortcode"`
	DisplayURL       string     `json:"display_url" yaml:"display_url"`
	ThumbnailSrc     string     `json:"thumbnail_src" yaml:"thumbnail_src"`
	Dimensions       Dimensions `json:"dimensions" yaml:"dimensions"`
	Caption          *string    `json:"caption,omitempty" yaml:"caption,omitempty"`
	Comments         *int       `json:"comments,omitempty" yaml:"comments,omitempty"`
	Likes            *int       `json:"likes,omitempty" yaml:"likes,omitempty"`
	CommentsDisabled bool       `json:"comments_disabled" yaml:"comments_disabled"`
	IsVideo          bool       `json:"is_video" yaml:"is_video"`
	VideoViewCount   int        `json:"video_view_count" yaml:"video_view_count"`
	MediaPreview     *string    `json:"media_preview,omitempty" yaml:"media_preview,omitempty"`
	TakenAt          time.Time  `json:"taken_at" yaml:"taken_at"`
}

// Comment on a post, with its author denormalized
type Comment struct {
	ID             string    `json:"id" yaml:"id"`
	Text           string    `json:"text" yaml:"text"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UserID         string    `json:"user_id" yaml:"user_id"`
	Username       string    `json:"username" yaml:"username"`
	UserProfilePic string    `json:"user_profile_pic" yaml:"user_profile_pic"`
}

// StorySource is one rendition of a story image
type StorySource struct {
	Height int    `json:"height" yaml:"height"`
	Width  int    `json:"width" yaml:"width"`
	URL    string `json:"url" yaml:"url"`
}

// Story is a single reel item
type Story struct {
	ID           string        `json:"id" yaml:"id"`
	DisplayURL   string        `json:"display_url" yaml:"display_url"`
	Sources      []StorySource `json:"sources" yaml:"sources"`
	IsVideo      bool          `json:"is_video" yaml:"is_video"`
	MediaPreview *string       `json:"media_preview,omitempty" yaml:"media_preview,omitempty"`
	ExpiringAt   time.Time     `json:"expiring_at" yaml:"expiring_at"`
	TakenAt      time.Time     `json:"taken_at" yaml:"taken_at"`
}

// Stories groups the ephemeral stories of a profile with its pinned highlights
type Stories struct {
	MainStories      []Story `json:"main_stories" yaml:"main_stories"`
	HighlightStories []Story `json:"highlight_stories" yaml:"highlight_stories"`
}
