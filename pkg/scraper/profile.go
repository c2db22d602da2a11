package scraper

import (
	"context"
	"fmt"

	"instascraper/pkg/config"
	"instascraper/pkg/instagram"
	"instascraper/pkg/retry"
)

// Limits bounds how much ScrapeProfile collects
type Limits struct {
	Posts            int
	HighlightStories int
	Comments         int
}

// LimitsFromConfig returns the configured scrape limits
func LimitsFromConfig(cfg config.ScrapeConfig) Limits {
	return Limits{
		Posts:            cfg.MaxPosts,
		HighlightStories: cfg.MaxHighlightStories,
		Comments:         cfg.MaxComments,
	}
}

// Profile is everything ScrapeProfile gathered for one user.
// Comments belong to the most recent post.
type Profile struct {
	User       instagram.User
	ProfilePic string
	Stories    instagram.Stories
	Posts      []instagram.Post
	Comments   []instagram.Comment
}

// LatestPost returns the most recent post, if any
func (p *Profile) LatestPost() (instagram.Post, bool) {
	if len(p.Posts) == 0 {
		return instagram.Post{}, false
	}
	return p.Posts[0], true
}

// ScrapeProfile gathers user info, profile picture, stories, posts and the
// comments of the latest post. The session must already be authenticated.
// Each step is retried under the scraper's retry policy; the first step that
// still fails aborts the whole call.
func (s *Scraper) ScrapeProfile(ctx context.Context, username string, limits Limits) (*Profile, error) {
	username = instagram.SanitizeUsername(username)
	log := s.logger.WithField("username", username)

	user, err := retry.DoWithResult(ctx, func(ctx context.Context) (instagram.User, error) {
		return s.session.ScrapeUserInfo(ctx, username)
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape user info: %w", err)
	}
	log = log.WithField("user_id", user.ID)

	profile := &Profile{User: user}

	type picture struct {
		url string
		ok  bool
	}
	pic, err := retry.DoWithResult(ctx, func(ctx context.Context) (picture, error) {
		url, ok, err := s.session.ScrapeProfilePic(ctx, user.ID)
		return picture{url, ok}, err
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape profile picture: %w", err)
	}
	if pic.ok {
		profile.ProfilePic = pic.url
	}

	profile.Stories, err = retry.DoWithResult(ctx, func(ctx context.Context) (instagram.Stories, error) {
		return s.session.ScrapeStories(ctx, user.ID, limits.HighlightStories)
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape stories: %w", err)
	}

	profile.Posts, err = retry.DoWithResult(ctx, func(ctx context.Context) ([]instagram.Post, error) {
		return s.session.ScrapePosts(ctx, user.ID, limits.Posts)
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape posts: %w", err)
	}

	profile.Comments = []instagram.Comment{}
	if latest, ok := profile.LatestPost(); ok && !latest.CommentsDisabled && limits.Comments > 0 {
		profile.Comments, err = retry.DoWithResult(ctx, func(ctx context.Context) ([]instagram.Comment, error) {
			return s.session.ScrapeComments(ctx, latest, limits.Comments)
		}, s.retry)
		if err != nil {
			return nil, fmt.Errorf("failed to scrape comments of %s: %w", latest.Shortcode, err)
		}
	}

	log.InfoWithFields("profile scraped", map[string]interface{}{
		"main_stories":      len(profile.Stories.MainStories),
		"highlight_stories": len(profile.Stories.HighlightStories),
		"posts":             len(profile.Posts),
		"comments":          len(profile.Comments),
	})

	return profile, nil
}
