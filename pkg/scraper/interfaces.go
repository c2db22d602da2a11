package scraper

import (
	"context"

	"instascraper/pkg/instagram"
)

// Session defines the platform operations the Scraper delegates to.
// *instagram.Session implements it.
type Session interface {
	Authenticated() bool
	Login(ctx context.Context, auth instagram.Authentication) error
	Logout(ctx context.Context) error
	ScrapeUserInfo(ctx context.Context, username string) (instagram.User, error)
	ScrapeProfilePic(ctx context.Context, userID string) (string, bool, error)
	ScrapePosts(ctx context.Context, userID string, maxPosts int) ([]instagram.Post, error)
	ScrapeComments(ctx context.Context, post instagram.Post, maxComments int) ([]instagram.Comment, error)
	ScrapeStories(ctx context.Context, userID string, maxHighlightStories int) (instagram.Stories, error)
}

var _ Session = (*instagram.Session)(nil)
