package scraper

import (
	"context"
	"fmt"

	"instascraper/pkg/config"
	"instascraper/pkg/instagram"
	"instascraper/pkg/logger"
	"instascraper/pkg/ratelimit"
	"instascraper/pkg/retry"
)

// Scraper is the client facade. It owns one session and the authentication
// method chosen at construction.
type Scraper struct {
	session Session
	auth    instagram.Authentication
	retry   *retry.Config
	logger  logger.Logger
}

type options struct {
	auth        instagram.Authentication
	session     Session
	sessionOpts []instagram.SessionOption
	retry       *retry.Config
	logger      logger.Logger
}

// Option customizes a Scraper
type Option func(*options)

// WithCredentials logs in with a username and password instead of as a guest
func WithCredentials(username, password string) Option {
	return func(o *options) {
		o.auth = instagram.UsernamePassword{Username: username, Password: password}
	}
}

// WithAuthentication sets the authentication method
func WithAuthentication(auth instagram.Authentication) Option {
	return func(o *options) {
		o.auth = auth
	}
}

// WithLogger sets the logger shared by the scraper and its session
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithRetry retries the steps of ScrapeProfile under cfg. Single calls are
// never retried.
func WithRetry(cfg *retry.Config) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// WithSession replaces the platform session
func WithSession(s Session) Option {
	return func(o *options) {
		o.session = s
	}
}

// WithSessionOptions passes options to the session created by New
func WithSessionOptions(opts ...instagram.SessionOption) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// New creates a Scraper. Credentials configured in cfg are used unless an
// option sets the authentication; otherwise the scraper logs in as a guest.
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	o := options{}
	if cfg.Instagram.Username != "" {
		o.auth = instagram.UsernamePassword{Username: cfg.Instagram.Username, Password: cfg.Instagram.Password}
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.auth == nil {
		o.auth = instagram.Guest{}
	}
	if o.logger == nil {
		o.logger = logger.GetLogger()
	}
	if o.retry == nil {
		o.retry = &retry.Config{MaxAttempts: 1, Logger: o.logger}
	}

	if o.session == nil {
		limiter, err := ratelimit.New(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		sessionOpts := o.sessionOpts
		if limiter != nil {
			sessionOpts = append([]instagram.SessionOption{instagram.WithPacer(limiter)}, sessionOpts...)
		}

		session, err := instagram.NewSession(cfg.Instagram, o.logger, sessionOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		o.session = session
	}

	return &Scraper{
		session: o.session,
		auth:    o.auth,
		retry:   o.retry,
		logger:  o.logger,
	}, nil
}

// Authentication returns the method used by Login
func (s *Scraper) Authentication() instagram.Authentication {
	return s.auth
}

// Authenticated reports whether the session holds a CSRF token
func (s *Scraper) Authenticated() bool {
	return s.session.Authenticated()
}

// Login authenticates the session with the configured method
func (s *Scraper) Login(ctx context.Context) error {
	s.logger.WithField("auth", fmt.Sprint(s.auth)).Debug("logging in")
	return s.session.Login(ctx, s.auth)
}

// Logout ends the session
func (s *Scraper) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

// ScrapeUserInfo fetches the profile of username
func (s *Scraper) ScrapeUserInfo(ctx context.Context, username string) (instagram.User, error) {
	return s.session.ScrapeUserInfo(ctx, username)
}

// ScrapeProfilePic returns the best profile picture URL of the user, if any
func (s *Scraper) ScrapeProfilePic(ctx context.Context, userID string) (string, bool, error) {
	return s.session.ScrapeProfilePic(ctx, userID)
}

// ScrapePosts collects up to maxPosts timeline posts
func (s *Scraper) ScrapePosts(ctx context.Context, userID string, maxPosts int) ([]instagram.Post, error) {
	return s.session.ScrapePosts(ctx, userID, maxPosts)
}

// ScrapeComments collects up to maxComments comments of post
func (s *Scraper) ScrapeComments(ctx context.Context, post instagram.Post, maxComments int) ([]instagram.Comment, error) {
	return s.session.ScrapeComments(ctx, post, maxComments)
}

// ScrapeStories collects the main stories and up to maxHighlightStories
// highlight stories
func (s *Scraper) ScrapeStories(ctx context.Context, userID string, maxHighlightStories int) (instagram.Stories, error) {
	return s.session.ScrapeStories(ctx, userID, maxHighlightStories)
}
