package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"instascraper/pkg/config"
	errs "instascraper/pkg/errors"
	"instascraper/pkg/logger"
)

// Pacer delays outgoing requests. It is consulted before every request.
type Pacer interface {
	Wait(ctx context.Context) error
}

// SessionOption customizes a Session
type SessionOption func(*Session)

// WithPacer paces every request through p
func WithPacer(p Pacer) SessionOption {
	return func(s *Session) {
		s.pacer = p
	}
}

// WithClock overrides the clock used to timestamp encoded passwords
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// Session holds the HTTP client, its cookie jar and the CSRF token of one
// logical platform user. A Session without a token is unauthenticated.
//
// A Session is not safe for concurrent use.
type Session struct {
	cfg       config.InstagramConfig
	endpoints endpoints
	log       logger.Logger
	pacer     Pacer
	now       func() time.Time

	http      *resty.Client
	csrfToken string
}

// NewSession creates an unauthenticated session
func NewSession(cfg config.InstagramConfig, log logger.Logger, opts ...SessionOption) (*Session, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = MobileUserAgent
	}
	if cfg.LoginUserAgent == "" {
		cfg.LoginUserAgent = DesktopUserAgent
	}

	s := &Session{
		cfg:       cfg,
		endpoints: newEndpoints(cfg.BaseURL, cfg.APIBaseURL),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	httpClient, err := s.newHTTPClient()
	if err != nil {
		return nil, err
	}
	s.http = httpClient

	return s, nil
}

// newHTTPClient builds a client with an empty cookie jar
func (s *Session) newHTTPClient() (*resty.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := resty.New()
	c.SetCookieJar(jar)
	c.SetHeader(headerUserAgent, s.cfg.UserAgent)
	c.SetLogger(restyLogger{s.log})
	if s.cfg.Timeout > 0 {
		c.SetTimeout(s.cfg.Timeout)
	}

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if s.pacer == nil {
			return nil
		}
		return s.pacer.Wait(req.Context())
	})
	c.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		if res.IsSuccess() {
			s.rotateCSRFToken(res)
		}
		return nil
	})

	return c, nil
}

// Authenticated reports whether the session holds a CSRF token
func (s *Session) Authenticated() bool {
	return s.csrfToken != ""
}

// Login obtains a CSRF token, and submits credentials when auth carries them
func (s *Session) Login(ctx context.Context, auth Authentication) error {
	var (
		token string
		err   error
	)

	switch a := auth.(type) {
	case Guest:
		s.log.Debug("authenticating as guest")
		token, err = s.requestCSRFToken(ctx)
	case UsernamePassword:
		s.log.WithField("username", a.Username).Debug("authenticating with username and password")
		token, err = s.loginAsUser(ctx, a)
	default:
		return fmt.Errorf("unsupported authentication %T", auth)
	}
	if err != nil {
		s.log.WithError(err).Error("login failed")
		return err
	}

	s.csrfToken = token
	s.log.Info("login successful")
	return nil
}

func (s *Session) loginAsUser(ctx context.Context, creds UsernamePassword) (string, error) {
	token, err := s.requestCSRFToken(ctx)
	if err != nil {
		return "", err
	}

	req := s.http.R().
		SetContext(ctx).
		SetHeader(headerUserAgent, s.cfg.LoginUserAgent).
		SetHeader(headerReferer, s.endpoints.root()).
		SetHeader(headerCSRFToken, token).
		SetHeader(headerRequestedWith, xmlHTTPRequest).
		SetFormData(loginForm(creds, s.now()))

	res, err := s.send(req, http.MethodPost, s.endpoints.login())
	if err != nil {
		return "", err
	}

	body, err := decodeLogin(res.Body())
	if err != nil {
		return "", err
	}
	if !body.Authenticated {
		var status, message string
		if body.Status != nil {
			status = *body.Status
		}
		if body.Message != nil {
			message = *body.Message
		}
		return "", errs.AuthenticationFailed(status, message)
	}

	return token, nil
}

func (s *Session) requestCSRFToken(ctx context.Context) (string, error) {
	req := s.http.R().
		SetContext(ctx).
		SetHeader(headerReferer, s.endpoints.root())

	res, err := s.send(req, http.MethodGet, s.endpoints.root())
	if err != nil {
		return "", err
	}

	token, ok := csrfTokenFrom(res)
	if !ok {
		// a redirect may have set the cookie on an earlier hop
		token, ok = s.jarCSRFToken()
	}
	if !ok {
		return "", errs.CSRFTokenMissing()
	}
	return token, nil
}

func (s *Session) jarCSRFToken() (string, bool) {
	jar := s.http.GetClient().Jar
	root, err := url.Parse(s.endpoints.root())
	if jar == nil || err != nil {
		return "", false
	}
	for _, c := range jar.Cookies(root) {
		if c.Name == csrfTokenCookie && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// Logout ends the platform session and resets s to a fresh unauthenticated
// state with an empty cookie jar.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.requireAuth(); err != nil {
		return err
	}

	req := s.http.R().
		SetContext(ctx).
		SetHeader(headerUserAgent, s.cfg.LoginUserAgent).
		SetHeader(headerReferer, s.endpoints.root()).
		SetHeader(headerCSRFToken, s.csrfToken).
		SetHeader(headerRequestedWith, xmlHTTPRequest).
		SetFormData(logoutForm(s.csrfToken))

	if _, err := s.send(req, http.MethodPost, s.endpoints.logout()); err != nil {
		return err
	}

	httpClient, err := s.newHTTPClient()
	if err != nil {
		return err
	}
	s.http = httpClient
	s.csrfToken = ""
	s.log.Info("logged out")
	return nil
}

// ScrapeUserInfo fetches the profile of username
func (s *Session) ScrapeUserInfo(ctx context.Context, username string) (User, error) {
	if err := s.requireAuth(); err != nil {
		return User{}, err
	}
	s.log.WithField("username", username).Debug("collecting user info")

	req := s.http.R().
		SetContext(ctx).
		SetHeader(headerAppID, AppID).
		SetQueryParam("username", username)

	res, err := s.send(req, http.MethodGet, s.endpoints.webProfileInfo())
	if err != nil {
		return User{}, err
	}
	return decodeUser(res.Body())
}

// ScrapeProfilePic returns the highest definition profile picture of the
// user. The boolean is false when the user has no custom picture.
func (s *Session) ScrapeProfilePic(ctx context.Context, userID string) (string, bool, error) {
	if err := s.requireAuth(); err != nil {
		return "", false, err
	}
	s.log.WithField("user_id", userID).Debug("collecting profile pic")

	req := s.http.R().
		SetContext(ctx).
		SetHeader(headerAppID, AppID)

	res, err := s.send(req, http.MethodGet, s.endpoints.userInfo(userID))
	if err != nil {
		return "", false, err
	}
	return decodeProfilePic(res.Body())
}

// ScrapePosts collects up to maxPosts posts of the user, newest first. Pass
// Unlimited to collect every post the platform pages through.
func (s *Session) ScrapePosts(ctx context.Context, userID string, maxPosts int) ([]Post, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if maxPosts <= 0 {
		return []Post{}, nil
	}

	log := s.log.WithField("user_id", userID)
	log.WithField("max", maxPosts).Debug("collecting posts")

	return paginate(ctx, log, maxPosts, func(ctx context.Context, first int, after string) (page[Post], error) {
		params, err := graphqlParams(PostsQueryHash, postsVariables{ID: userID, First: first, After: after})
		if err != nil {
			return page[Post]{}, err
		}
		body, err := s.graphql(ctx, params)
		if err != nil {
			return page[Post]{}, err
		}
		return decodePostsPage(body)
	})
}

// ScrapeComments collects up to maxComments comments of post
func (s *Session) ScrapeComments(ctx context.Context, post Post, maxComments int) ([]Comment, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if maxComments <= 0 {
		return []Comment{}, nil
	}

	log := s.log.WithField("shortcode", post.Shortcode)
	log.WithField("max", maxComments).Debug("collecting comments")

	return paginate(ctx, log, maxComments, func(ctx context.Context, first int, after string) (page[Comment], error) {
		params, err := graphqlParams(CommentsQueryHash, commentsVariables{Shortcode: post.Shortcode, First: first, After: after})
		if err != nil {
			return page[Comment]{}, err
		}
		body, err := s.graphql(ctx, params)
		if err != nil {
			return page[Comment]{}, err
		}
		return decodeCommentsPage(body)
	})
}

// ScrapeStories collects the current stories of the user and up to
// maxHighlightStories pinned highlight stories.
func (s *Session) ScrapeStories(ctx context.Context, userID string, maxHighlightStories int) (Stories, error) {
	if err := s.requireAuth(); err != nil {
		return Stories{}, err
	}
	log := s.log.WithField("user_id", userID)
	log.Debug("collecting stories")

	mainStories, err := s.fetchStories(ctx, mainStoriesVariables(userID))
	if err != nil {
		return Stories{}, err
	}

	if maxHighlightStories <= 0 {
		log.Debug("highlight stories not requested")
		return Stories{MainStories: mainStories, HighlightStories: []Story{}}, nil
	}

	ids, err := s.fetchHighlightReelIDs(ctx, userID)
	if err != nil {
		return Stories{}, err
	}
	log.WithField("reels", len(ids)).Debug("found highlight reels")

	highlights := make([]Story, 0, min(maxHighlightStories, len(ids)))
	for start := 0; start < len(ids); start += HighlightChunkSize {
		chunk := ids[start:min(start+HighlightChunkSize, len(ids))]
		batch, err := s.fetchStories(ctx, highlightStoriesVariables(chunk))
		if err != nil {
			return Stories{}, err
		}
		highlights = append(highlights, batch...)
		if len(highlights) >= maxHighlightStories {
			log.Debug("reached maximum amount of highlight stories")
			break
		}
	}
	if len(highlights) > maxHighlightStories {
		highlights = highlights[:maxHighlightStories]
	}

	return Stories{MainStories: mainStories, HighlightStories: highlights}, nil
}

func (s *Session) fetchStories(ctx context.Context, vars reelsVariables) ([]Story, error) {
	params, err := graphqlParams(StoriesQueryHash, vars)
	if err != nil {
		return nil, err
	}
	body, err := s.graphql(ctx, params)
	if err != nil {
		return nil, err
	}
	stories, err := decodeReelsMedia(body)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []Story{}
	}
	return stories, nil
}

func (s *Session) fetchHighlightReelIDs(ctx context.Context, userID string) ([]string, error) {
	params, err := graphqlParams(HighlightReelsQueryHash, newHighlightReelsVariables(userID))
	if err != nil {
		return nil, err
	}
	body, err := s.graphql(ctx, params)
	if err != nil {
		return nil, err
	}
	return decodeHighlightReelIDs(body)
}

func (s *Session) graphql(ctx context.Context, params map[string]string) ([]byte, error) {
	req := s.http.R().
		SetContext(ctx).
		SetQueryParams(params)

	res, err := s.send(req, http.MethodGet, s.endpoints.graphql())
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// send executes req and maps transport failures and non-2xx statuses to
// typed errors
func (s *Session) send(req *resty.Request, method, url string) (*resty.Response, error) {
	start := time.Now()
	res, err := req.Execute(method, url)
	if err != nil {
		s.log.WithError(err).ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method": method,
			"url":    url,
		})
		return nil, errs.Transport(err)
	}

	s.log.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      url,
		"status":   res.StatusCode(),
		"duration": time.Since(start),
	})

	if !res.IsSuccess() {
		s.log.WarnWithFields("unexpected response status", map[string]interface{}{
			"method": method,
			"url":    url,
			"status": res.StatusCode(),
		})
		return nil, errs.RequestFailed(res.StatusCode())
	}
	return res, nil
}

func (s *Session) requireAuth() error {
	if !s.Authenticated() {
		return errs.Unauthenticated()
	}
	return nil
}

// rotateCSRFToken replaces the stored token when an authenticated response
// carries a fresh one
func (s *Session) rotateCSRFToken(res *resty.Response) {
	if !s.Authenticated() {
		return
	}
	token, ok := csrfTokenFrom(res)
	if !ok || token == s.csrfToken {
		return
	}
	s.log.Debug("csrf token rotated")
	s.csrfToken = token
}

func csrfTokenFrom(res *resty.Response) (string, bool) {
	for _, c := range res.Cookies() {
		if c.Name == csrfTokenCookie && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// restyLogger routes resty's own diagnostics to the session logger
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
