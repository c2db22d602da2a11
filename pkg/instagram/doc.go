// Package instagram talks to Instagram's undocumented web API.
//
// A Session owns an HTTP client, its cookie jar and the CSRF token the
// platform requires on every call. It starts unauthenticated; Login with
// Guest or UsernamePassword obtains a token, and Logout resets the session
// to a fresh unauthenticated state.
//
//	s, err := instagram.NewSession(cfg.Instagram, log)
//	if err != nil {
//	    return err
//	}
//	if err := s.Login(ctx, instagram.Guest{}); err != nil {
//	    return err
//	}
//	user, err := s.ScrapeUserInfo(ctx, "username")
//	posts, err := s.ScrapePosts(ctx, user.ID, 20)
//
// Failures are *errors.Error values from instascraper/pkg/errors and can be
// matched with errors.Is against its sentinels.
package instagram
