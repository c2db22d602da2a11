// Package scraper is the client facade over an Instagram session.
//
// A Scraper is created once with its authentication method, guest unless
// credentials are configured or passed with WithCredentials, and delegates
// every operation to a single instagram.Session:
//
//	s, err := scraper.New(cfg, scraper.WithCredentials("user", "pass"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Login(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	user, err := s.ScrapeUserInfo(ctx, "instagram")
//
// Request pacing follows the rate_limit configuration. ScrapeProfile chains
// the individual calls for one user and retries each step under the policy
// given with WithRetry; the single-call methods never retry.
package scraper
