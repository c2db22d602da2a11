package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"instascraper/pkg/auth"
	"instascraper/pkg/config"
	"instascraper/pkg/instagram"
	"instascraper/pkg/logger"
	"instascraper/pkg/retry"
	"instascraper/pkg/scraper"
	"instascraper/pkg/storage"
	"instascraper/pkg/ui"
)

var (
	accountName string
	guestLogin  bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <profile>",
	Short: "Collect profile info, stories, posts and comments of a user",
	Long: `Collect the profile of an Instagram user: user info, profile picture, main
and highlight stories, timeline posts and the comments of the latest post.

Credentials are chosen in this order:
  - --guest forces a guest login
  - --account uses a stored account
  - instagram.username / instagram.password from config or INSTASCRAPER_* variables
  - the default stored account (see 'instascraper auth login')
  - otherwise a guest login

Results are printed and, when an output directory is set, exported as JSON or YAML.`,
	Example: `  # Guest scrape with default limits
  instascraper scrape nasa

  # More posts, exported as YAML
  instascraper scrape nasa --max-posts 50 --output ./data --format yaml

  # Use a stored account and pace requests
  instascraper scrape nasa --account myaccount --rate-limit 30`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	f := scrapeCmd.Flags()
	f.StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	f.BoolVar(&guestLogin, "guest", false, "log in as a guest even when credentials are available")
	f.Int("max-posts", 0, "maximum number of posts to collect")
	f.Int("max-highlights", 0, "maximum number of highlight stories to collect")
	f.Int("max-comments", 0, "maximum number of comments of the latest post to collect")
	f.Int("rate-limit", 0, "requests per minute (0 disables pacing)")
	f.Int("max-retries", 0, "maximum attempts per step")
	f.Duration("timeout", 0, "per-request timeout")
	f.StringP("output", "o", "", "export directory (empty disables export)")
	f.String("format", "", "export format (json, yaml)")
}

// scrapeFlags collects the flags the user set explicitly
func scrapeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := baseFlags()
	f := cmd.Flags()

	for _, name := range []string{"max-posts", "max-highlights", "max-comments", "rate-limit", "max-retries"} {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			flags[name] = v
		}
	}
	if f.Changed("timeout") {
		v, _ := f.GetDuration("timeout")
		flags["timeout"] = v
	}
	for _, name := range []string{"output", "format"} {
		if f.Changed(name) {
			v, _ := f.GetString(name)
			flags[name] = v
		}
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	username := instagram.SanitizeUsername(strings.TrimSpace(args[0]))
	if !instagram.IsValidUsername(username) {
		return fmt.Errorf("invalid username %q", args[0])
	}

	cfg, err := config.Load(configFile, scrapeFlags(cmd))
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger().WithField("profile", username)

	authn, err := resolveAuth(cfg, credentialManager(log), accountName, guestLogin)
	if err != nil {
		return err
	}

	retryCfg := retry.FromConfig(cfg.Retry, log)
	s, err := scraper.New(cfg,
		scraper.WithAuthentication(authn),
		scraper.WithLogger(log),
		scraper.WithRetry(retryCfg),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	printer.Banner()
	printer.Info("Target Profile", username)
	printer.Info("Login", fmt.Sprint(authn))

	return collect(ctx, printer, s, cfg, username, retryCfg, log)
}

// profileSession is the part of scraper.Scraper the scrape command drives
type profileSession interface {
	Login(ctx context.Context) error
	ScrapeProfile(ctx context.Context, username string, limits scraper.Limits) (*scraper.Profile, error)
	Logout(ctx context.Context) error
}

// collect logs in, scrapes and exports one profile. Once the login succeeded
// the session is logged out on every path.
func collect(ctx context.Context, p *ui.Printer, s profileSession, cfg *config.Config, username string, retryCfg *retry.Config, log logger.Logger) error {
	if err := retry.Do(ctx, s.Login, retryCfg); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	profile, err := s.ScrapeProfile(ctx, username, scraper.LimitsFromConfig(cfg.Scrape))
	if err == nil {
		printProfile(p, profile)
		err = export(p, cfg.Output, profile)
	}
	if err != nil {
		if logoutErr := s.Logout(context.WithoutCancel(ctx)); logoutErr != nil {
			log.WithError(logoutErr).Warn("logout after failed scrape")
		}
		return err
	}

	if err := s.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	p.Success("Scrape completed")
	return nil
}

func export(p *ui.Printer, cfg config.OutputConfig, profile *scraper.Profile) error {
	if cfg.BaseDirectory == "" {
		return nil
	}
	paths, err := exportProfile(cfg, profile, time.Now())
	if err != nil {
		return err
	}
	for _, path := range paths {
		p.Dim("wrote " + path)
	}
	return nil
}

// credentialSource is the part of auth.Manager the scrape command reads
type credentialSource interface {
	Retrieve(username string) (*auth.Account, error)
	RetrieveDefault() (*auth.Account, error)
}

// credentialManager opens the credential stores, falling back to the
// environment alone when the config directory is unusable
func credentialManager(log logger.Logger) credentialSource {
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("credential stores unavailable, using environment only")
		return auth.NewManagerWithStores(auth.NewEnvironmentStore())
	}
	return manager
}

// resolveAuth picks the login method. Explicit choices fail loudly when their
// credentials are missing; otherwise a missing default means guest.
func resolveAuth(cfg *config.Config, creds credentialSource, account string, guest bool) (instagram.Authentication, error) {
	if guest {
		return instagram.Guest{}, nil
	}

	if account != "" {
		acc, err := creds.Retrieve(account)
		if err != nil {
			return nil, fmt.Errorf("no stored credentials for %s: %w", account, err)
		}
		return instagram.UsernamePassword{Username: acc.Username, Password: acc.Password}, nil
	}

	if cfg.Instagram.Username != "" {
		if cfg.Instagram.Password != "" {
			return instagram.UsernamePassword{Username: cfg.Instagram.Username, Password: cfg.Instagram.Password}, nil
		}
		acc, err := creds.Retrieve(cfg.Instagram.Username)
		if err != nil {
			return nil, fmt.Errorf("no password configured or stored for %s: %w", cfg.Instagram.Username, err)
		}
		return instagram.UsernamePassword{Username: acc.Username, Password: acc.Password}, nil
	}

	acc, err := creds.RetrieveDefault()
	if errors.Is(err, auth.ErrCredentialsNotFound) {
		return instagram.Guest{}, nil
	}
	if err != nil {
		return nil, err
	}
	return instagram.UsernamePassword{Username: acc.Username, Password: acc.Password}, nil
}

func printProfile(p *ui.Printer, profile *scraper.Profile) {
	p.Summary(profile.User, ui.Counts{
		MainStories:      len(profile.Stories.MainStories),
		HighlightStories: len(profile.Stories.HighlightStories),
		Posts:            len(profile.Posts),
		Comments:         len(profile.Comments),
	})
	if profile.ProfilePic != "" {
		p.Info("Profile picture", profile.ProfilePic)
	}

	latest, ok := profile.LatestPost()
	if !ok {
		return
	}
	caption := ""
	if latest.Caption != nil {
		caption = *latest.Caption
	}
	p.Info("Latest post", instagram.GetPostURL(latest.Shortcode))
	if caption != "" {
		p.Dim(caption)
	}
	for _, c := range profile.Comments {
		p.Info(c.Username, c.Text)
	}
}

// exportProfile writes every part of profile and returns the written paths.
// Comments are exported only when the profile has a latest post.
func exportProfile(cfg config.OutputConfig, profile *scraper.Profile, now time.Time) ([]string, error) {
	manager, err := storage.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	username := profile.User.Username

	var paths []string
	save := func(path string, err error) error {
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		paths = append(paths, path)
		return nil
	}

	if err := save(manager.SaveProfile(storage.NewProfile(profile.User, profile.ProfilePic, now))); err != nil {
		return paths, err
	}
	if err := save(manager.SaveStories(username, profile.Stories)); err != nil {
		return paths, err
	}
	if err := save(manager.SavePosts(username, profile.Posts)); err != nil {
		return paths, err
	}
	if latest, ok := profile.LatestPost(); ok {
		if err := save(manager.SaveComments(username, latest.Shortcode, profile.Comments)); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
