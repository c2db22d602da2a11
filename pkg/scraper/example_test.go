package scraper_test

import (
	"context"
	"fmt"

	"instascraper/pkg/config"
	"instascraper/pkg/logger"
	"instascraper/pkg/retry"
	"instascraper/pkg/scraper"
)

func ExampleScraper_ScrapeProfile() {
	cfg := config.DefaultConfig()
	log := logger.GetLogger()

	s, err := scraper.New(cfg,
		scraper.WithLogger(log),
		scraper.WithRetry(retry.FromConfig(cfg.Retry, log)),
	)
	if err != nil {
		fmt.Printf("Failed to create scraper: %v\n", err)
		return
	}

	ctx := context.Background()
	if err := s.Login(ctx); err != nil {
		fmt.Printf("Failed to log in: %v\n", err)
		return
	}

	profile, err := s.ScrapeProfile(ctx, "instagram", scraper.LimitsFromConfig(cfg.Scrape))
	if err != nil {
		fmt.Printf("Failed to scrape profile: %v\n", err)
		return
	}

	fmt.Printf("%s has %d followers\n", profile.User.Username, profile.User.Followers())
}
