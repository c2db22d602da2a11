// Package storage exports scrape results to disk.
//
// The Manager writes a profile record, posts, stories and per-post comments
// as JSON or YAML under an output directory, optionally in one folder per
// user. Every file is written to a temporary path and renamed into place, so
// readers never observe a partial export.
//
// Usage:
//
//	manager, err := storage.NewManager(cfg.Output)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := manager.SavePosts(user.Username, posts)
//	if err != nil {
//	    log.Printf("Failed to export posts: %v", err)
//	}
package storage
