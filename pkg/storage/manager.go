package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"instascraper/pkg/config"
	"instascraper/pkg/instagram"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Profile is the exported form of a user. It carries the follower counts
// that instagram.User keeps behind accessors.
type Profile struct {
	instagram.User `yaml:",inline"`
	Followers      int       `json:"followers" yaml:"followers"`
	Following      int       `json:"following" yaml:"following"`
	ProfilePic     string    `json:"profile_pic,omitempty" yaml:"profile_pic,omitempty"`
	ScrapedAt      time.Time `json:"scraped_at" yaml:"scraped_at"`
}

// NewProfile builds the export record for user
func NewProfile(user instagram.User, profilePic string, scrapedAt time.Time) Profile {
	return Profile{
		User:       user,
		Followers:  user.Followers(),
		Following:  user.Following(),
		ProfilePic: profilePic,
		ScrapedAt:  scrapedAt.UTC(),
	}
}

// Manager writes scrape results under an output directory
type Manager struct {
	outputDir   string
	format      string
	userFolders bool
	written     map[string]bool
	mu          sync.RWMutex
}

// NewManager creates a storage manager from the output configuration
func NewManager(cfg config.OutputConfig) (*Manager, error) {
	if cfg.BaseDirectory == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	format := strings.ToLower(cfg.Format)
	switch format {
	case "":
		format = FormatJSON
	case "yml":
		format = FormatYAML
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q", cfg.Format)
	}

	if err := os.MkdirAll(cfg.BaseDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir:   cfg.BaseDirectory,
		format:      format,
		userFolders: cfg.CreateUserFolders,
		written:     make(map[string]bool),
	}, nil
}

// SaveProfile writes the profile record and returns its path
func (m *Manager) SaveProfile(profile Profile) (string, error) {
	return m.save(profile.Username, "profile", profile)
}

// SavePosts writes the posts of username
func (m *Manager) SavePosts(username string, posts []instagram.Post) (string, error) {
	if posts == nil {
		posts = []instagram.Post{}
	}
	return m.save(username, "posts", posts)
}

// SaveStories writes main and highlight stories of username
func (m *Manager) SaveStories(username string, stories instagram.Stories) (string, error) {
	return m.save(username, "stories", stories)
}

// SaveComments writes the comments of the post identified by shortcode
func (m *Manager) SaveComments(username, shortcode string, comments []instagram.Comment) (string, error) {
	if comments == nil {
		comments = []instagram.Comment{}
	}
	return m.save(username, "comments_"+shortcode, comments)
}

// IsWritten reports whether name was exported for username, by this manager
// or an earlier run
func (m *Manager) IsWritten(username, name string) bool {
	path := m.path(username, name)

	m.mu.RLock()
	written := m.written[path]
	m.mu.RUnlock()
	if written {
		return true
	}

	if _, err := os.Stat(path); err == nil {
		m.mu.Lock()
		m.written[path] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetWrittenCount returns the number of files written by this manager
func (m *Manager) GetWrittenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.written)
}

func (m *Manager) path(username, name string) string {
	ext := ".json"
	if m.format == FormatYAML {
		ext = ".yaml"
	}
	username = instagram.SanitizeUsername(username)

	if m.userFolders {
		return filepath.Join(m.outputDir, username, name+ext)
	}
	return filepath.Join(m.outputDir, username+"_"+name+ext)
}

func (m *Manager) save(username, name string, v any) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required to export %s", name)
	}

	data, err := m.encode(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := m.path(username, name)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.written[path] = true
	m.mu.Unlock()

	return path, nil
}

func (m *Manager) encode(v any) ([]byte, error) {
	if m.format == FormatYAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// writeAtomic writes data to a temporary file and renames it over path
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write export data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
