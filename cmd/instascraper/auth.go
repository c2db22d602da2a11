package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"instascraper/pkg/auth"
	"instascraper/pkg/config"
	"instascraper/pkg/instagram"
	"instascraper/pkg/logger"
	"instascraper/pkg/scraper"
)

var verifyLogin bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Instagram credentials",
	Long: `Manage the username/password pairs used for credentialed logins.

Credentials are stored in:
  - the system keychain (when available)
  - an encrypted file with PBKDF2 key derivation
  - INSTASCRAPER_USERNAME / INSTASCRAPER_PASSWORD (read-only, INSTAGRAM_* also accepted)`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store credentials for an account",
	Example: `  # Prompt for username and password
  instascraper auth login

  # Store and check against the platform
  instascraper auth login myaccount --verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Remove stored credentials for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"list"},
	Short:   "Show stored accounts",
	RunE:    runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)

	authLoginCmd.Flags().BoolVar(&verifyLogin, "verify", false, "log in to the platform before storing")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Fprint(cmd.OutOrStdout(), "Instagram username: ")
		username, err = readLine(reader)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	username = instagram.SanitizeUsername(username)
	if !instagram.IsValidUsername(username) {
		return fmt.Errorf("invalid username %q", username)
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if verifyLogin {
		if err := verifyCredentials(cmd.Context(), username, password); err != nil {
			return err
		}
		printer.Success("Credentials accepted by Instagram")
	}

	where, err := manager.Store(&auth.Account{Username: username, Password: password})
	if err != nil {
		return err
	}
	printer.Success(fmt.Sprintf("Account saved: %s (%s)", username, where))
	return nil
}

// verifyCredentials performs a full login and logout against the platform
func verifyCredentials(ctx context.Context, username, password string) error {
	cfg, err := config.Load(configFile, baseFlags())
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	s, err := scraper.New(cfg,
		scraper.WithCredentials(username, password),
		scraper.WithLogger(logger.GetLogger()),
	)
	if err != nil {
		return err
	}
	if err := s.Login(ctx); err != nil {
		return fmt.Errorf("login rejected: %w", err)
	}
	return s.Logout(ctx)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	username := instagram.SanitizeUsername(args[0])
	if err := manager.Delete(username); err != nil {
		return err
	}
	printer.Success("Account removed: " + username)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts := manager.List()
	if len(accounts) == 0 {
		printer.Info("No stored accounts", "use 'instascraper auth login' to add one")
		return nil
	}

	printer.Highlight("Stored Accounts")
	for _, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		where, _ := manager.Locate(account.Username)
		printer.Info(sanitized.Username, fmt.Sprintf("password %s, modified %s, stored in %s",
			sanitized.Password, sanitized.LastModified.Format("2006-01-02 15:04:05"), where))
	}

	if def, err := manager.RetrieveDefault(); err == nil {
		printer.Info("Default", def.Username)
	}
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise
func readPassword(r *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}
	return readLine(r)
}
