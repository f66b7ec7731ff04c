package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"igreport/pkg/auth"
	"igreport/pkg/config"
	"igreport/pkg/errors"
	"igreport/pkg/instagram"
	"igreport/pkg/logger"
	"igreport/pkg/ui"
)

var (
	deleteAll   bool
	storeVerify bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram sessions",
	Long: `Manage stored Instagram sessions.

Only session cookies are stored, never passwords. They are kept in:
  - The system keychain (when available)
  - An AES-GCM encrypted file in the igreport config directory

A session given through IGREPORT_SESSION_ID and IGREPORT_CSRF_TOKEN, or the
config file, is used as is and never stored.

Never share your session cookies: they grant full access to the account.`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store session cookies copied from a browser",
	Long: `Store the sessionid and csrftoken cookies of a logged-in browser session.

Type "help" at the sessionid prompt for step-by-step instructions on finding
the cookies.`,
	Example: `  # Interactive login
  igreport auth login

  # Login with username
  igreport auth login mybrand`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

// authVerifyCmd represents the auth verify command
var authVerifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "Check that a username and password can log in",
	Long: `Attempt a password login and report whether it succeeds, needs a
checkpoint or two-factor challenge, or is being throttled.

The password is read from IGREPORT_LOGIN_PASSWORD or prompted for, and is
never stored. With --store the resulting session cookies are saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthVerify,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE:  runAuthList,
}

// authDeleteCmd represents the auth delete command
var authDeleteCmd = &cobra.Command{
	Use:     "delete [username]",
	Aliases: []string{"logout"},
	Short:   "Remove stored sessions",
	Example: `  igreport auth delete mybrand
  igreport auth delete --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthDelete,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authVerifyCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authDeleteCmd)

	authVerifyCmd.Flags().BoolVar(&storeVerify, "store", false, "store the session cookies after a successful login")
	authDeleteCmd.Flags().BoolVar(&deleteAll, "all", false, "remove every stored session")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	p := newPrompter()
	var username string
	if len(args) > 0 {
		username = args[0]
	}
	session, err := promptSession(p, manager, username)
	if err != nil || session == nil {
		return err
	}

	if err := manager.Save(session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	ui.PrintSuccess("Session stored for " + session.Username)
	if auth.IsKeyringAvailable() {
		ui.PrintInfo("Stored in", "system keychain and encrypted file")
	} else {
		ui.PrintInfo("Stored in", "encrypted file")
	}
	fmt.Fprintf(ui.Output, "\nScan a profile with:\n  igreport scan <username> --account %s\n", session.Username)
	return nil
}

// promptSession asks for the cookies of username. A nil session means the
// user backed out.
func promptSession(p *prompter, manager *auth.Manager, username string) (*instagram.Session, error) {
	auth.ShowQuickExtractGuide(ui.Output)

	if username == "" {
		var err error
		if username, err = p.Line("Instagram username: "); err != nil {
			return nil, fmt.Errorf("failed to read username: %w", err)
		}
	}
	username = instagram.SanitizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if existing, _ := manager.Lookup(username); existing != nil {
		if !p.Confirm(fmt.Sprintf("A session for %s is already stored. Replace it?", username), false) {
			return nil, nil
		}
	}

	var sessionID string
	for sessionID == "" {
		value, err := p.Secret("sessionid cookie (or \"help\"): ")
		if err != nil {
			return nil, fmt.Errorf("failed to read sessionid: %w", err)
		}
		switch {
		case strings.EqualFold(value, "help"):
			auth.ShowCookieExtractionGuide(ui.Output)
		case !looksLikeCookie(value):
			ui.PrintWarning("That does not look like a sessionid cookie. It is a long value, usually containing %3A.")
		default:
			sessionID = value
		}
	}

	csrfToken, err := p.Secret("csrftoken cookie: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read csrftoken: %w", err)
	}
	if !looksLikeCookie(csrfToken) {
		return nil, fmt.Errorf("%w: csrftoken looks malformed", auth.ErrInvalidSession)
	}

	userAgent, err := p.Line("User agent of that browser (Enter for default): ")
	if err != nil {
		return nil, fmt.Errorf("failed to read user agent: %w", err)
	}

	return &instagram.Session{
		Username:  username,
		SessionID: sessionID,
		CSRFToken: csrfToken,
		UserAgent: userAgent,
	}, nil
}

func looksLikeCookie(v string) bool {
	return len(v) >= 16 && !strings.ContainsAny(v, " \t;")
}

func runAuthVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	session, err := verifyLogin(ctx, cfg, instagram.Credentials{Username: args[0], Password: password})
	if err != nil {
		return err
	}
	ui.PrintSuccess("Login works for " + session.Username)

	if storeVerify {
		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		if err := manager.Save(session); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		ui.PrintSuccess("Session stored for " + session.Username)
	}
	return nil
}

// verifyLogin logs in once and turns failures into advice
func verifyLogin(ctx context.Context, cfg *config.Config, creds instagram.Credentials) (*instagram.Session, error) {
	client := instagram.NewClient(cfg.Scan.RequestTimeout, logger.GetLogger(), instagram.WithBaseURL(cfg.Instagram.BaseURL))
	if cfg.Instagram.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}

	session, err := client.Login(ctx, creds)
	switch {
	case err == nil:
		return session, nil
	case errors.IsType(err, errors.ErrorTypeChallenge):
		return nil, fmt.Errorf("instagram wants a checkpoint or two-factor code for %s: log in through a browser once, then use 'igreport auth login'", creds.Username)
	case errors.IsType(err, errors.ErrorTypeRateLimit):
		return nil, fmt.Errorf("instagram is throttling logins: wait %d minutes and try again", int(errors.CooldownPeriod.Minutes()))
	case errors.IsType(err, errors.ErrorTypeAuth):
		return nil, fmt.Errorf("login rejected: %w", err)
	default:
		return nil, fmt.Errorf("login failed: %w", err)
	}
}

func runAuthList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	return listAccounts(os.Stdout, manager)
}

func listAccounts(out io.Writer, manager *auth.Manager) error {
	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No stored sessions. Use 'igreport auth login' to add one.")
		return nil
	}

	for i, account := range accounts {
		masked := account.Masked()
		fmt.Fprintf(out, "%d. %s\n", i+1, masked.Username)
		fmt.Fprintf(out, "   Session ID: %s\n", masked.SessionID)
		fmt.Fprintf(out, "   CSRF Token: %s\n", masked.CSRFToken)
		if masked.UserAgent != "" {
			fmt.Fprintf(out, "   User Agent: %s\n", masked.UserAgent)
		}
		fmt.Fprintf(out, "   Last Modified: %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runAuthDelete(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	switch {
	case deleteAll:
		if !newPrompter().Confirm("Remove ALL stored sessions?", false) {
			return nil
		}
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove sessions: %w", err)
		}
		ui.PrintSuccess("All sessions removed")
	case len(args) == 1:
		if err := manager.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		ui.PrintSuccess("Session removed: " + args[0])
	default:
		return fmt.Errorf("name a username or pass --all")
	}
	return nil
}
