package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonandersen/schwab/internal/config"
	"github.com/jonandersen/schwab/internal/keyring"
)

// passwordReader abstracts terminal password input for testing.
type passwordReader interface {
	ReadPassword() (string, error)
	IsTerminal() bool
}

// terminalReader reads passwords from the terminal using golang.org/x/term.
type terminalReader struct {
	fd int
}

// newTerminalReader creates a reader for the given file descriptor.
func newTerminalReader(fd int) *terminalReader {
	return &terminalReader{fd: fd}
}

func (r *terminalReader) ReadPassword() (string, error) {
	password, err := term.ReadPassword(r.fd)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// prompter abstracts interactive menu selection for testing.
type prompter interface {
	SelectOption(options []string) (int, error)
	ReadLine(prompt string) (string, error)
}

// terminalPrompter implements prompter on a line reader. The reader is
// shared across calls so buffered input is not lost between prompts.
type terminalPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{reader: bufio.NewReader(r), writer: w}
}

func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *terminalPrompter) SelectOption(options []string) (int, error) {
	for {
		input, err := p.readLine()
		if err != nil {
			if err == io.EOF {
				return 0, fmt.Errorf("no input")
			}
			return 0, err
		}
		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(options) {
			_, _ = fmt.Fprintf(p.writer, "Please enter a number between 1 and %d: ", len(options))
			continue
		}
		return idx - 1, nil
	}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.writer, prompt)
	line, err := p.readLine()
	if err == io.EOF {
		return "", nil
	}
	return line, err
}

// configureOptions holds dependencies for the configure command.
type configureOptions struct {
	configPath     func() string
	store          keyring.Store
	passwordReader passwordReader
	prompt         prompter
}

// newConfigureCmd creates the configure command with the given options.
func newConfigureCmd(opts configureOptions) *cobra.Command {
	var defaultAccount string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure API credentials",
		Long: `Configure the CLI with the app key and secret of your Schwab developer app.

The secret is read without echo and stored in the system keyring. The
callback URL must match the one registered for the app.
Create an app at: https://developer.schwab.com

Examples:
  schwab configure
  schwab configure --account ACCOUNT_HASH`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd, opts, defaultAccount)
		},
	}

	cmd.Flags().StringVar(&defaultAccount, "account", "", "Default account hash (optional)")
	cmd.SilenceUsage = true

	return cmd
}

// reconfigureMenuOptions defines the menu options when already configured.
var reconfigureMenuOptions = []string{
	"Configure new credentials",
	"Change callback URL",
	"View current configuration",
	"Clear credentials",
}

func runConfigure(cmd *cobra.Command, opts configureOptions, defaultAccount string) error {
	if !opts.passwordReader.IsTerminal() {
		return fmt.Errorf("configure requires an interactive terminal\nRun this command directly in your terminal (not piped or in a script)\nIn CI, set %s and %s instead", keyring.EnvClientID, keyring.EnvClientSecret)
	}

	if _, _, err := keyring.Credentials(opts.store); err == nil {
		return runReconfigureMenu(cmd, opts)
	}

	return runInitialSetup(cmd, opts, defaultAccount)
}

func runReconfigureMenu(cmd *cobra.Command, opts configureOptions) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "CLI is already configured. What would you like to do?")
	_, _ = fmt.Fprintln(out)
	for i, opt := range reconfigureMenuOptions {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, "Select option: ")

	choice, err := opts.prompt.SelectOption(reconfigureMenuOptions)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}

	switch choice {
	case 0:
		return runInitialSetup(cmd, opts, "")
	case 1:
		return runChangeRedirect(cmd, opts)
	case 2:
		return runViewConfiguration(cmd, opts)
	case 3:
		return runClearCredentials(cmd, opts)
	default:
		return fmt.Errorf("invalid selection")
	}
}

func runInitialSetup(cmd *cobra.Command, opts configureOptions, defaultAccount string) error {
	clientID, err := opts.prompt.ReadLine("Enter your app key: ")
	if err != nil {
		return fmt.Errorf("failed to read app key: %w", err)
	}
	if clientID == "" {
		return fmt.Errorf("app key cannot be empty")
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Enter your app secret: ")
	clientSecret, err := opts.passwordReader.ReadPassword()
	if err != nil {
		return fmt.Errorf("failed to read app secret: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	if clientSecret == "" {
		return fmt.Errorf("app secret cannot be empty")
	}

	cfg := loadOrDefault(opts.configPath())

	redirect, err := promptRedirect(opts, cfg.RedirectURI)
	if err != nil {
		return err
	}
	cfg.RedirectURI = redirect
	if defaultAccount != "" {
		cfg.DefaultAccount = defaultAccount
	}

	if err := keyring.SaveCredentials(opts.store, clientID, strings.TrimSpace(clientSecret)); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	if err := config.Save(opts.configPath(), cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved successfully!")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'schwab auth login' to sign in.")
	return nil
}

// promptRedirect asks for the callback URL, keeping current on empty input.
func promptRedirect(opts configureOptions, current string) (string, error) {
	line, err := opts.prompt.ReadLine(fmt.Sprintf("Callback URL [%s]: ", current))
	if err != nil {
		return "", fmt.Errorf("failed to read callback URL: %w", err)
	}
	if line == "" {
		return current, nil
	}
	u, err := url.Parse(line)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("invalid callback URL %q (must be an https URL)", line)
	}
	return line, nil
}

func runChangeRedirect(cmd *cobra.Command, opts configureOptions) error {
	cfg := loadOrDefault(opts.configPath())

	redirect, err := promptRedirect(opts, cfg.RedirectURI)
	if err != nil {
		return err
	}
	cfg.RedirectURI = redirect

	if err := config.Save(opts.configPath(), cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Callback URL set to: %s\n", redirect)
	return nil
}

func runViewConfiguration(cmd *cobra.Command, opts configureOptions) error {
	cfg := loadOrDefault(opts.configPath())
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Current Configuration:")
	_, _ = fmt.Fprintln(out, "----------------------")

	if id, _, err := keyring.Credentials(opts.store); err == nil {
		_, _ = fmt.Fprintf(out, "App key: %s\n", maskKey(id))
		_, _ = fmt.Fprintln(out, "App secret: Configured")
	} else {
		_, _ = fmt.Fprintln(out, "Credentials: Not configured")
	}

	if cfg.DefaultAccount != "" {
		_, _ = fmt.Fprintf(out, "Default account: %s\n", cfg.DefaultAccount)
	} else {
		_, _ = fmt.Fprintln(out, "Default account: Not set")
	}

	_, _ = fmt.Fprintf(out, "Callback URL: %s\n", cfg.RedirectURI)
	_, _ = fmt.Fprintf(out, "API base URL: %s\n", cfg.APIBaseURL)
	_, _ = fmt.Fprintf(out, "Token file: %s\n", cfg.ResolvedTokenPath())
	_, _ = fmt.Fprintf(out, "Request timeout: %s\n", cfg.RequestTimeout)

	return nil
}

func runClearCredentials(cmd *cobra.Command, opts configureOptions) error {
	if err := keyring.DeleteCredentials(opts.store); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials cleared successfully.")
	return nil
}

// loadOrDefault loads the config, falling back to defaults on any error.
func loadOrDefault(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// maskKey shows only the last four characters of an app key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(newConfigureCmd(configureOptions{
		configPath:     resolveConfigPath,
		store:          keyring.NewEnvStore(keyring.NewSystemStore()),
		passwordReader: newTerminalReader(int(os.Stdin.Fd())),
		prompt:         newTerminalPrompter(os.Stdin, os.Stdout),
	}))
}
