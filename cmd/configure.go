package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonandersen/backspread/internal/config"
	"github.com/jonandersen/backspread/internal/keyring"
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
}

// terminalPrompter implements prompter using stdin.
type terminalPrompter struct {
	reader io.Reader
	writer io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{reader: r, writer: w}
}

func (p *terminalPrompter) SelectOption(options []string) (int, error) {
	scanner := bufio.NewScanner(p.reader)
	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no input")
		}
		idx, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || idx < 1 || idx > len(options) {
			_, _ = fmt.Fprintf(p.writer, "Please enter a number between 1 and %d: ", len(options))
			continue
		}
		return idx - 1, nil
	}
}

// configureOptions holds dependencies for the configure command.
type configureOptions struct {
	configPath     string
	store          keyring.Store
	passwordReader passwordReader
	prompt         prompter
}

// configureFlags are optional config file settings.
type configureFlags struct {
	redirectURI  string
	dteWindow    int
	dteWindowSet bool
}

// newConfigureCmd creates the configure command with the given options.
func newConfigureCmd(opts configureOptions) *cobra.Command {
	var flags configureFlags

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure the API key",
		Long: `Store the API consumer key in the system keyring.

You will be prompted to enter the key securely. The key is the consumer
key of your registered API app; the OAuth suffix is added automatically.

Example:
  backspread configure
  backspread configure --redirect-uri https://127.0.0.1 --dte-window 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.dteWindowSet = cmd.Flags().Changed("dte-window")
			return runConfigure(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.redirectURI, "redirect-uri", "", "OAuth redirect URI registered with the API app")
	cmd.Flags().IntVar(&flags.dteWindow, "dte-window", config.DefaultDTEWindow, "Days either side of the target DTE to request")

	cmd.SilenceUsage = true

	return cmd
}

// reconfigureMenuOptions defines the menu options when already configured.
var reconfigureMenuOptions = []string{
	"Configure new API key",
	"View current configuration",
	"Clear API key",
}

func runConfigure(cmd *cobra.Command, opts configureOptions, flags configureFlags) error {
	if !opts.passwordReader.IsTerminal() {
		return fmt.Errorf("configure requires an interactive terminal\nRun this command directly in your terminal (not piped or in a script)")
	}
	if flags.dteWindowSet && flags.dteWindow < 0 {
		return fmt.Errorf("dte window must not be negative")
	}

	_, err := opts.store.Get(keyring.ServiceName, keyring.KeyAPIKey)
	if err == nil {
		return runReconfigureMenu(cmd, opts, flags)
	}

	return runInitialSetup(cmd, opts, flags)
}

func runReconfigureMenu(cmd *cobra.Command, opts configureOptions, flags configureFlags) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "API key is already configured. What would you like to do?")
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
		return runInitialSetup(cmd, opts, flags)
	case 1:
		return runViewConfiguration(cmd, opts)
	case 2:
		return runClearAPIKey(cmd, opts)
	default:
		return fmt.Errorf("invalid selection")
	}
}

// runInitialSetup stores the API key and any config flags.
func runInitialSetup(cmd *cobra.Command, opts configureOptions, flags configureFlags) error {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Enter your API key: ")
	apiKey, err := opts.passwordReader.ReadPassword()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if err := opts.store.Set(keyring.ServiceName, keyring.KeyAPIKey, apiKey); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if flags.redirectURI != "" {
		cfg.RedirectURI = flags.redirectURI
	}
	if flags.dteWindowSet {
		cfg.DTEWindow = flags.dteWindow
	}

	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved successfully!")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'backspread login' to authorize.")
	return nil
}

func runViewConfiguration(cmd *cobra.Command, opts configureOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Current Configuration:")
	_, _ = fmt.Fprintln(out, "----------------------")

	if _, err := opts.store.Get(keyring.ServiceName, keyring.KeyAPIKey); err == nil {
		_, _ = fmt.Fprintln(out, "API key: Configured")
	} else {
		_, _ = fmt.Fprintln(out, "API key: Not configured")
	}

	_, _ = fmt.Fprintf(out, "API base URL: %s\n", cfg.APIBaseURL)
	_, _ = fmt.Fprintf(out, "Redirect URI: %s\n", cfg.RedirectURI)
	_, _ = fmt.Fprintf(out, "DTE window: %d days\n", cfg.DTEWindow)

	return nil
}

func runClearAPIKey(cmd *cobra.Command, opts configureOptions) error {
	if err := opts.store.Delete(keyring.ServiceName, keyring.KeyAPIKey); err != nil {
		return fmt.Errorf("failed to clear API key: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key cleared successfully.")
	return nil
}

func init() {
	configureCmd := newConfigureCmd(configureOptions{
		configPath:     config.ConfigPath(),
		store:          keyring.NewSystemStore(),
		passwordReader: newTerminalReader(int(os.Stdin.Fd())),
		prompt:         newTerminalPrompter(os.Stdin, os.Stdout),
	})
	rootCmd.AddCommand(configureCmd)
}
