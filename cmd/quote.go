package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/backspread/internal/output"
)

// quoteOptions holds dependencies for the quote command.
type quoteOptions struct {
	clients  clientFactory
	jsonMode bool
}

// newQuoteCmd creates the quote command with the given options.
func newQuoteCmd(opts *quoteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Get quotes",
		Long: `Get the last, bid and ask price for one or more symbols.

Examples:
  backspread quote SPY
  backspread quote SPY QQQ IWM
  backspread quote SPY --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts, args)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runQuote(cmd *cobra.Command, opts *quoteOptions, symbols []string) error {
	client, err := opts.clients(context.Background())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	headers := []string{"Symbol", "Last", "Bid", "Ask", "Volume"}
	rows := make([][]string, 0, len(symbols))

	for _, sym := range symbols {
		q, err := client.GetQuote(ctx, sym)
		if err != nil {
			return withAPIHint(fmt.Errorf("failed to fetch quote for %s: %w", sym, err))
		}
		rows = append(rows, []string{
			q.Symbol,
			formatPrice(q.LastPrice),
			formatPrice(q.BidPrice),
			formatPrice(q.AskPrice),
			formatVolume(q.TotalVolume),
		})
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode, false)
	return formatter.Table(headers, rows)
}

// formatVolume formats volume with thousand separators.
func formatVolume(vol int64) string {
	if vol == 0 {
		return "-"
	}
	s := fmt.Sprintf("%d", vol)
	n := len(s)
	if n <= 3 {
		return s
	}
	numCommas := (n - 1) / 3
	result := make([]byte, n+numCommas)
	for i, j := n-1, len(result)-1; i >= 0; i-- {
		result[j] = s[i]
		j--
		if (n-i)%3 == 0 && i > 0 {
			result[j] = ','
			j--
		}
	}
	return string(result)
}

func init() {
	opts := &quoteOptions{}
	quoteCmd := newQuoteCmd(opts)
	quoteCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts.clients = sessionClients(cfg)
		opts.jsonMode = GetJSONMode()
		return nil
	}
	rootCmd.AddCommand(quoteCmd)
}
