package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/backspread/internal/chain"
	"github.com/jonandersen/backspread/internal/config"
	"github.com/jonandersen/backspread/internal/output"
	"github.com/jonandersen/backspread/internal/selector"
)

// chainOptions holds dependencies for the chain command.
type chainOptions struct {
	lookup    config.LookupFunc
	clients   clientFactory
	dteWindow int
	now       func() time.Time
	jsonMode  bool
	csvMode   bool
	strikes   int // N strikes around the underlying; 0 shows all
}

// strikeRow is one contract of the printed chain.
type strikeRow struct {
	Expiration string  `csv:"expiration" json:"expiration"`
	Side       string  `csv:"side" json:"side"`
	Strike     float64 `csv:"strike" json:"strike"`
	Bid        float64 `csv:"bid" json:"bid"`
	Ask        float64 `csv:"ask" json:"ask"`
	Mid        float64 `csv:"mid" json:"mid"`
	PercentOTM float64 `csv:"otm_percent" json:"otmPercent"`
	Symbol     string  `csv:"symbol" json:"symbol"`
}

// newChainCmd creates the chain command with the given options.
func newChainCmd(opts *chainOptions) *cobra.Command {
	var targetDTE int

	cmd := &cobra.Command{
		Use:   "chain [SYMBOL]",
		Short: "Show the option chain nearest the target DTE",
		Long: `Show the puts and calls of the expiration closest to the target DTE.

The symbol defaults to SYMBOL and the target to TARGET_DTE.

Examples:
  backspread chain SPY --dte 45
  backspread chain --csv > chain.csv
  backspread chain SPY --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, _ := opts.lookup("SYMBOL")
			if len(args) == 1 {
				symbol = args[0]
			}
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if symbol == "" {
				return fmt.Errorf("symbol is required (pass SYMBOL argument or set SYMBOL)")
			}

			dte := targetDTE
			if !cmd.Flags().Changed("dte") {
				raw, ok := opts.lookup("TARGET_DTE")
				if !ok || strings.TrimSpace(raw) == "" {
					return fmt.Errorf("target DTE is required (use --dte or set TARGET_DTE)")
				}
				n, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil {
					return fmt.Errorf("TARGET_DTE must be an integer, got %q", raw)
				}
				dte = n
			}
			if dte < 0 {
				return fmt.Errorf("target DTE must not be negative")
			}

			return runChain(cmd, opts, symbol, dte)
		},
	}

	cmd.Flags().IntVar(&targetDTE, "dte", 0, "Target days to expiration (overrides TARGET_DTE)")
	cmd.Flags().BoolVar(&opts.csvMode, "csv", false, "Output in CSV format")
	cmd.Flags().IntVar(&opts.strikes, "strikes", 0, "Show only N strikes around the underlying price")

	cmd.SilenceUsage = true

	return cmd
}

func runChain(cmd *cobra.Command, opts *chainOptions, symbol string, targetDTE int) error {
	client, err := opts.clients(context.Background())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	quote, err := client.GetQuote(ctx, symbol)
	if err != nil {
		return withAPIHint(fmt.Errorf("failed to fetch quote: %w", err))
	}
	if quote.LastPrice <= 0 {
		return fmt.Errorf("invalid last price %v for %s", quote.LastPrice, symbol)
	}

	c, err := fetchChain(ctx, client, symbol, targetDTE, opts.dteWindow, opts.now())
	if err != nil {
		return withAPIHint(err)
	}

	var records []strikeRow
	for _, exps := range [][]chain.Expiration{c.Puts, c.Calls} {
		exp, err := selector.Expiration(exps, targetDTE)
		if err != nil {
			continue
		}
		records = append(records, strikeRows(exp, quote.LastPrice, opts.strikes)...)
	}

	if len(records) == 0 {
		return fmt.Errorf("no expiration found for %s near %d DTE: %w", symbol, targetDTE, selector.ErrNotFound)
	}

	headers := []string{"Expiration", "Side", "Strike", "Bid", "Ask", "Mid", "OTM%"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Expiration,
			r.Side,
			formatPrice(r.Strike),
			formatPrice(r.Bid),
			formatPrice(r.Ask),
			formatPrice(r.Mid),
			fmt.Sprintf("%.2f", r.PercentOTM),
		})
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode, opts.csvMode)
	return formatter.Records(&records, headers, rows)
}

func strikeRows(exp chain.Expiration, lastPrice float64, n int) []strikeRow {
	var rows []strikeRow
	for _, s := range strikesAroundPrice(exp.Strikes.Strikes(), n, lastPrice) {
		for _, c := range s.Contracts {
			rows = append(rows, strikeRow{
				Expiration: exp.Date,
				Side:       string(c.Side),
				Strike:     s.Price,
				Bid:        c.Bid,
				Ask:        c.Ask,
				Mid:        c.Mid(),
				PercentOTM: 100 * selector.PercentOTM(s.Price, lastPrice),
				Symbol:     c.Symbol,
			})
		}
	}
	return rows
}

// strikesAroundPrice returns n strikes centered on the strike closest to
// price. Strikes must be ascending.
func strikesAroundPrice(strikes []chain.Strike, n int, price float64) []chain.Strike {
	if len(strikes) == 0 || n <= 0 || n >= len(strikes) {
		return strikes
	}

	closest := 0
	for i, s := range strikes {
		if math.Abs(s.Price-price) < math.Abs(strikes[closest].Price-price) {
			closest = i
		}
	}

	start := closest - n/2
	end := start + n
	if start < 0 {
		start, end = 0, n
	}
	if end > len(strikes) {
		start, end = len(strikes)-n, len(strikes)
	}
	return strikes[start:end]
}

// formatPrice prints the shortest exact representation of a price.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func init() {
	opts := &chainOptions{lookup: os.LookupEnv, now: time.Now}
	chainCmd := newChainCmd(opts)
	chainCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts.clients = sessionClients(cfg)
		opts.dteWindow = cfg.DTEWindow
		opts.jsonMode = GetJSONMode()
		return nil
	}
	rootCmd.AddCommand(chainCmd)
}
