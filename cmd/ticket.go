package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonandersen/backspread/internal/chain"
	"github.com/jonandersen/backspread/internal/config"
	"github.com/jonandersen/backspread/internal/output"
	"github.com/jonandersen/backspread/internal/selector"
	"github.com/jonandersen/backspread/internal/ticket"
	"github.com/jonandersen/backspread/pkg/tdapi"
)

const chainDateLayout = "2006-01-02"

// ticketOptions holds dependencies for the ticket command.
type ticketOptions struct {
	lookup    config.LookupFunc
	clients   clientFactory
	dteWindow int
	now       func() time.Time
	jsonMode  bool
}

// ticketFlags override the matching environment variables.
type ticketFlags struct {
	symbol     string
	tradeType  string
	pricing    string
	protection string
}

func (f ticketFlags) overrides() map[string]string {
	return map[string]string{
		"SYMBOL":            f.symbol,
		"TRADE_TYPE":        f.tradeType,
		"PRICING":           f.pricing,
		"PROTECTION_FORMAT": f.protection,
	}
}

// withOverrides layers non-empty values over lookup.
func withOverrides(lookup config.LookupFunc, overrides map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		if v := overrides[key]; v != "" {
			return v, true
		}
		return lookup(key)
	}
}

// newTicketCmd creates the ticket command with the given options.
func newTicketCmd(opts *ticketOptions) *cobra.Command {
	var flags ticketFlags

	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Build a trade ticket",
		Long: `Build a ratio spread trade ticket from the current option chain.

Targets are read from the environment (or .env): SYMBOL, TARGET_DTE,
TRADE_TYPE, OTM_PRICE_TARGET, MIN_OTM_PERCENT, SPREAD_PRICE_TARGET,
SPREAD_WIDTH_TARGET, PRICING and PROTECTION_FORMAT.

Examples:
  backspread ticket
  backspread ticket --symbol SPY --trade-type "1.1.2"
  backspread ticket --pricing natural --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicket(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.symbol, "symbol", "", "Underlying symbol (overrides SYMBOL)")
	cmd.Flags().StringVar(&flags.tradeType, "trade-type", "", `Trade type: "1.1.1", "1.1.2" or "Bear 1.1.2" (overrides TRADE_TYPE)`)
	cmd.Flags().StringVar(&flags.pricing, "pricing", "", "Leg pricing: mid or natural (overrides PRICING)")
	cmd.Flags().StringVar(&flags.protection, "protection", "", "Protection format: percent or fraction (overrides PROTECTION_FORMAT)")

	cmd.SilenceUsage = true

	return cmd
}

func runTicket(cmd *cobra.Command, opts *ticketOptions, flags ticketFlags) error {
	trade, err := config.TradeSettingsFromEnv(withOverrides(opts.lookup, flags.overrides()))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := opts.clients(context.Background())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	quote, err := client.GetQuote(ctx, trade.Symbol)
	if err != nil {
		return withAPIHint(fmt.Errorf("failed to fetch quote: %w", err))
	}
	log.WithFields(log.Fields{"symbol": trade.Symbol, "last": quote.LastPrice}).Debug("fetched quote")

	c, err := fetchChain(ctx, client, trade.Symbol, trade.Selector.TargetDTE, opts.dteWindow, opts.now())
	if err != nil {
		return withAPIHint(err)
	}

	sel, err := selector.Select(c, trade.TradeType, quote.LastPrice, trade.Selector)
	if err != nil {
		return err
	}

	t := ticket.Build(trade.Symbol, quote.LastPrice, sel, trade.Selector.Pricing, trade.ProtectionFormat)

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode, false)
	return formatter.Lines(t.Lines(), t)
}

// fetchChain requests the standard OTM chain for expirations within window
// days of targetDTE.
func fetchChain(ctx context.Context, client *tdapi.Client, symbol string, targetDTE, window int, now time.Time) (*chain.Chain, error) {
	from := targetDTE - window
	if from < 0 {
		from = 0
	}

	req := tdapi.OptionChainRequest{
		Symbol:       symbol,
		ContractType: tdapi.ContractTypeAll,
		StrikeRange:  tdapi.RangeOTM,
		OptionType:   tdapi.OptionTypeStandard,
		FromDate:     now.AddDate(0, 0, from).Format(chainDateLayout),
		ToDate:       now.AddDate(0, 0, targetDTE+window).Format(chainDateLayout),
	}
	log.WithFields(log.Fields{"symbol": symbol, "from": req.FromDate, "to": req.ToDate}).Debug("fetching option chain")

	raw, err := client.GetOptionChain(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch option chain: %w", err)
	}

	c, err := chain.FromAPI(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse option chain: %w", err)
	}
	return c, nil
}

func init() {
	opts := &ticketOptions{lookup: os.LookupEnv, now: time.Now}
	ticketCmd := newTicketCmd(opts)
	ticketCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts.clients = sessionClients(cfg)
		opts.dteWindow = cfg.DTEWindow
		opts.jsonMode = GetJSONMode()
		return nil
	}
	rootCmd.AddCommand(ticketCmd)
}
