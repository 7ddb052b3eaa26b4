package probe

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/coverscope/internal/config"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/pkg/logger"
)

// flags collects the overrides given on the command line.
type flags struct {
	apiURL     string
	restaurant string
	service    string
	view       string
	date       string
	timeout    time.Duration
	verbose    bool
}

// NewRootCommand returns the coverscope-cli command tree writing reports to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "coverscope-cli",
		Short: "Query covers forecasts from the prediction API",
		Long: `coverscope-cli prints covers forecasts and restaurant profiles the way the
coverscope dashboard shows them. Defaults come from the COVERSCOPE_* environment
and the optional COVERSCOPE_CONFIG file; flags override them.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&f.apiURL, "api-url", "", "Base URL of the prediction API")
	root.PersistentFlags().DurationVar(&f.timeout, "timeout", 0, "Per request timeout")
	root.PersistentFlags().BoolVar(&f.verbose, "verbose", false, "Log prediction API calls")

	forecastCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the forecast of a day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config(cmd.Context())
			if err != nil {
				return err
			}
			log, err := f.logger(cmd)
			if err != nil {
				return err
			}
			client, err := NewClient(cfg, log)
			if err != nil {
				return err
			}
			return Forecast(cmd.Context(), cfg, client, cmd.OutOrStdout())
		},
	}
	forecastCmd.Flags().StringVar(&f.restaurant, "restaurant", "", "Restaurant ID")
	forecastCmd.Flags().StringVar(&f.service, "service", "", "Service type: lunch, brunch or dinner")
	forecastCmd.Flags().StringVar(&f.view, "view", string(model.Day), "Window: day, week or month")
	forecastCmd.Flags().StringVar(&f.date, "date", "", "Anchor date YYYY-MM-DD (default today)")

	profileCmd := &cobra.Command{
		Use:   "profile [restaurant]",
		Short: "Print a restaurant profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd.Context())
			if err != nil {
				return err
			}
			name := cfg.RestaurantID
			if len(args) == 1 {
				name = args[0]
			}
			log, err := f.logger(cmd)
			if err != nil {
				return err
			}
			client, err := NewClient(cfg, log)
			if err != nil {
				return err
			}
			return Profile(cmd.Context(), client, name, cmd.OutOrStdout())
		},
	}

	root.AddCommand(forecastCmd, profileCmd)
	return root
}

// config merges the loaded service configuration with the flags.
func (f *flags) config(ctx context.Context) (*Config, error) {
	base, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := base.Location()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:       base.APIURL,
		RestaurantID: base.DefaultRestaurant,
		ServiceType:  base.ServiceType(),
		Granularity:  model.Day,
		Date:         f.date,
		Timeout:      base.RequestTimeout(),
		Margin:       base.RangeMargin,
		Location:     loc,
	}
	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.restaurant != "" {
		cfg.RestaurantID = f.restaurant
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if f.service != "" {
		if cfg.ServiceType, err = model.ParseServiceType(f.service); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if f.view != "" {
		if cfg.Granularity, err = model.ParseGranularity(f.view); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return cfg, nil
}

// logger writes debug logs to stderr when verbose is set.
func (f *flags) logger(cmd *cobra.Command) (logger.Logger, error) {
	if !f.verbose {
		return logger.Nop(), nil
	}
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return nil, err
	}
	if err := logger.SetLevelString("debug"); err != nil {
		return nil, err
	}
	return logger.Named("probe"), nil
}
