package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/xltables/internal/catalog"
	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/decode"
	"github.com/joseph-ayodele/xltables/internal/segment"
)

var (
	cfgFile      string
	outputFormat string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "xltables",
	Short: "Find the titled tables inside spreadsheets and query them",
	Long: `xltables splits a worksheet into the named tables it contains.

Each table is anchored on a title cell from a known catalog, carved out of the
sheet up to the next title, and cleaned of sparse rows and columns. The tables
can then be listed, inspected and summed over gRPC.

Configuration is read from ./xltables.yaml (or --config) and XLTABLES_*
environment variables, e.g. XLTABLES_SERVER_GRPC_ADDR=:9090.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = newLogger(cmd.ErrOrStderr(), c.Log)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./xltables.yaml or ~/.xltables/xltables.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
}

// newLogger writes to stderr so stdout stays parseable.
func newLogger(w io.Writer, lc common.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func segmentConfig(c *common.Config) (segment.Config, error) {
	sc := segment.DefaultConfig()
	sc.MaxEmptyRowRatio = c.Segmentation.MaxEmptyRowRatio
	sc.MaxEmptyColRatio = c.Segmentation.MaxEmptyColRatio
	sc.MaxBlankStreak = c.Segmentation.MaxBlankStreak
	sc.MinRows = c.Segmentation.MinRows
	sc.MinCols = c.Segmentation.MinCols
	if p := c.Segmentation.CatalogPath; p != "" {
		titles, err := catalog.Load(p)
		if err != nil {
			return segment.Config{}, err
		}
		sc.Titles = titles
	}
	return sc, nil
}

func decodeOptions(c *common.Config) decode.Options {
	return decode.Options{Sheet: c.Ingest.Sheet, Formatted: c.Ingest.Formatted}
}
