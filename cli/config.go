package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cpunion/ytd/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ytd configuration",
}

// ytd config show - show current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.SavePath())
		if err != nil {
			return err
		}
		return showConfig(cmd.OutOrStdout(), cfg)
	},
}

// ytd config path - show config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.SavePath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func showConfig(w io.Writer, cfg *config.Config) error {
	dir, err := cfg.DownloadDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintf(w, "  Backend:   %s\n", cfg.Backend)
	fmt.Fprintf(w, "  OutputDir: %s\n", dir)
	fmt.Fprintf(w, "  yt-dlp:    %s\n", orDefault(cfg.YtdlpPath, "(from PATH)"))
	fmt.Fprintf(w, "  ffmpeg:    %s\n", orDefault(cfg.FFmpegPath, "(from PATH)"))
	if config.Exists() {
		fmt.Fprintf(w, "  Config:    %s\n", config.SavePath())
	} else {
		fmt.Fprintf(w, "  Config:    %s (not created yet, showing defaults)\n", config.SavePath())
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
