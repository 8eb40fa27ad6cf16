// Package cli wires the ytd commands together.
package cli

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cpunion/ytd/config"
	"github.com/cpunion/ytd/deps"
	"github.com/cpunion/ytd/extractor"
	"github.com/cpunion/ytd/prompt"
	"github.com/cpunion/ytd/transcode"
)

var (
	audioOnly   bool
	backendName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "ytd",
	Short: "Download YouTube videos or audio",
	Long: `Download YouTube videos or audio.

ytd asks for a URL, lists the available formats and downloads the one you
pick into ~/Downloads/Youtube Downloads.

Examples:
  ytd                  # Download video
  ytd --audio-only     # Download audio only (MP3)
  ytd --backend native # Skip yt-dlp and talk to YouTube directly`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&audioOnly, "audio-only", "a", false, "download only audio (MP3 format)")
	rootCmd.Flags().StringVar(&backendName, "backend", "", "extraction backend: ytdlp or native (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log external commands to stderr")
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	return exitCode(os.Stdout, rootCmd.ExecuteContext(ctx))
}

func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "ytd: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func runDownload(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg := config.LoadOrDefault()
	if backendName != "" {
		cfg.Backend = backendName
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	tools, err := deps.Check(cfg.Backend == config.BackendNative, cfg.YtdlpPath, cfg.FFmpegPath)
	if err != nil {
		return err
	}

	dir, err := cfg.DownloadDir()
	if err != nil {
		return err
	}

	logger := newLogger()
	backend := newBackend(cfg.Backend, tools, out, logger)
	logger.Printf("backend=%s extractor=%q ffmpeg=%q dir=%q", backend.Name(), tools.Extractor, tools.FFmpeg, dir)

	s := &session{
		prompt:  prompt.New(in, out),
		out:     out,
		backend: backend,
		dir:     dir,
		audio:   audioOnly,
		animate: term.IsTerminal(int(os.Stdout.Fd())),
	}
	return s.run(ctx)
}

func newBackend(name string, tools deps.Tools, out io.Writer, logger *log.Logger) extractor.Backend {
	if name == config.BackendNative {
		return extractor.NewNative(transcode.New(tools.FFmpeg, logger), out, logger)
	}
	return extractor.NewYtdlp(tools.Extractor, tools.FFmpeg, out, logger)
}
