package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cpunion/ytd/config"
	"github.com/cpunion/ytd/deps"
)

var installTools []string

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check or install yt-dlp and ffmpeg",
}

// ytd deps check
var depsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show where yt-dlp and ffmpeg were found",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDepsCheck(cmd.OutOrStdout(), config.LoadOrDefault())
	},
}

// ytd deps install
var depsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install yt-dlp and ffmpeg",
	Long: `Install yt-dlp and ffmpeg with the first package manager that works.

Linux tries apt, dnf, pacman, zypper and pip; macOS uses Homebrew and pip;
Windows uses winget, Chocolatey and pip. When none of them succeed a
standalone binary is downloaded and its path saved in the config file.

Examples:
  ytd deps install               # Install both tools
  ytd deps install --tool ffmpeg # Only ffmpeg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := &deps.Installer{Runner: deps.ExecRunner{}, Out: cmd.OutOrStdout(), Log: newLogger()}
		opts := deps.PlanOptions{GOOS: runtime.GOOS, Root: os.Geteuid() == 0}
		return runDepsInstall(cmd.Context(), cmd.OutOrStdout(), in, opts, managedInstalls, installTools)
	},
}

func init() {
	depsInstallCmd.Flags().StringSliceVar(&installTools, "tool", []string{deps.ToolYtdlp, deps.ToolFFmpeg}, "tool to install: yt-dlp or ffmpeg (repeatable)")

	depsCmd.AddCommand(depsCheckCmd)
	depsCmd.AddCommand(depsInstallCmd)
	rootCmd.AddCommand(depsCmd)
}

func runDepsCheck(w io.Writer, cfg *config.Config) error {
	ok := color.New(color.FgGreen).Sprint("✓")
	fail := color.New(color.FgRed).Sprint("✗")

	ytdlp, extErr := deps.FindExtractor(cfg.YtdlpPath)
	ffmpeg, ffErr := deps.FindFFmpeg(cfg.FFmpegPath)

	report := func(tool, path string, err error) {
		if err != nil {
			fmt.Fprintf(w, "%s %s: not found\n", fail, tool)
			return
		}
		fmt.Fprintf(w, "%s %s: %s\n", ok, tool, path)
	}
	report(deps.ToolYtdlp, ytdlp, extErr)
	report(deps.ToolFFmpeg, ffmpeg, ffErr)
	fmt.Fprintf(w, "Backend: %s\n", cfg.Backend)

	if ffErr != nil {
		return ffErr
	}
	if extErr != nil && cfg.Backend == config.BackendYtdlp {
		return extErr
	}
	return nil
}

// managedInstalls are the standalone downloads tried last for each tool.
var managedInstalls = map[string]func(context.Context) (string, error){
	deps.ToolYtdlp:  deps.ManagedYtdlp,
	deps.ToolFFmpeg: deps.ManagedFFmpeg,
}

func runDepsInstall(ctx context.Context, w io.Writer, in *deps.Installer, opts deps.PlanOptions, managed map[string]func(context.Context) (string, error), tools []string) error {
	cfg := config.LoadOrDefault()
	var (
		results []*deps.Result
		failed  []error
		saved   bool
	)

	for _, tool := range tools {
		if tool != deps.ToolYtdlp && tool != deps.ToolFFmpeg {
			return fmt.Errorf("unknown tool %q (want %s or %s)", tool, deps.ToolYtdlp, deps.ToolFFmpeg)
		}
		opts.Managed = managed[tool]

		res, err := in.Install(ctx, tool, deps.Plan(tool, opts))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintln(w, deps.ManualInstructions(tool))
			failed = append(failed, err)
			continue
		}

		if res.Strategy == deps.ManagedStrategy {
			if tool == deps.ToolYtdlp {
				cfg.YtdlpPath = res.Executable
			} else {
				cfg.FFmpegPath = res.Executable
			}
			saved = true
		}
		results = append(results, res)
	}

	if saved {
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	fmt.Fprintln(w)
	if len(failed) > 0 {
		fmt.Fprintln(w, color.YellowString("⚠ Some dependencies failed to install."))
		fmt.Fprintln(w, "Please check the error messages above and install manually.")
		return errors.Join(failed...)
	}
	fmt.Fprintln(w, summaryBox(results, saved))
	return nil
}

func summaryBox(results []*deps.Result, saved bool) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(1, 2)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("248"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var content strings.Builder
	content.WriteString(successStyle.Render("✓ All dependencies installed successfully!"))
	content.WriteString("\n")
	for _, r := range results {
		via := r.Strategy
		if r.AlreadyInstalled {
			via = "already installed"
		}
		content.WriteString("\n")
		content.WriteString(labelStyle.Render(fmt.Sprintf("%-8s", r.Tool)))
		content.WriteString(valueStyle.Render(fmt.Sprintf("%s (%s)", orDefault(r.Executable, "on PATH"), via)))
	}
	if saved {
		content.WriteString("\n\n")
		content.WriteString(labelStyle.Render("Config:  "))
		content.WriteString(valueStyle.Render(config.SavePath()))
	}
	content.WriteString("\n\n")
	content.WriteString(labelStyle.Render("You can now run: "))
	content.WriteString(valueStyle.Render("ytd"))

	return boxStyle.Render(content.String())
}
