package deps

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/lrstanley/go-ytdlp"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// ManagedStrategy names the standalone download appended to every plan.
const ManagedStrategy = "standalone download"

// Runner executes install commands.
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec and folds their output into the
// returned error.
type ExecRunner struct{}

func (ExecRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := lastLine(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Strategy is one way of installing a tool.
type Strategy struct {
	Name string
	// Requires must be on PATH or the strategy is skipped.
	Requires string
	// Prepare runs before Command; failures are ignored.
	Prepare [][]string
	Command []string
	// Managed replaces Command and returns the installed executable.
	Managed func(ctx context.Context) (string, error)
}

// Result describes a successful install.
type Result struct {
	Tool             string
	Strategy         string
	Executable       string
	AlreadyInstalled bool
}

// InstallError is returned when every strategy failed or was skipped.
type InstallError struct {
	Tool     string
	Attempts []error
}

func (e *InstallError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("could not install %s: no usable package manager found", e.Tool)
	}
	return fmt.Sprintf("could not install %s: %d attempts failed", e.Tool, len(e.Attempts))
}

func (e *InstallError) Unwrap() []error { return e.Attempts }

// Installer walks a strategy chain and stops at the first success.
type Installer struct {
	Runner Runner
	Out    io.Writer
	Log    *log.Logger
}

// Install ensures tool is present. A tool already on PATH is left alone.
func (in *Installer) Install(ctx context.Context, tool string, chain []Strategy) (*Result, error) {
	if p, err := in.Runner.LookPath(tool); err == nil {
		fmt.Fprintf(in.Out, "%s %s is already installed (%s)\n", okMark, tool, p)
		return &Result{Tool: tool, Executable: p, AlreadyInstalled: true}, nil
	}

	var attempts []error
	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.Requires != "" {
			if _, err := in.Runner.LookPath(s.Requires); err != nil {
				in.Log.Printf("skip %s: %s not found", s.Name, s.Requires)
				continue
			}
		}

		fmt.Fprintf(in.Out, "Installing %s via %s...\n", tool, s.Name)
		for _, p := range s.Prepare {
			if err := in.Runner.Run(ctx, p[0], p[1:]...); err != nil {
				in.Log.Printf("prepare %q: %v", strings.Join(p, " "), err)
			}
		}

		exe, err := in.run(ctx, tool, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fmt.Fprintf(in.Out, "%s Failed to install %s via %s\n", failMark, tool, s.Name)
			in.Log.Printf("%s: %v", s.Name, err)
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}

		fmt.Fprintf(in.Out, "%s %s installed via %s\n", okMark, tool, s.Name)
		return &Result{Tool: tool, Strategy: s.Name, Executable: exe}, nil
	}

	return nil, &InstallError{Tool: tool, Attempts: attempts}
}

func (in *Installer) run(ctx context.Context, tool string, s Strategy) (string, error) {
	if s.Managed != nil {
		return s.Managed(ctx)
	}
	if err := in.Runner.Run(ctx, s.Command[0], s.Command[1:]...); err != nil {
		return "", err
	}
	// pip --user can land outside PATH; the install still counts.
	exe, _ := in.Runner.LookPath(tool)
	return exe, nil
}

// PlanOptions selects the platform a plan is built for.
type PlanOptions struct {
	GOOS string
	// Root skips the sudo prefix on Linux.
	Root bool
	// Managed downloads a standalone binary as the last resort; nil omits it.
	Managed func(ctx context.Context) (string, error)
}

// Plan returns the ordered install strategies for tool on opts.GOOS.
func Plan(tool string, opts PlanOptions) []Strategy {
	sudo := func(args ...string) []string {
		if opts.GOOS == "linux" && !opts.Root {
			return append([]string{"sudo"}, args...)
		}
		return args
	}

	var chain []Strategy
	switch tool {
	case ToolYtdlp:
		switch opts.GOOS {
		case "linux":
			chain = append(chain, Strategy{
				Name:     "apt",
				Requires: "apt",
				Prepare:  [][]string{sudo("apt", "update")},
				Command:  sudo("apt", "install", "-y", "yt-dlp"),
			})
			chain = append(chain, pipStrategies("python3")...)
		case "darwin":
			chain = append(chain, Strategy{Name: "Homebrew", Requires: "brew", Command: []string{"brew", "install", "yt-dlp"}})
			chain = append(chain, pipStrategies("python3")...)
		case "windows":
			chain = append(chain,
				Strategy{Name: "winget", Requires: "winget", Command: []string{"winget", "install", "--id", "yt-dlp.yt-dlp", "-e"}},
				Strategy{Name: "chocolatey", Requires: "choco", Command: []string{"choco", "install", "yt-dlp", "-y"}},
			)
			chain = append(chain, pipStrategies("python")...)
		}
	case ToolFFmpeg:
		switch opts.GOOS {
		case "linux":
			chain = append(chain,
				Strategy{
					Name:     "apt (Ubuntu/Debian)",
					Requires: "apt",
					Prepare:  [][]string{sudo("apt", "update")},
					Command:  sudo("apt", "install", "-y", "ffmpeg"),
				},
				Strategy{Name: "dnf (Fedora)", Requires: "dnf", Command: sudo("dnf", "install", "-y", "ffmpeg")},
				Strategy{Name: "pacman (Arch)", Requires: "pacman", Command: sudo("pacman", "-S", "--noconfirm", "ffmpeg")},
				Strategy{Name: "zypper (openSUSE)", Requires: "zypper", Command: sudo("zypper", "install", "-y", "ffmpeg")},
			)
		case "darwin":
			chain = append(chain, Strategy{Name: "Homebrew", Requires: "brew", Command: []string{"brew", "install", "ffmpeg"}})
		case "windows":
			chain = append(chain,
				Strategy{Name: "winget", Requires: "winget", Command: []string{"winget", "install", "ffmpeg"}},
				Strategy{Name: "chocolatey", Requires: "choco", Command: []string{"choco", "install", "ffmpeg", "-y"}},
			)
		}
	}

	if opts.Managed != nil {
		chain = append(chain, Strategy{Name: ManagedStrategy, Managed: opts.Managed})
	}
	return chain
}

func pipStrategies(python string) []Strategy {
	chain := []Strategy{
		{Name: "pipx", Requires: "pipx", Command: []string{"pipx", "install", ToolYtdlp}},
	}
	for _, pip := range []string{"pip3", "pip"} {
		chain = append(chain,
			Strategy{Name: pip, Requires: pip, Command: []string{pip, "install", "--upgrade", ToolYtdlp}},
			Strategy{Name: pip + " (user install)", Requires: pip, Command: []string{pip, "install", "--user", "--upgrade", ToolYtdlp}},
		)
	}
	return append(chain,
		Strategy{Name: python + " -m pip", Requires: python, Command: []string{python, "-m", "pip", "install", "--upgrade", ToolYtdlp}},
		Strategy{Name: python + " -m pip (user install)", Requires: python, Command: []string{python, "-m", "pip", "install", "--user", "--upgrade", ToolYtdlp}},
	)
}

// ManagedYtdlp downloads a standalone yt-dlp into the go-ytdlp cache.
func ManagedYtdlp(ctx context.Context) (string, error) {
	r, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	return r.Executable, nil
}

// ManagedFFmpeg downloads a standalone ffmpeg into the go-ytdlp cache.
func ManagedFFmpeg(ctx context.Context) (string, error) {
	r, err := ytdlp.InstallFFmpeg(ctx, nil)
	if err != nil {
		return "", err
	}
	return r.Executable, nil
}

// ManualInstructions is printed when no strategy worked.
func ManualInstructions(tool string) string {
	if tool == ToolYtdlp {
		return "Please install yt-dlp manually:\n" +
			"  1. Create a virtual environment: python3 -m venv ytd-env && ytd-env/bin/pip install yt-dlp\n" +
			"  2. Use pipx: pipx install yt-dlp\n" +
			"  3. Use the system package (Ubuntu/Debian): sudo apt install yt-dlp\n" +
			"  4. Download a release from https://github.com/yt-dlp/yt-dlp/releases"
	}
	return "Please install ffmpeg manually:\n" +
		"  Ubuntu/Debian: sudo apt install ffmpeg\n" +
		"  Fedora: sudo dnf install ffmpeg\n" +
		"  Arch: sudo pacman -S ffmpeg\n" +
		"  macOS: brew install ffmpeg\n" +
		"  Windows: winget install ffmpeg, or download from https://ffmpeg.org/download.html"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
