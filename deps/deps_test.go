package deps

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

type fakeRunner struct {
	onPath  map[string]bool
	fail    map[string]bool // keyed by joined command
	install map[string]string
	calls   []string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	cmd := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmd)
	if f.fail[cmd] {
		return errors.New("exit status 1")
	}
	if tool, ok := f.install[cmd]; ok {
		f.onPath[tool] = true
	}
	return nil
}

func newInstaller(r Runner) (*Installer, *bytes.Buffer) {
	var out bytes.Buffer
	return &Installer{Runner: r, Out: &out, Log: log.New(io.Discard, "", 0)}, &out
}

func TestInstallAlreadyPresent(t *testing.T) {
	r := &fakeRunner{onPath: map[string]bool{"ffmpeg": true}}
	in, out := newInstaller(r)

	res, err := in.Install(context.Background(), ToolFFmpeg, Plan(ToolFFmpeg, PlanOptions{GOOS: "linux"}))
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if !res.AlreadyInstalled || len(r.calls) != 0 {
		t.Fatalf("Install() res=%+v calls=%v", res, r.calls)
	}
	if !strings.Contains(out.String(), "ffmpeg is already installed") {
		t.Fatalf("output=%q", out.String())
	}
}

func TestInstallFallsBackAndShortCircuits(t *testing.T) {
	r := &fakeRunner{
		onPath: map[string]bool{"apt": true, "dnf": true, "pacman": true},
		fail: map[string]bool{
			"sudo apt install -y ffmpeg": true,
		},
		install: map[string]string{
			"sudo dnf install -y ffmpeg": "ffmpeg",
		},
	}
	in, _ := newInstaller(r)

	res, err := in.Install(context.Background(), ToolFFmpeg, Plan(ToolFFmpeg, PlanOptions{GOOS: "linux"}))
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if res.Strategy != "dnf (Fedora)" || res.Executable != "/usr/bin/ffmpeg" {
		t.Fatalf("Install()=%+v", res)
	}
	want := []string{
		"sudo apt update",
		"sudo apt install -y ffmpeg",
		"sudo dnf install -y ffmpeg",
	}
	if strings.Join(r.calls, "|") != strings.Join(want, "|") {
		t.Fatalf("calls=%v want=%v", r.calls, want)
	}
}

func TestInstallSkipsMissingManagers(t *testing.T) {
	r := &fakeRunner{onPath: map[string]bool{"pip3": true}}
	in, _ := newInstaller(r)

	_, err := in.Install(context.Background(), ToolYtdlp, Plan(ToolYtdlp, PlanOptions{GOOS: "linux", Root: true}))
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if len(r.calls) != 1 || r.calls[0] != "pip3 install --upgrade yt-dlp" {
		t.Fatalf("calls=%v", r.calls)
	}
}

func TestInstallAllFail(t *testing.T) {
	r := &fakeRunner{
		onPath: map[string]bool{"brew": true},
		fail:   map[string]bool{"brew install ffmpeg": true},
	}
	in, out := newInstaller(r)

	managedErr := errors.New("download blocked")
	opts := PlanOptions{GOOS: "darwin", Managed: func(context.Context) (string, error) {
		return "", managedErr
	}}
	_, err := in.Install(context.Background(), ToolFFmpeg, Plan(ToolFFmpeg, opts))

	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("Install() err=%v want *InstallError", err)
	}
	if len(ie.Attempts) != 2 || !errors.Is(err, managedErr) {
		t.Fatalf("attempts=%v", ie.Attempts)
	}
	if strings.Count(out.String(), "Failed to install ffmpeg") != 2 {
		t.Fatalf("output=%q", out.String())
	}
}

func TestInstallManagedLastResort(t *testing.T) {
	r := &fakeRunner{onPath: map[string]bool{}}
	in, _ := newInstaller(r)

	opts := PlanOptions{GOOS: "windows", Managed: func(context.Context) (string, error) {
		return `C:\cache\yt-dlp.exe`, nil
	}}
	res, err := in.Install(context.Background(), ToolYtdlp, Plan(ToolYtdlp, opts))
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if res.Strategy != "standalone download" || res.Executable != `C:\cache\yt-dlp.exe` {
		t.Fatalf("Install()=%+v", res)
	}
}

func TestInstallCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{onPath: map[string]bool{"apt": true}}
	in, _ := newInstaller(r)
	_, err := in.Install(ctx, ToolFFmpeg, Plan(ToolFFmpeg, PlanOptions{GOOS: "linux"}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Install() err=%v want context.Canceled", err)
	}
}

func TestPlanSudo(t *testing.T) {
	tests := []struct {
		goos string
		root bool
		want string
	}{
		{"linux", false, "sudo apt install -y ffmpeg"},
		{"linux", true, "apt install -y ffmpeg"},
		{"darwin", false, "brew install ffmpeg"},
		{"windows", false, "winget install ffmpeg"},
	}
	for _, tt := range tests {
		chain := Plan(ToolFFmpeg, PlanOptions{GOOS: tt.goos, Root: tt.root})
		if got := strings.Join(chain[0].Command, " "); got != tt.want {
			t.Errorf("Plan(%s, root=%v)[0]=%q want=%q", tt.goos, tt.root, got, tt.want)
		}
	}
}

func TestPlanUnknownOSOnlyManaged(t *testing.T) {
	if chain := Plan(ToolYtdlp, PlanOptions{GOOS: "plan9"}); len(chain) != 0 {
		t.Fatalf("Plan(plan9)=%v want empty", chain)
	}
	managed := func(context.Context) (string, error) { return "", nil }
	chain := Plan(ToolYtdlp, PlanOptions{GOOS: "plan9", Managed: managed})
	if len(chain) != 1 || chain[0].Managed == nil {
		t.Fatalf("Plan(plan9, managed)=%v", chain)
	}
}

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses shell-style executables")
	}
	dir := t.TempDir()
	t.Setenv("PATH", dir)

	_, err := Check(false, "", "")
	var missing *MissingDependencyError
	if !errors.As(err, &missing) || missing.Tool != ToolYtdlp {
		t.Fatalf("Check() err=%v want missing yt-dlp", err)
	}

	writeExecutable(t, dir, "youtube-dl")
	_, err = Check(false, "", "")
	if !errors.As(err, &missing) || missing.Tool != ToolFFmpeg {
		t.Fatalf("Check() err=%v want missing ffmpeg", err)
	}
	if !strings.Contains(missing.Remedy, "ytd deps install") {
		t.Errorf("Remedy=%q", missing.Remedy)
	}

	ff := writeExecutable(t, t.TempDir(), "my-ffmpeg")
	tools, err := Check(false, "", ff)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if filepath.Base(tools.Extractor) != "youtube-dl" || tools.FFmpeg != ff {
		t.Fatalf("Check()=%+v", tools)
	}

	tools, err = Check(true, "", ff)
	if err != nil || tools.Extractor != "" {
		t.Fatalf("Check(native)=%+v, %v", tools, err)
	}
}
