package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cpunion/ytd/extractor"
	"github.com/cpunion/ytd/formats"
	"github.com/cpunion/ytd/progress"
	"github.com/cpunion/ytd/prompt"
)

// session is one interactive run: URL, format list, selection, download.
type session struct {
	prompt  *prompt.Prompter
	out     io.Writer
	backend extractor.Backend
	dir     string
	audio   bool
	animate bool
}

func (s *session) run(ctx context.Context) error {
	url, err := s.prompt.ReadURL(ctx)
	if err != nil {
		return err
	}

	message, kind := "Fetching options", "format"
	if s.audio {
		message, kind = "Fetching audio options", "audio"
	}

	fmt.Fprintln(s.out)
	status := progress.NewSpinner(s.out, message)
	if !s.animate {
		status.Disable()
	}
	status.Start()
	defer status.Stop()

	lister := &extractor.Lister{Backend: s.backend, Out: s.out}
	var list []formats.Format
	if s.audio {
		list, err = lister.Audio(ctx, url, status)
	} else {
		list, err = lister.Video(ctx, url, status)
	}
	if err != nil || len(list) == 0 {
		return err
	}

	i, ok := s.prompt.Choose(ctx, kind, len(list))
	if !ok {
		return nil
	}

	orch := &extractor.Orchestrator{Backend: s.backend, Dir: s.dir, Out: s.out}
	if s.audio {
		return orch.Audio(ctx, url, list[i].ID)
	}
	return orch.Video(ctx, url, list[i].ID)
}
