package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cpunion/ytd/deps"
	"github.com/cpunion/ytd/extractor"
	"github.com/cpunion/ytd/prompt"
)

// exitCode reports err on w and maps it to a process exit code. Retrieval
// and download failures were already printed where they happened.
func exitCode(w io.Writer, err error) int {
	var (
		retrieval *extractor.RetrievalError
		download  *extractor.DownloadError
		missing   *deps.MissingDependencyError
		install   *deps.InstallError
	)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "\n\nProgram interrupted by user. Goodbye!")
		return 0
	case errors.As(err, &retrieval), errors.As(err, &download):
		return 0
	case errors.Is(err, prompt.ErrEmptyURL):
		return 1
	case errors.As(err, &missing):
		fmt.Fprintf(w, "%s %v\n%s\n", color.RedString("Error:"), missing, missing.Remedy)
		return 1
	case errors.As(err, &install):
		fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
		return 1
	default:
		fmt.Fprintf(w, "\nUnexpected error occurred: %v\n", err)
		return 1
	}
}
