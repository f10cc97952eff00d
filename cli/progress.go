package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/nathan-fiscaletti/consolesize-go"
	"github.com/pterm/pterm"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/flightning/quadviz/animation"
)

type progressSpinner interface {
	Stop() error
	Success(...any)
	Fail(...any)
	UpdateText(string)
}

type progressSpinnerFactory func(w io.Writer, text string) (progressSpinner, error)

var defaultSpinnerFactory progressSpinnerFactory = func(w io.Writer, text string) (progressSpinner, error) {
	spinner, err := pterm.DefaultSpinner.
		WithWriter(w).
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return spinner, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth is the console width in columns, or fallback when it is unknown.
func terminalWidth(fallback int) int {
	cols, _ := consolesize.GetConsoleSize()
	if cols <= 0 {
		return fallback
	}
	return cols
}

// progressSink reports the frames written to its sink on a spinner.
type progressSink struct {
	animation.Sink
	spinner progressSpinner
	total   int
	written int
}

func newProgressSink(sink animation.Sink, total int, w io.Writer, factory progressSpinnerFactory) (*progressSink, error) {
	spinner, err := factory(w, progressText(0, total))
	if err != nil {
		return nil, err
	}
	return &progressSink{Sink: sink, spinner: spinner, total: total}, nil
}

func progressText(written, total int) string {
	return fmt.Sprintf("rendering frame %d/%d", written, total)
}

func (p *progressSink) WriteFrame(ctx context.Context, index int, img image.Image) error {
	if err := p.Sink.WriteFrame(ctx, index, img); err != nil {
		p.spinner.Fail(fmt.Sprintf("frame %d: %v", index, err))
		return err
	}
	p.written++
	p.spinner.UpdateText(progressText(p.written, p.total))
	return nil
}

func (p *progressSink) Close() error {
	err := p.Sink.Close()
	if err != nil {
		p.spinner.Fail(err.Error())
	} else {
		p.spinner.Success(fmt.Sprintf("rendered %d frames", p.written))
	}
	return multierr.Combine(err, p.spinner.Stop())
}
