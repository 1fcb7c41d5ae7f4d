package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/mxpv/podarchive/services/backup"
)

type progress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// newProgress returns a feed progress bar, or nil when out isn't a terminal.
func newProgress(out io.Writer, enabled bool) backup.Progress {
	if !enabled || !isTerminal(out) {
		return nil
	}

	return &progress{out: out}
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("feeds"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
}

func (p *progress) Describe(feedURL string) {
	p.bar.Describe(feedURL)
}

func (p *progress) Increment() {
	_ = p.bar.Add(1)
}

func (p *progress) Finish() {
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
}
