package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/tonimelisma/grabdoc/internal/export"
)

// progressPrinter renders export progress as "Download N%." lines. On a
// terminal the line is rewritten in place; otherwise each chunk gets its own
// line so logs and pipes keep the full history.
type progressPrinter struct {
	w     io.Writer
	tty   bool
	quiet bool
}

// newProgressPrinter prints to w, honoring --quiet. Only an *os.File can be
// a terminal.
func newProgressPrinter(w io.Writer) *progressPrinter {
	pp := &progressPrinter{w: w, quiet: flagQuiet}

	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		pp.tty = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	return pp
}

// Report prints one progress update.
func (pp *progressPrinter) Report(p export.Progress) {
	if pp.quiet {
		return
	}

	if !pp.tty {
		fmt.Fprintf(pp.w, "Download %d%%.\n", p.Percent())
		return
	}

	fmt.Fprintf(pp.w, "\rDownload %d%%.", p.Percent())

	if p.Final {
		fmt.Fprintln(pp.w)
	}
}
