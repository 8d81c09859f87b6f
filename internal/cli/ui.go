package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// UI writes results to out and human-facing status to errOut.
type UI struct {
	out    io.Writer
	errOut io.Writer
}

func NewUI(out, errOut io.Writer) *UI {
	return &UI{out: out, errOut: errOut}
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(ui.errOut, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(ui.errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Info prints a status line.
func (ui *UI) Info(format string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(ui.errOut, "→ %s\n", fmt.Sprintf(format, args...))
}

// JSON pretty-prints raw JSON to out. Bodies that are not JSON are written
// as they are.
func (ui *UI) JSON(raw []byte) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		_, werr := fmt.Fprintln(ui.out, string(raw))
		return werr
	}
	_, err := fmt.Fprintln(ui.out, pretty.String())
	return err
}

// Progress returns a bar counting total items on errOut.
func (ui *UI) Progress(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(ui.errOut, "\n")
		}),
	)
}
