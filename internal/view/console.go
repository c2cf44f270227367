package view

import (
	"fmt"
	"io"

	"github.com/codebuildervaibhav/podcast-content/internal/render"
)

// Console renders lifecycle sections as terminal output. Each Show call
// replaces the active section, so only one is ever "open" at a time.
type Console struct {
	out io.Writer
	// downloadURL resolves an artifact filename to its fetch location.
	downloadURL func(filename string) string

	processing bool
	lastFile   string
}

// NewConsole creates a console view writing to out.
func NewConsole(out io.Writer, downloadURL func(string) string) *Console {
	return &Console{out: out, downloadURL: downloadURL}
}

func (v *Console) ShowUpload() {
	v.closeProcessing()
	fmt.Fprintln(v.out, "Ready to upload.")
}

func (v *Console) ShowProcessing(filename string) {
	if v.processing && filename == v.lastFile {
		// just a poll tick, keep the line growing
		fmt.Fprint(v.out, ".")
		return
	}
	v.closeProcessing()
	fmt.Fprintf(v.out, "Processing %s ", filename)
	v.processing = true
	v.lastFile = filename
}

func (v *Console) ShowResults(items []render.Item) {
	v.closeProcessing()
	fmt.Fprintln(v.out, "Generated content:")
	for _, item := range items {
		fmt.Fprintf(v.out, "  %-20s %s\n", item.Label, v.downloadURL(item.Filename))
	}
}

func (v *Console) ShowError(message string) {
	v.closeProcessing()
	fmt.Fprintf(v.out, "Error: %s\n", message)
}

// closeProcessing terminates the dotted progress line when leaving the
// processing section.
func (v *Console) closeProcessing() {
	if v.processing {
		fmt.Fprintln(v.out)
		v.processing = false
		v.lastFile = ""
	}
}
