package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown styles markdown for the terminal.
var renderMarkdown = func(md string) (string, error) { return glamour.Render(md, "auto") }

// printMarkdown renders md for the terminal. Rendering failures print the raw markdown.
func printMarkdown(md string) {
	out, err := renderMarkdown(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
