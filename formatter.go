package onvifevents

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/beevik/etree"
)

// A Formatter produces a human-readable rendering of an XML body. Formatting
// is best effort: callers fall back to the raw body when it fails.
type Formatter interface {
	Format(body string) (string, error)
}

// FormattingError reports a failed pretty-print. It is never fatal; the sink
// logs it and writes the raw body instead.
type FormattingError struct {
	Err error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("XML pretty print failed: %v", e.Err)
}

func (e *FormattingError) Unwrap() error {
	return e.Err
}

// EtreeFormatter pretty-prints XML in process.
type EtreeFormatter struct {
	// Spaces is the indent width. Zero means 2.
	Spaces int
}

// Format re-serializes the body with indentation.
func (f *EtreeFormatter) Format(body string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return "", err
	}
	spaces := f.Spaces
	if spaces == 0 {
		spaces = 2
	}
	doc.Indent(spaces)
	return doc.WriteToString()
}

// CommandFormatter pipes XML through an external pretty-printer.
type CommandFormatter struct {
	Name string
	Args []string
}

// NewXMLLintFormatter formats through xmllint, the tool the Axis examples
// document for this purpose.
func NewXMLLintFormatter() *CommandFormatter {
	return &CommandFormatter{Name: "xmllint", Args: []string{"--format", "-"}}
}

// Available reports whether the external tool can be found on PATH.
func (f *CommandFormatter) Available() bool {
	_, err := exec.LookPath(f.Name)
	return err == nil
}

// Format runs the tool with the body on stdin and returns its stdout.
func (f *CommandFormatter) Format(body string) (string, error) {
	cmd := exec.Command(f.Name, f.Args...)
	cmd.Stdin = strings.NewReader(body)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	return out.String(), nil
}
