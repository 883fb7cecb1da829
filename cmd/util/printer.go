package util

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/moniker"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"strings"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// Printer renders command results as colored text or as json/yaml documents
type Printer struct {
	Format string // text, json or yaml
	Out    io.Writer
	Err    io.Writer
}

// NewPrinter returns a printer writing to stdout and stderr in the configured output format
func NewPrinter() *Printer {
	return &Printer{
		Format: Config().Output,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

// Data prints v. In text mode every line of text is printed instead.
func (p *Printer) Data(v any, text []string) error {
	switch p.Format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.Out, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = p.Out.Write(b)
		return err
	default:
		for _, line := range text {
			if _, err := fmt.Fprintln(p.Out, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// Success prints a success message with a checkmark
func (p *Printer) Success(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	if p.Format != "text" {
		return p.Data(moniker.Result{Status: 200, Message: msg}, nil)
	}
	_, err := green.Fprintf(p.Out, "✓ %s\n", msg)
	return err
}

// Warning prints a warning to the error writer
func (p *Printer) Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	_, _ = yellow.Fprintf(p.Err, "⚠️  %s\n", strings.TrimSuffix(msg, "\n"))
}

// Fail renders err as a structured result and returns a short error for cobra.
// In text mode the message goes to the error writer, otherwise the result document goes to Out.
func (p *Printer) Fail(err error) error {
	res := moniker.ToResult(err)
	if p.Format != "text" {
		if derr := p.Data(res, nil); derr != nil {
			return derr
		}
	} else {
		_, _ = red.Fprintf(p.Err, "error (%d)\n", res.Status)
		_, _ = fmt.Fprintf(p.Err, "%s\n", res.Message)
	}
	return fmt.Errorf("status %d", res.Status)
}
