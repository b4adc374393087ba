// Package report renders table profiles for people and machines.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// ErrNoProfile is returned when asked to render a nil profile.
var ErrNoProfile = errors.New("no profile to render")

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
)

// Formats lists the supported renderings in display order.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatHTML}

// ParseFormat accepts a format name case-insensitively; "md" and "yml" are aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, Formats)
}

// Render writes p to w in the requested format.
func Render(w io.Writer, p *quality.TableProfile, f Format) error {
	if p == nil {
		return ErrNoProfile
	}
	var (
		b   []byte
		err error
	)
	switch f {
	case FormatText:
		b = []byte(Text(p))
	case FormatMarkdown:
		b = []byte(Markdown(p))
	case FormatJSON:
		b, err = JSON(p)
	case FormatYAML:
		b, err = YAML(p)
	case FormatHTML:
		var s string
		s, err = HTML(p)
		b = []byte(s)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

var printer = message.NewPrinter(language.English)

// count formats n with thousands separators.
func count(n int) string { return printer.Sprintf("%d", n) }

func optFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'g', 6, 64)
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func pct(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) + "%" }

func timestamp(p *quality.TableProfile) string {
	if p.GeneratedAt.IsZero() {
		return "-"
	}
	return p.GeneratedAt.Format("2006-01-02T15:04:05Z07:00")
}

func reasonLine(r quality.Reason) string {
	if r.Column == "" {
		return r.Detail
	}
	return r.Column + ": " + r.Detail
}
