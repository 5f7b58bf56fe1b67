package rpmtool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sassoftware/go-rpmutils"
	"github.com/sirupsen/logrus"
)

// Info is the metadata extracted from an .rpm file's header.
type Info struct {
	Name        string
	Version     string
	Release     string
	Summary     string
	License     string
	Vendor      string
	URL         string
	Description string
}

// Inspector extracts metadata from a package file. Implementations must not
// require network access; failures degrade the record to its defaults.
type Inspector interface {
	Inspect(ctx context.Context, path string) (*Info, error)
}

const (
	inspectTimeout = 30 * time.Second

	// queryFormat lists the header fields in the order parseQueryOutput
	// expects them. DESCRIPTION comes last because it spans lines.
	queryFormat = `%{NAME}\n%{VERSION}\n%{RELEASE}\n%{SUMMARY}\n%{LICENSE}\n%{VENDOR}\n%{URL}\n%{DESCRIPTION}`

	// nonePlaceholder is what rpm prints for absent header fields.
	nonePlaceholder = "(none)"
)

// NewInspector returns the best available inspector: the rpm binary when
// installed, otherwise a native header reader.
func NewInspector() Inspector {
	if _, err := exec.LookPath("rpm"); err == nil {
		return &binaryInspector{}
	}
	logrus.Debug("rpm binary not found, using native header inspection")
	return &nativeInspector{}
}

// binaryInspector shells out to `rpm -qip`.
type binaryInspector struct{}

func (b *binaryInspector) Inspect(ctx context.Context, path string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "rpm", "-qip", path, "--queryformat", queryFormat)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("rpm -qip %s: %w", path, err)
	}
	return parseQueryOutput(string(out)), nil
}

// parseQueryOutput splits the queryformat output back into fields,
// normalizing the "(none)" placeholder to an empty string.
func parseQueryOutput(out string) *Info {
	lines := strings.Split(out, "\n")
	field := func(i int) string {
		if i >= len(lines) {
			return ""
		}
		if lines[i] == nonePlaceholder {
			return ""
		}
		return lines[i]
	}

	info := &Info{
		Name:    field(0),
		Version: field(1),
		Release: field(2),
		Summary: field(3),
		License: field(4),
		Vendor:  field(5),
		URL:     field(6),
	}
	if len(lines) > 7 {
		info.Description = strings.Join(lines[7:], "\n")
	}
	return info
}

// nativeInspector reads the header directly with go-rpmutils.
type nativeInspector struct{}

func (n *nativeInspector) Inspect(_ context.Context, path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("read rpm header of %s: %w", path, err)
	}

	return &Info{
		Name:        stringTag(rpm, rpmutils.NAME),
		Version:     stringTag(rpm, rpmutils.VERSION),
		Release:     stringTag(rpm, rpmutils.RELEASE),
		Summary:     stringTag(rpm, rpmutils.SUMMARY),
		License:     stringTag(rpm, rpmutils.LICENSE),
		Vendor:      stringTag(rpm, rpmutils.VENDOR),
		URL:         stringTag(rpm, rpmutils.URL),
		Description: stringTag(rpm, rpmutils.DESCRIPTION),
	}, nil
}

// stringTag safely gets a string tag from an RPM header.
func stringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
