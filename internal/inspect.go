package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chai2010/webp"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// FixtureInfo describes one decodable fixture file.
type FixtureInfo struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size_bytes"`
}

// FormatStats aggregates the fixtures of one format.
type FormatStats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}

// InvalidFixture is a file with a fixture extension that fails to decode.
type InvalidFixture struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// InspectReport summarizes a directory of generated fixtures: per-format
// counts and byte totals, the largest fixture, and files that fail to
// decode. Files without a fixture extension are counted as skipped.
type InspectReport struct {
	Dir        string                  `json:"dir"`
	TotalFiles int                     `json:"total_files"`
	TotalBytes int64                   `json:"total_bytes"`
	Formats    map[string]*FormatStats `json:"formats"`
	Largest    *FixtureInfo            `json:"largest,omitempty"`
	Invalid    []InvalidFixture        `json:"invalid,omitempty"`
	Skipped    int                     `json:"skipped"`
}

const (
	// headerProbeSize bounds how much of a file the webp and svg probes
	// read. Decoders that take a reader only consume the header region on
	// their own.
	headerProbeSize = 64 * 1024

	// avifProbeSize bounds the avif probe. The avif decoder buffers its
	// whole reader, so it gets a prefix large enough for any base image a
	// border+fill pattern produces; the full (padded) file is only read
	// when the base image overruns the prefix.
	avifProbeSize = 8 << 20
)

// InspectDir walks dir recursively and probes every file with a fixture
// extension. Session records under sessions/ are not fixtures and are not
// descended into. Only headers are read, so inspecting a directory of
// multi-gigabyte fixtures stays cheap.
func InspectDir(dir string) (*InspectReport, error) {
	report := &InspectReport{
		Dir:     dir,
		Formats: make(map[string]*FormatStats),
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "sessions" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		format, ok := fixtureFormat(path)
		if !ok {
			report.Skipped++
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		info, probeErr := probeFixture(path, format)
		if probeErr != nil {
			report.Invalid = append(report.Invalid, InvalidFixture{
				Path:  path,
				Error: probeErr.Error(),
			})
			return nil
		}
		info.Size = fi.Size()

		report.TotalFiles++
		report.TotalBytes += info.Size
		stats := report.Formats[info.Format]
		if stats == nil {
			stats = &FormatStats{}
			report.Formats[info.Format] = stats
		}
		stats.Count++
		stats.TotalBytes += info.Size
		if report.Largest == nil || info.Size > report.Largest.Size {
			report.Largest = info
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// fixtureFormat maps a file's extension to a fixture format; files with
// other extensions (session logs, stray readmes) are not fixtures.
func fixtureFormat(path string) (Format, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// probeFixture decodes just enough of the file to recover its dimensions,
// verifying the encoded prefix is structurally valid in its format. Zero
// padding after the image is never reached by any header decode.
func probeFixture(path string, format Format) (*FixtureInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &FixtureInfo{Path: path, Format: string(format)}

	switch format {
	case FormatJPEG:
		cfg, err := jpeg.DecodeConfig(f)
		if err != nil {
			return nil, err
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	case FormatPNG:
		cfg, err := png.DecodeConfig(f)
		if err != nil {
			return nil, err
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	case FormatGIF:
		cfg, err := gif.DecodeConfig(f)
		if err != nil {
			return nil, err
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	case FormatTIFF:
		// The file is an io.ReaderAt, so the decoder seeks to the IFD
		// instead of buffering the (padded) file.
		cfg, err := tiff.DecodeConfig(f)
		if err != nil {
			return nil, err
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	case FormatBMP:
		cfg, err := bmp.DecodeConfig(f)
		if err != nil {
			return nil, err
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	case FormatAVIF:
		head, err := readProbe(f, avifProbeSize)
		if err != nil {
			return nil, err
		}
		cfg, err := avif.DecodeConfig(bytes.NewReader(head))
		if err != nil {
			if _, serr := f.Seek(0, io.SeekStart); serr != nil {
				return nil, serr
			}
			cfg, err = avif.DecodeConfig(f)
			if err != nil {
				return nil, err
			}
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	case FormatWebP:
		head, err := readProbe(f, headerProbeSize)
		if err != nil {
			return nil, err
		}
		w, h, _, err := webp.GetInfo(head)
		if err != nil {
			return nil, err
		}
		info.Width, info.Height = w, h
	case FormatSVG:
		head, err := readProbe(f, headerProbeSize)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(string(head), "<svg") {
			return nil, fmt.Errorf("no <svg> root element")
		}
		info.Width, info.Height = parseSVGDimensions(string(head))
	default:
		return nil, fmt.Errorf("no prober for format %q", format)
	}

	return info, nil
}

func readProbe(f *os.File, limit int) ([]byte, error) {
	head := make([]byte, limit)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// parseSVGDimensions pulls integer width/height attributes out of the svg
// element. Missing or non-integer attributes yield zeros, which is still a
// valid fixture.
func parseSVGDimensions(head string) (int, int) {
	attr := func(name string) int {
		idx := strings.Index(head, name+`="`)
		if idx < 0 {
			return 0
		}
		rest := head[idx+len(name)+2:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return 0
		}
		v := 0
		if _, err := fmt.Sscanf(rest[:end], "%d", &v); err != nil {
			return 0
		}
		return v
	}
	return attr("width"), attr("height")
}

// DisplayReport prints the report as an aligned table or as indented JSON.
func DisplayReport(report *InspectReport, format string) error {
	if format == "json" {
		return displayReportJSON(report)
	}
	return displayReportTable(report)
}

func displayReportJSON(report *InspectReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func displayReportTable(report *InspectReport) error {
	fmt.Printf("=== Fixture inventory: %s ===\n\n", report.Dir)
	fmt.Printf("%d fixtures, %s total\n", report.TotalFiles,
		humanize.IBytes(uint64(report.TotalBytes)))

	if len(report.Formats) > 0 {
		fmt.Printf("\nFormats:\n")
		names := make([]string, 0, len(report.Formats))
		for name := range report.Formats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			stats := report.Formats[name]
			fmt.Printf("  %-5s %4d files  %s\n", name, stats.Count,
				humanize.IBytes(uint64(stats.TotalBytes)))
		}
	}

	if report.Largest != nil {
		fmt.Printf("\nLargest: %s (%s, %dx%d %s)\n", report.Largest.Path,
			humanize.IBytes(uint64(report.Largest.Size)),
			report.Largest.Width, report.Largest.Height, report.Largest.Format)
	}

	if len(report.Invalid) > 0 {
		fmt.Printf("\nInvalid (%d):\n", len(report.Invalid))
		for _, inv := range report.Invalid {
			fmt.Printf("  %s: %s\n", inv.Path, inv.Error)
		}
	}

	if report.Skipped > 0 {
		fmt.Printf("\nSkipped %d non-fixture files\n", report.Skipped)
	}
	return nil
}
