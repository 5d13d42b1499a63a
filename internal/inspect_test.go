package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateFixtureFile(t *testing.T, path string, format Format, w, h int, target int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = Generate(testRequest(format, w, h, target), f)
	require.NoError(t, err)
}

func TestInspectDir(t *testing.T) {
	dir := t.TempDir()

	generateFixtureFile(t, filepath.Join(dir, "a.jpg"), FormatJPEG, 100, 100, 200*1000)
	generateFixtureFile(t, filepath.Join(dir, "b.jpg"), FormatJPEG, 64, 64, 50*1000)
	generateFixtureFile(t, filepath.Join(dir, "c.png"), FormatPNG, 32, 32, 10*1000)
	generateFixtureFile(t, filepath.Join(dir, "nested", "d.gif"), FormatGIF, 16, 16, 8*1000)

	// Not fixtures: unknown extension at the top, session records below.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	sessionDir := filepath.Join(dir, "sessions", "2025-01-01-000000")
	require.NoError(t, os.MkdirAll(sessionDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sessionDir, "manifest.jsonl"), []byte("{}\n"), 0644))

	// A fixture-extension file that is not a valid image.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0644))

	report, err := InspectDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalFiles)
	assert.Equal(t, int64(200000+50000+10000+8000), report.TotalBytes)

	require.Contains(t, report.Formats, "jpeg")
	assert.Equal(t, 2, report.Formats["jpeg"].Count)
	assert.Equal(t, int64(250000), report.Formats["jpeg"].TotalBytes)
	assert.Equal(t, 1, report.Formats["png"].Count)
	assert.Equal(t, 1, report.Formats["gif"].Count)

	require.NotNil(t, report.Largest)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), report.Largest.Path)
	assert.Equal(t, int64(200000), report.Largest.Size)
	assert.Equal(t, 100, report.Largest.Width)
	assert.Equal(t, 100, report.Largest.Height)

	require.Len(t, report.Invalid, 1)
	assert.Equal(t, filepath.Join(dir, "broken.png"), report.Invalid[0].Path)

	assert.Equal(t, 1, report.Skipped)
}

func TestInspectDir_ProbesEveryHeaderShape(t *testing.T) {
	dir := t.TempDir()
	generateFixtureFile(t, filepath.Join(dir, "v.svg"), FormatSVG, 640, 480, 4096)
	generateFixtureFile(t, filepath.Join(dir, "t.tiff"), FormatTIFF, 20, 20, 64*1024)
	generateFixtureFile(t, filepath.Join(dir, "w.webp"), FormatWebP, 24, 18, 32*1024)
	generateFixtureFile(t, filepath.Join(dir, "b.bmp"), FormatBMP, 12, 12, 16*1024)

	report, err := InspectDir(dir)
	require.NoError(t, err)
	require.Equal(t, 4, report.TotalFiles)
	assert.Empty(t, report.Invalid)

	for _, name := range []string{"svg", "tiff", "webp", "bmp"} {
		require.Contains(t, report.Formats, name)
		assert.Equal(t, 1, report.Formats[name].Count, name)
	}

	// Largest by byte size is the 64 KiB tiff.
	require.NotNil(t, report.Largest)
	assert.Equal(t, "tiff", report.Largest.Format)
	assert.Equal(t, 20, report.Largest.Width)
}

func TestInspectDir_MissingDirectory(t *testing.T) {
	_, err := InspectDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestFixtureFormat(t *testing.T) {
	f, ok := fixtureFormat("out/a.jpg")
	require.True(t, ok)
	assert.Equal(t, FormatJPEG, f)

	_, ok = fixtureFormat("out/readme.txt")
	assert.False(t, ok)
	_, ok = fixtureFormat("out/no-extension")
	assert.False(t, ok)
}

func TestParseSVGDimensions(t *testing.T) {
	w, h := parseSVGDimensions(`<svg width="640" height="480" xmlns="http://www.w3.org/2000/svg">`)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	w, h = parseSVGDimensions(`<svg xmlns="http://www.w3.org/2000/svg">`)
	assert.Zero(t, w)
	assert.Zero(t, h)
}
