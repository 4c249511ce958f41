package pdftext

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pdftext/pdftest"
)

func newTestExtractor(t *testing.T) (*Extractor, string) {
	t.Helper()
	dir := t.TempDir()
	return NewExtractor(Config{TempDir: dir}, nil), dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file should be removed")
}

func TestExtract_MultiPageInOrder(t *testing.T) {
	e, dir := newTestExtractor(t)
	doc := entity.SourceDocument{
		Filename: "report.pdf",
		Data:     pdftest.Build("Alice works at Acme.", "Founded in 2001."),
	}

	res, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)

	first := strings.Index(res.Text, "Alice works at Acme.")
	second := strings.Index(res.Text, "Founded in 2001.")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.NotContains(t, res.Text, "\f")
	assertDirEmpty(t, dir)
}

func TestExtract_EmptyPageContributesNothing(t *testing.T) {
	e, dir := newTestExtractor(t)
	doc := entity.SourceDocument{Filename: "blank.pdf", Data: pdftest.Build("", "Only text")}

	res, err := e.Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Only text")
	assertDirEmpty(t, dir)
}

func TestExtract_MalformedBytes(t *testing.T) {
	e, dir := newTestExtractor(t)
	doc := entity.SourceDocument{Filename: "broken.pdf", Data: []byte("this is not a pdf")}

	_, err := e.Extract(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentParse)
	assert.True(t, strings.HasPrefix(err.Error(), "document parse error: "), err.Error())
	assertDirEmpty(t, dir)
}

func TestExtract_RepairKeepsParseErrorAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	e := NewExtractor(Config{TempDir: dir, Repair: true}, newNopLogger())

	_, err := e.Extract(context.Background(), entity.SourceDocument{
		Filename: "garbage.pdf",
		Data:     []byte("%PDF-1.4\nnothing useful here\n%%EOF\n"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentParse)
	assertDirEmpty(t, dir)
}

func TestExtract_RepairLeavesValidPDFsAlone(t *testing.T) {
	dir := t.TempDir()
	e := NewExtractor(Config{TempDir: dir, Repair: true}, newNopLogger())

	res, err := e.Extract(context.Background(), entity.SourceDocument{Filename: "ok.pdf", Data: pdftest.Build("Hello")})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Hello")
	assertDirEmpty(t, dir)
}

func TestExtract_CanceledContext(t *testing.T) {
	e, _ := newTestExtractor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, entity.SourceDocument{Filename: "a.pdf", Data: pdftest.Build("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTempFile_RemovesOnError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	var seen string

	err := withTempFile(dir, []byte("data"), newNopLogger(), func(path string) error {
		seen = path
		b, rerr := os.ReadFile(path)
		require.NoError(t, rerr)
		assert.Equal(t, "data", string(b))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithTempFile_RemovesOnPanic(t *testing.T) {
	dir := t.TempDir()
	assert.Panics(t, func() {
		_ = withTempFile(dir, []byte("data"), newNopLogger(), func(string) error {
			panic("parser exploded")
		})
	})
	assertDirEmpty(t, dir)
}

func TestWithTempFile_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	var a, b string
	require.NoError(t, withTempFile(dir, nil, newNopLogger(), func(p string) error {
		a = p
		return withTempFile(dir, nil, newNopLogger(), func(q string) error {
			b = q
			return nil
		})
	}))
	assert.NotEqual(t, a, b)
}
