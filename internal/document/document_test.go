package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF собирает минимальный PDF с pages пустыми страницами.
func buildPDF(pages int) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, pages+2)

	buf.WriteString("%PDF-1.4\n")

	writeObj := func(id int, body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", id, body)
	}

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		writeObj(i+3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

type fakeFetcher struct {
	data  []byte
	err   error
	block chan struct{}
}

func (f *fakeFetcher) Download(ctx context.Context, _ string) ([]byte, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return f.data, f.err
}

type sink struct {
	mu      sync.Mutex
	total   int
	message string
	calls   int
}

func (s *sink) DocumentLoaded(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
	s.calls++
}

func (s *sink) DocumentLoadFailed(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.calls++
}

func TestCountPages(t *testing.T) {
	n, err := CountPages(buildPDF(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = CountPages([]byte("not a pdf"))
	assert.Error(t, err)

	_, err = CountPages(nil)
	assert.Error(t, err)
}

func TestLoader_Download(t *testing.T) {
	loader := NewLoader(&fakeFetcher{data: buildPDF(3)}, nil)
	s := &sink{}

	job := loader.Load(context.Background(), Source{URL: "http://backend/pdfs/a.pdf"}, s)
	<-job.Done()

	assert.Equal(t, 3, s.total)
	assert.Equal(t, 1, s.calls)
	assert.Empty(t, s.message)
}

func TestLoader_LocalFileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(2), 0o600))

	loader := NewLoader(&fakeFetcher{err: errors.New("must not be called")}, nil)
	s := &sink{}

	job := loader.Load(context.Background(), Source{URL: "http://backend/pdfs/a.pdf", Path: path}, s)
	<-job.Done()

	assert.Equal(t, 2, s.total)
}

func TestLoader_Failure(t *testing.T) {
	loader := NewLoader(&fakeFetcher{err: errors.New("status 404")}, nil)
	s := &sink{}

	job := loader.Load(context.Background(), Source{URL: "x.pdf"}, s)
	<-job.Done()

	assert.Equal(t, "Error loading PDF: status 404", s.message)
	assert.Equal(t, 0, s.total)
}

func TestLoader_NoSource(t *testing.T) {
	_, err := NewLoader(nil, nil).Pages(context.Background(), Source{URL: "x.pdf"})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestLoader_CancelSuppressesSink(t *testing.T) {
	fetcher := &fakeFetcher{data: buildPDF(1), block: make(chan struct{})}
	loader := NewLoader(fetcher, nil)
	s := &sink{}

	job := loader.Load(context.Background(), Source{URL: "a.pdf"}, s)
	job.Cancel()

	select {
	case <-job.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("load did not stop after cancel")
	}

	assert.Equal(t, 0, s.calls)
}
