package summarization

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("word/document.xml")
	require.NoError(t, err)

	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, text := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(text)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	_, err = entry.Write(doc.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func buildPDF(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPDFText(t *testing.T) {
	data := buildPDF(t, "Budget proposal for the park")
	text, err := extractPDFText(data)
	require.NoError(t, err)
	assert.Contains(t, text, "Budget proposal for the park")

	// extraction of the same bytes is deterministic
	again, err := extractPDFText(data)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestExtractPDFTextNotAPDF(t *testing.T) {
	_, err := extractPDFText([]byte("plain text"))
	require.Error(t, err)
}

func TestExtractDOCXText(t *testing.T) {
	data := buildDOCX(t, "Hello", "World")
	text, err := extractDOCXText(data)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text)

	// extraction of the same bytes is deterministic
	again, err := extractDOCXText(data)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestExtractDOCXTextEmpty(t *testing.T) {
	data := buildDOCX(t)
	_, err := extractDOCXText(data)
	require.Error(t, err)
}

func TestExtractDOCXTextNotAZip(t *testing.T) {
	_, err := extractDOCXText([]byte("plain text"))
	require.Error(t, err)
}

func TestClassifyURL(t *testing.T) {
	cases := []struct {
		url  string
		kind attachmentKind
	}{
		{"https://example.org/photo.jpg", kindImage},
		{"https://example.org/photo.PNG", kindImage},
		{"https://example.org/scan.webp?token=abc", kindImage},
		{"https://example.org/report.pdf", kindPDF},
		{"https://example.org/report.pdf#page=2", kindPDF},
		{"https://example.org/minutes.docx", kindDOCX},
		{"https://example.org/minutes.docx?v=1#section", kindDOCX},
		{"https://example.org/notes.txt", kindUnsupported},
		{"https://example.org/archive.zip", kindUnsupported},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, classifyURL(tc.url), tc.url)
	}
}

// fakeBackend returns a canned completion for both request paths.
type fakeBackend struct {
	response string
	fail     error
}

func (f *fakeBackend) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	return f.response, nil
}

func (f *fakeBackend) completeMultimodal(ctx context.Context, systemPrompt, prompt string, parts []ContentPart) (string, error) {
	return f.complete(ctx, systemPrompt, prompt)
}

func newFakeProvider(response string, supportsImages bool) *Provider {
	return &Provider{
		cfg: ProviderConfig{
			Handle:         "fake",
			SupportsImages: supportsImages,
		},
		backend: &fakeBackend{response: response},
	}
}

func TestProcessDocumentsIsolatesFailures(t *testing.T) {
	docx := buildDOCX(t, "Meeting minutes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/minutes.docx":
			w.Write(docx)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	provider := newFakeProvider(`{"documents":[{"handle":"doc_1","summary":"minutes summary"}]}`, true)
	resolver := NewResolver(provider, time.Second, nil)

	items := []DocumentInputItem{
		{Handle: "doc_1", URL: srv.URL + "/minutes.docx"},
		{Handle: "doc_2", URL: "https://example.org/notes.txt"},
		{Handle: "doc_3", URL: srv.URL + "/gone.docx"},
	}
	result := resolver.ProcessDocuments(context.Background(), items)

	require.Len(t, result.Documents, 3)
	assert.Equal(t, "doc_1", result.Documents[0].Handle)
	assert.Equal(t, "minutes summary", result.Documents[0].Summary)
	assert.Equal(t, "doc_2", result.Documents[1].Handle)
	assert.Contains(t, result.Documents[1].Summary, "Error:")
	assert.Equal(t, "doc_3", result.Documents[2].Handle)
	assert.Contains(t, result.Documents[2].Summary, "Error:")
	assert.Equal(t, "fake", result.Provider)
}

func TestProcessDocumentsImagesUnsupported(t *testing.T) {
	provider := newFakeProvider("", false)
	resolver := NewResolver(provider, time.Second, nil)

	result := resolver.ProcessDocuments(context.Background(), []DocumentInputItem{
		{Handle: "doc_1", URL: "https://example.org/photo.png"},
	})

	require.Len(t, result.Documents, 1)
	assert.Contains(t, result.Documents[0].Summary, "does not support images")
}

func TestProcessDocumentsEmptyBatch(t *testing.T) {
	resolver := NewResolver(newFakeProvider("", true), time.Second, nil)
	result := resolver.ProcessDocuments(context.Background(), nil)
	assert.Empty(t, result.Documents)
	assert.NotNil(t, result.Documents)
}

func TestDownloadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	resolver := NewResolver(newFakeProvider("", true), 50*time.Millisecond, nil)
	_, err := resolver.ExtractText(context.Background(), srv.URL+"/slow.pdf")
	require.Error(t, err)

	var downloadErr *DownloadError
	require.True(t, errors.As(err, &downloadErr))
	assert.True(t, downloadErr.Timeout)
}

func TestExtractTextUnsupportedFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hi"))
	}))
	defer srv.Close()

	resolver := NewResolver(newFakeProvider("", true), time.Second, nil)
	_, err := resolver.ExtractText(context.Background(), srv.URL+"/notes.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
