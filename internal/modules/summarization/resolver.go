package summarization

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"go.uber.org/zap"
)

const (
	defaultDownloadTimeout = 30 * time.Second
	maxDocumentBytes       = 32 << 20
)

type attachmentKind int

const (
	kindImage attachmentKind = iota
	kindPDF
	kindDOCX
	kindUnsupported
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".bmp": {}, ".tiff": {}, ".tif": {}, ".avif": {}, ".heif": {},
}

// Resolver classifies attachment URLs and turns them into per-handle
// summaries. Images go to the vision endpoint; PDF and DOCX text is
// extracted locally without involving the AI provider.
type Resolver struct {
	provider *Provider
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
}

func NewResolver(provider *Provider, timeout time.Duration, logger *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = defaultDownloadTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		provider: provider,
		client:   &http.Client{},
		timeout:  timeout,
		logger:   logger,
	}
}

// ProcessDocuments summarizes a batch of attachments. Failures are isolated
// per handle as "Error: <message>" entries; the batch never aborts.
func (r *Resolver) ProcessDocuments(ctx context.Context, items []DocumentInputItem) DocumentSummaryResponse {
	var out DocumentSummaryResponse
	if len(items) == 0 {
		out.Documents = []DocumentSummaryItem{}
		return out
	}

	texts := map[string]string{}
	var imageHandles, imageURLs []string

	for _, item := range items {
		switch classifyURL(item.URL) {
		case kindImage:
			imageHandles = append(imageHandles, item.Handle)
			imageURLs = append(imageURLs, item.URL)
		case kindPDF, kindDOCX:
			text, err := r.extractDocument(ctx, item.URL)
			if err != nil {
				r.logger.Warn("document extraction failed",
					zap.String("handle", item.Handle), zap.String("url", item.URL), zap.Error(err))
				out.Documents = append(out.Documents, errorItem(item.Handle, err))
				continue
			}
			texts[item.Handle] = text
		default:
			err := fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Ext(item.URL))
			out.Documents = append(out.Documents, errorItem(item.Handle, err))
		}
	}

	if len(texts) > 0 {
		var resp DocumentSummaryResponse
		if err := r.provider.Request(ctx, documentBatchRequest{texts: texts}, &resp); err != nil {
			r.logger.Warn("document batch summarization failed", zap.Error(err))
			for handle := range texts {
				out.Documents = append(out.Documents, errorItem(handle, err))
			}
		} else {
			out.Documents = append(out.Documents, resp.Documents...)
			out.Provider = resp.Provider
		}
	}

	if len(imageHandles) > 0 {
		if !r.provider.Config().SupportsImages {
			err := fmt.Errorf("provider %s does not support images", r.provider.Config().Handle)
			for _, handle := range imageHandles {
				out.Documents = append(out.Documents, errorItem(handle, err))
			}
		} else {
			req := imageBatchRequest{handles: imageHandles, urls: imageURLs}
			var resp DocumentSummaryResponse
			if err := r.provider.Request(ctx, req, &resp); err != nil {
				r.logger.Warn("image batch summarization failed", zap.Error(err))
				for _, handle := range imageHandles {
					out.Documents = append(out.Documents, errorItem(handle, err))
				}
			} else {
				out.Documents = append(out.Documents, resp.Documents...)
				out.Provider = resp.Provider
			}
		}
	}

	sort.Slice(out.Documents, func(i, j int) bool {
		return out.Documents[i].Handle < out.Documents[j].Handle
	})
	return out
}

// ExtractText downloads the document at url and extracts its plain text.
func (r *Resolver) ExtractText(ctx context.Context, url string) (string, error) {
	return r.extractDocument(ctx, url)
}

func (r *Resolver) extractDocument(ctx context.Context, url string) (string, error) {
	data, err := r.download(ctx, url)
	if err != nil {
		return "", err
	}
	switch classifyURL(url) {
	case kindPDF:
		return extractPDFText(data)
	case kindDOCX:
		return extractDOCXText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Ext(url))
	}
}

func (r *Resolver) download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Timeout: isTimeoutError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, &DownloadError{URL: url, Timeout: isTimeoutError(err), Err: err}
	}
	return data, nil
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// extractPDFText pulls plain text page by page.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var full strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		full.WriteString(text)
		full.WriteString("\n")
	}

	result := strings.TrimSpace(full.String())
	if result == "" {
		return "", errors.New("pdf contains no extractable text")
	}
	return result, nil
}

// extractDOCXText walks word/document.xml paragraph by paragraph.
func extractDOCXText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return "", errors.New("docx has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open docx document: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var full strings.Builder
	var paragraph strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode docx xml: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if paragraph.Len() > 0 {
					full.WriteString(paragraph.String())
					full.WriteString("\n")
					paragraph.Reset()
				}
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	if paragraph.Len() > 0 {
		full.WriteString(paragraph.String())
		full.WriteString("\n")
	}

	result := strings.TrimSpace(full.String())
	if result == "" {
		return "", errors.New("docx contains no extractable text")
	}
	return result, nil
}

func classifyURL(url string) attachmentKind {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	ext := strings.ToLower(path.Ext(url))
	if _, ok := imageExtensions[ext]; ok {
		return kindImage
	}
	switch ext {
	case ".pdf":
		return kindPDF
	case ".docx":
		return kindDOCX
	default:
		return kindUnsupported
	}
}

func errorItem(handle string, err error) DocumentSummaryItem {
	return DocumentSummaryItem{Handle: handle, Summary: "Error: " + err.Error()}
}
