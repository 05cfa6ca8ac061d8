package summarization

import (
	"errors"
	"fmt"
)

// AIRequest supplies the prompt for a backend call. Requests that carry
// non-text content report VisionSupport true and are routed to the
// multimodal path.
type AIRequest interface {
	Prompt() string
	VisionSupport() bool
}

// TextRequest is a plain text AIRequest.
type TextRequest struct {
	Text string
}

func (r TextRequest) Prompt() string { return r.Text }

func (r TextRequest) VisionSupport() bool { return false }

// VisionRequest is an AIRequest with image URLs attached.
type VisionRequest struct {
	Text      string
	ImageURLs []string
}

func (r VisionRequest) Prompt() string { return r.Text }

func (r VisionRequest) VisionSupport() bool { return true }

func (r VisionRequest) VisionURLs() []string { return r.ImageURLs }

// ContentPart is one non-text element of a multimodal request.
type ContentPart struct {
	URL       string
	MediaType string
}

// DocumentInputItem names one attachment to summarize.
type DocumentInputItem struct {
	Handle string `json:"handle"`
	URL    string `json:"url"`
}

// ErrUnsupportedFormat marks attachment URLs whose extension is neither an
// image nor an extractable document type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DownloadError wraps a document download failure. Timeout distinguishes a
// deadline hit from other network errors.
type DownloadError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *DownloadError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("download timed out: %s", e.URL)
	}
	return fmt.Sprintf("download failed: %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
