package summarization

import (
	"fmt"

	"github.com/liqd/a4-roots/internal/modules/export"
)

// collectDocumentAttachments walks every attachment URL in the export and
// assigns each a handle plus a source label pointing back at the content
// item it came from.
func collectDocumentAttachments(doc *export.Document) ([]DocumentInputItem, map[string]attachmentSource) {
	var items []DocumentInputItem
	sources := map[string]attachmentSource{}

	add := func(source, url string) {
		handle := fmt.Sprintf("doc_%d", len(items)+1)
		items = append(items, DocumentInputItem{Handle: handle, URL: url})
		sources[handle] = attachmentSource{Source: source, URL: url}
	}

	for _, url := range doc.Project.Attachments {
		add("project:"+doc.Project.Slug, url)
	}
	for _, idea := range doc.Ideas {
		for _, url := range idea.Attachments {
			add("idea:"+idea.ID, url)
		}
	}
	for _, topic := range doc.Topics {
		for _, url := range topic.Attachments {
			add("topic:"+topic.ID, url)
		}
	}
	for _, chapter := range doc.Documents {
		for _, paragraph := range chapter.Paragraphs {
			for _, url := range paragraph.Attachments {
				add("paragraph:"+paragraph.ID, url)
			}
		}
	}
	for _, event := range doc.OfflineEvents {
		for _, url := range event.Attachments {
			add("offline_event:"+event.ID, url)
		}
	}

	return items, sources
}

type attachmentSource struct {
	Source string
	URL    string
}

// integrateDocumentSummaries folds the per-handle summaries back into the
// export so they become part of the summarization input text.
func integrateDocumentSummaries(doc *export.Document, summaries []DocumentSummaryItem, sources map[string]attachmentSource) {
	for _, item := range summaries {
		src := sources[item.Handle]
		doc.DocumentSummaries = append(doc.DocumentSummaries, export.DocumentSummary{
			Handle:  item.Handle,
			Source:  src.Source,
			URL:     src.URL,
			Summary: item.Summary,
		})
	}
}
