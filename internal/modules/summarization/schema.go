package summarization

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is implemented by every structured response variant. The provider
// handle is stamped after a successful backend call so persisted summaries
// keep their lineage.
type Response interface {
	SetProvider(handle string)
}

// SummaryItem is a single generic summary block.
type SummaryItem struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Provider  string   `json:"provider"`
}

func (s *SummaryItem) SetProvider(handle string) { s.Provider = handle }

// PhaseStatus values used in ModuleEntry.
const (
	PhasePast     = "past"
	PhaseActive   = "active"
	PhaseUpcoming = "upcoming"
)

// ModuleEntry describes one participation module in a project summary.
type ModuleEntry struct {
	ModuleName     string   `json:"module_name"`
	Purpose        string   `json:"purpose"`
	MainSentiments []string `json:"main_sentiments"`
	PhaseStatus    string   `json:"phase_status"`
	Link           string   `json:"link"`
	FirstContent   string   `json:"first_content,omitempty"`
}

// ProjectSummaryStats is the stats block the model fills in from the export.
type ProjectSummaryStats struct {
	Participants  int `json:"participants"`
	Contributions int `json:"contributions"`
	Modules       int `json:"modules"`
}

// ProjectSummaryResponse is the structured result of a full project
// summarization.
type ProjectSummaryResponse struct {
	Title           string              `json:"title"`
	Stats           ProjectSummaryStats `json:"stats"`
	GeneralSummary  string              `json:"general_summary"`
	GeneralGoals    []string            `json:"general_goals"`
	PastSummary     string              `json:"past_summary"`
	PastModules     []ModuleEntry       `json:"past_modules"`
	CurrentSummary  string              `json:"current_summary"`
	CurrentModules  []ModuleEntry       `json:"current_modules"`
	UpcomingSummary string              `json:"upcoming_summary"`
	UpcomingModules []ModuleEntry       `json:"upcoming_modules"`
	Provider        string              `json:"provider"`
}

func (p *ProjectSummaryResponse) SetProvider(handle string) { p.Provider = handle }

// DocumentSummaryItem pairs a caller-assigned handle with the generated or
// extracted summary. The handle, not list position, correlates input and
// output.
type DocumentSummaryItem struct {
	Handle  string `json:"handle"`
	Summary string `json:"summary"`
}

// DocumentSummaryResponse is the structured result of a document batch.
type DocumentSummaryResponse struct {
	Documents []DocumentSummaryItem `json:"documents"`
	Provider  string                `json:"provider"`
}

func (d *DocumentSummaryResponse) SetProvider(handle string) { d.Provider = handle }

// unmarshalAIJSON tolerates markdown fences and prose around the JSON object
// models tend to emit.
func unmarshalAIJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON response from AI")
}
