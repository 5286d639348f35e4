package enrich

import (
	"time"
)

// State is the position of a row in the per-row state machine.
type State string

const (
	StatePending   State = "pending"
	StateResolving State = "resolving"
	StateDetailing State = "detailing"
	StateMerging   State = "merging"
	StatePersisted State = "persisted"
	StateSkipped   State = "skipped"
)

// Skip reasons besides the listing error kinds.
const (
	ReasonNoName    = "no_name"
	ReasonNoData    = "no_data"
	ReasonCancelled = "cancelled"
)

// Outcome is the result of one row.
type Outcome struct {
	Row           int    `yaml:"row"`
	Product       string `yaml:"product"`
	Brand         string `yaml:"brand,omitempty"`
	State         State  `yaml:"state"`
	SkippedAt     State  `yaml:"skipped_at,omitempty"`
	Reason        string `yaml:"reason,omitempty"`
	Identifier    string `yaml:"identifier,omitempty"`
	Domain        string `yaml:"domain,omitempty"`
	ImagesFound   int    `yaml:"images_found,omitempty"`
	ImagesAdded   int    `yaml:"images_added,omitempty"`
	MainImageSet  bool   `yaml:"main_image_set,omitempty"`
	NameLocalized bool   `yaml:"name_localized,omitempty"`
	Error         string `yaml:"error,omitempty"`
}

func (o Outcome) skip(reason string, err error) Outcome {
	o.SkippedAt = o.State
	o.State = StateSkipped
	o.Reason = reason
	o.Error = errorText(err)
	return o
}

// Summary aggregates a run.
type Summary struct {
	RunID          string         `yaml:"run_id"`
	StartedAt      time.Time      `yaml:"started_at"`
	FinishedAt     time.Time      `yaml:"finished_at"`
	Rows           int            `yaml:"rows"`
	Processed      int            `yaml:"processed"`
	Persisted      int            `yaml:"persisted"`
	Skipped        int            `yaml:"skipped"`
	Checkpoints    int            `yaml:"checkpoints"`
	ImagesAdded    int            `yaml:"images_added"`
	MainImagesSet  int            `yaml:"main_images_set"`
	NamesLocalized int            `yaml:"names_localized"`
	SkipReasons    map[string]int `yaml:"skip_reasons,omitempty"`
	Cancelled      bool           `yaml:"cancelled,omitempty"`
	Outcomes       []Outcome      `yaml:"outcomes"`
}

func newSummary(runID string) Summary {
	return Summary{
		RunID:       runID,
		StartedAt:   time.Now(),
		SkipReasons: make(map[string]int),
	}
}

func (s *Summary) add(o Outcome) {
	s.Processed++
	s.Outcomes = append(s.Outcomes, o)
	switch o.State {
	case StatePersisted:
		s.Persisted++
		s.ImagesAdded += o.ImagesAdded
		if o.MainImageSet {
			s.MainImagesSet++
		}
		if o.NameLocalized {
			s.NamesLocalized++
		}
	case StateSkipped:
		s.Skipped++
		s.SkipReasons[o.Reason]++
	}
}

func (s *Summary) finish() {
	s.FinishedAt = time.Now()
}
