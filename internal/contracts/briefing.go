package contracts

import "time"

// Provider display names recorded in a SourceRegistry
const (
	SourceAlphaVantage = "Alpha Vantage"
	SourceNewsAPI      = "NewsAPI"
	SourceGoogleNews   = "Google News"
	SourceGemini       = "Gemini"
)

// MaxBriefingArticles caps Briefing.News
const MaxBriefingArticles = 10

// SourceRegistry is an insertion-ordered set of contributing provider names.
// Not safe for concurrent use; each briefing owns its own.
type SourceRegistry struct {
	names []string
}

// Add records name once, keeping first-insertion order
func (s *SourceRegistry) Add(name string) {
	if name == "" || s.Has(name) {
		return
	}
	s.names = append(s.names, name)
}

// Has reports whether name was recorded
func (s *SourceRegistry) Has(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns a copy of the recorded names
func (s *SourceRegistry) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// StageStatus is the tagged outcome of one cascade stage
type StageStatus string

const (
	StageOK      StageStatus = "ok"      // provider returned at least one article
	StageEmpty   StageStatus = "empty"   // provider answered with nothing usable
	StageFailed  StageStatus = "failed"  // provider error, absorbed
	StageSkipped StageStatus = "skipped" // stage not entered
)

// StageOutcome records what one cascade stage did
type StageOutcome struct {
	Stage    string      `json:"stage"`
	Mode     NewsMode    `json:"mode"`
	Provider string      `json:"provider"`
	Status   StageStatus `json:"status"`
	Fetched  int         `json:"fetched"`
	Added    int         `json:"added"`
	Error    string      `json:"error,omitempty"`

	Err error `json:"-"`
}

// Insight statuses
const (
	InsightsOK          = "ok"
	InsightsDisabled    = "disabled"
	InsightsUnavailable = "unavailable"
)

// KeyMetrics are the quote facts surfaced beside the narrative
type KeyMetrics struct {
	PriceMovement  string  `json:"price_movement"` // positive | negative
	VolumeMillions float64 `json:"volume"`
	Volatility     float64 `json:"volatility"` // day range percent
}

// Insights is the narrative bundle of a briefing
type Insights struct {
	Status        string     `json:"status"`
	Summary       string     `json:"summary,omitempty"`
	Company       string     `json:"company"`
	Symbol        string     `json:"symbol"`
	Price         float64    `json:"price"`
	ChangePercent string     `json:"change_percent"`
	Timestamp     time.Time  `json:"timestamp"`
	NewsCount     int        `json:"news_count"`
	KeyMetrics    KeyMetrics `json:"key_metrics"`
	Error         string     `json:"error,omitempty"`
}

// Briefing is the root output of one briefing request
type Briefing struct {
	ID          string             `json:"id"`
	Company     string             `json:"company"`
	Ticker      string             `json:"ticker"`
	GeneratedAt time.Time          `json:"generated_at"`
	Performance *PerformanceRecord `json:"performance"`
	News        []Article          `json:"news"`
	Sources     []string           `json:"sources"`
	Insights    *Insights          `json:"insights,omitempty"`
	Cascade     []StageOutcome     `json:"cascade"`
}
