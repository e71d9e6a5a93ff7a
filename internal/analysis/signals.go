package analysis

import "time"

// Repository holds the per-repo metadata the scorer consumes.
type Repository struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	IsFork      bool      `json:"is_fork"`
	PushedAt    time.Time `json:"pushed_at"`
}

// ProfileSignals is the normalized snapshot of a developer profile.
// The adapter is responsible for validation and aggregation; the scorer
// assumes counts are non-negative and timestamps are parsed.
//
// CollectedAt is the snapshot instant. All recency math is relative to it,
// so scoring the same signals twice yields bit-identical results.
type ProfileSignals struct {
	Username       string         `json:"username"`
	Followers      int            `json:"followers"`
	Following      int            `json:"following"`
	Repositories   []Repository   `json:"repositories"`
	Languages      map[string]int `json:"languages"`
	FocusAreas     []string       `json:"focus_areas"`
	RecentActivity int            `json:"recent_activity"`
	TotalStars     int            `json:"total_stars"`
	CollectedAt    time.Time      `json:"collected_at"`
}

// CategoryScores holds the six category sub-scores, each in [0, 1].
type CategoryScores struct {
	ActivityLevel float64 `json:"activity_level"`
	CodeQuality   float64 `json:"code_quality"`
	Collaboration float64 `json:"collaboration"`
	Consistency   float64 `json:"consistency"`
	Expertise     float64 `json:"expertise"`
	Impact        float64 `json:"impact"`
}

// RatingResult is the scorer output: a composite percentage, the rating
// band it falls into, a hiring recommendation, and the category breakdown.
type RatingResult struct {
	Score          int            `json:"score"`
	Rating         string         `json:"rating"`
	Recommendation string         `json:"recommendation"`
	Categories     CategoryScores `json:"category_scores"`
}
