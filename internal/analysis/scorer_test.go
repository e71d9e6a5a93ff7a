package analysis

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var snapshotTime = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

// repoSet builds n repositories, forks of them marked as forks, all pushed
// at the given time with stars spread evenly.
func repoSet(n, forks, totalStars int, pushedAt time.Time) []Repository {
	repos := make([]Repository, n)
	for i := range repos {
		repos[i] = Repository{
			Name:     fmt.Sprintf("repo-%d", i),
			Language: "Go",
			IsFork:   i < forks,
			PushedAt: pushedAt,
		}
		if n > 0 {
			repos[i].Stars = totalStars / n
		}
	}
	return repos
}

func strongProfile() ProfileSignals {
	repos := repoSet(20, 0, 300, snapshotTime.Add(-24*time.Hour))
	return ProfileSignals{
		Username:     "prolific-dev",
		Followers:    500,
		Following:    10,
		Repositories: repos,
		Languages: map[string]int{
			"Go":         6,
			"Python":     5,
			"TypeScript": 4,
			"Rust":       3,
			"JavaScript": 2,
		},
		FocusAreas:     []string{"web", "devops", "data"},
		RecentActivity: 10,
		TotalStars:     300,
		CollectedAt:    snapshotTime,
	}
}

func emptyProfile() ProfileSignals {
	return ProfileSignals{
		Username:    "ghost",
		Languages:   map[string]int{},
		CollectedAt: snapshotTime,
	}
}

func TestCategoryWeightsSumToOne(t *testing.T) {
	total := 0.0
	for _, w := range categoryWeights {
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-10, "category weights should sum to 1.0")
}

func TestActivityScore(t *testing.T) {
	tests := []struct {
		name     string
		repos    int
		recent   int
		expected float64
	}{
		{"no repos no activity", 0, 0, 0.0},
		{"half saturation", 10, 0, 0.5},
		{"repo count saturates at twenty", 30, 0, 1.0},
		{"recent activity bonus", 5, 10, 0.75},
		{"bonus is capped", 5, 100, 0.75},
		{"combined saturation clamps to one", 20, 10, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ProfileSignals{
				Repositories:   repoSet(tt.repos, 0, 0, snapshotTime),
				RecentActivity: tt.recent,
				CollectedAt:    snapshotTime,
			}
			assert.InDelta(t, tt.expected, activityScore(sig), 1e-9)
		})
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name      string
		languages map[string]int
		expected  float64
	}{
		{"no languages", map[string]int{}, 0.0},
		{
			"diverse popular stack",
			map[string]int{"Go": 3, "Python": 2, "TypeScript": 2, "Rust": 1, "JavaScript": 1},
			0.85, // full diversity plus capped popularity bonus
		},
		{
			"two languages one popular",
			map[string]int{"Go": 3, "COBOL": 1},
			0.38,
		},
		{
			"obscure languages only",
			map[string]int{"Brainfuck": 1, "Whitespace": 1},
			0.28,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ProfileSignals{Languages: tt.languages, CollectedAt: snapshotTime}
			assert.InDelta(t, tt.expected, qualityScore(sig), 1e-9)
		})
	}
}

func TestCollaborationScore(t *testing.T) {
	tests := []struct {
		name      string
		repos     int
		forks     int
		followers int
		following int
		expected  float64
	}{
		{"no repos floors the score", 0, 0, 100, 10, 0.0},
		{"all original with strong following", 10, 0, 100, 10, 1.0},
		{"half forks balanced social", 10, 5, 10, 20, 0.5},
		{"all forks no followers", 10, 10, 0, 5, 0.0},
		{"zero following drops social term", 10, 0, 100, 0, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ProfileSignals{
				Repositories: repoSet(tt.repos, tt.forks, 0, snapshotTime),
				Followers:    tt.followers,
				Following:    tt.following,
				CollectedAt:  snapshotTime,
			}
			assert.InDelta(t, tt.expected, collaborationScore(sig), 1e-9)
		})
	}
}

func TestConsistencyScore(t *testing.T) {
	fresh := snapshotTime.Add(-30 * 24 * time.Hour)
	stale := snapshotTime.Add(-400 * 24 * time.Hour)

	t.Run("no repos", func(t *testing.T) {
		sig := ProfileSignals{CollectedAt: snapshotTime}
		assert.Equal(t, 0.0, consistencyScore(sig))
	})

	t.Run("all repos fresh clamps to one", func(t *testing.T) {
		sig := ProfileSignals{
			Repositories: repoSet(4, 0, 0, fresh),
			CollectedAt:  snapshotTime,
		}
		assert.Equal(t, 1.0, consistencyScore(sig))
	})

	t.Run("half fresh gets boosted ratio", func(t *testing.T) {
		repos := append(repoSet(2, 0, 0, fresh), repoSet(2, 0, 0, stale)...)
		sig := ProfileSignals{Repositories: repos, CollectedAt: snapshotTime}
		assert.InDelta(t, 0.75, consistencyScore(sig), 1e-9)
	})

	t.Run("zero push timestamps are ignored", func(t *testing.T) {
		repos := repoSet(2, 0, 0, fresh)
		repos = append(repos, Repository{Name: "no-pushes"})
		sig := ProfileSignals{Repositories: repos, CollectedAt: snapshotTime}
		assert.InDelta(t, 1.0, consistencyScore(sig), 1e-9) // 2/3 * 1.5
	})
}

func TestExpertiseScore(t *testing.T) {
	tests := []struct {
		name      string
		areas     []string
		languages map[string]int
		expected  float64
	}{
		{"nothing known", nil, map[string]int{}, 0.0},
		{"broad and deep", []string{"web", "devops", "data"}, map[string]int{"Go": 1, "Python": 1, "Rust": 1, "C#": 1}, 1.0},
		{"two areas two languages", []string{"web", "data"}, map[string]int{"Go": 1, "Python": 1}, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ProfileSignals{FocusAreas: tt.areas, Languages: tt.languages, CollectedAt: snapshotTime}
			assert.InDelta(t, tt.expected, expertiseScore(sig), 1e-9)
		})
	}
}

func TestImpactScore(t *testing.T) {
	tests := []struct {
		name     string
		repos    int
		stars    int
		expected float64
	}{
		{"no repos", 0, 0, 0.0},
		{"five stars per repo", 10, 50, 0.5},
		{"saturates at ten per repo", 10, 500, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ProfileSignals{
				Repositories: repoSet(tt.repos, 0, tt.stars, snapshotTime),
				TotalStars:   tt.stars,
				CollectedAt:  snapshotTime,
			}
			assert.InDelta(t, tt.expected, impactScore(sig), 1e-9)
		})
	}
}

func TestBandBoundaries(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "Certified Fresh"},
		{90, "Certified Fresh"},
		{89, "Fresh"},
		{80, "Fresh"},
		{79, "Mostly Fresh"},
		{70, "Mostly Fresh"},
		{69, "Mixed"},
		{60, "Mixed"},
		{59, "Rotten"},
		{50, "Rotten"},
		{49, "Mostly Rotten"},
		{0, "Mostly Rotten"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			label, recommendation := bandFor(tt.score)
			assert.Equal(t, tt.expected, label)
			assert.NotEmpty(t, recommendation)
		})
	}
}

func TestBandsHaveNoGaps(t *testing.T) {
	// Every composite in [0,100] must map to exactly one of the six labels.
	seen := make(map[string]bool)
	for score := 0; score <= 100; score++ {
		label, _ := bandFor(score)
		assert.NotEmpty(t, label, "score %d has no band", score)
		seen[label] = true
	}
	assert.Len(t, seen, 6)
}

func TestScoreEmptyProfile(t *testing.T) {
	res := Score(emptyProfile())

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, "Mostly Rotten", res.Rating)
	assert.Equal(t, "Strong pass - major red flags present", res.Recommendation)
	assert.Equal(t, 0.0, res.Categories.ActivityLevel)
	assert.Equal(t, 0.0, res.Categories.Collaboration)
	assert.Equal(t, 0.0, res.Categories.Consistency)
	assert.Equal(t, 0.0, res.Categories.Expertise)
	assert.Equal(t, 0.0, res.Categories.Impact)
}

func TestScoreStrongProfile(t *testing.T) {
	res := Score(strongProfile())

	assert.GreaterOrEqual(t, res.Score, 90)
	assert.Equal(t, "Certified Fresh", res.Rating)
	assert.Equal(t, 1.0, res.Categories.ActivityLevel)
	assert.Equal(t, 1.0, res.Categories.Collaboration)
	assert.Equal(t, 1.0, res.Categories.Consistency)
	assert.Equal(t, 1.0, res.Categories.Expertise)
	assert.Equal(t, 1.0, res.Categories.Impact)
	assert.InDelta(t, 0.85, res.Categories.CodeQuality, 1e-9)
	assert.Equal(t, 97, res.Score)
}

func TestScoreCompositeMatchesWeightedSum(t *testing.T) {
	profiles := []ProfileSignals{
		emptyProfile(),
		strongProfile(),
		{
			Username:       "middling",
			Followers:      12,
			Following:      40,
			Repositories:   repoSet(8, 3, 24, snapshotTime.Add(-200*24*time.Hour)),
			Languages:      map[string]int{"Go": 5, "Shell": 3},
			FocusAreas:     []string{"devops"},
			RecentActivity: 1,
			TotalStars:     24,
			CollectedAt:    snapshotTime,
		},
	}

	for i, sig := range profiles {
		t.Run(fmt.Sprintf("profile %d", i), func(t *testing.T) {
			res := Score(sig)

			weighted := categoryWeights["activity_level"]*res.Categories.ActivityLevel +
				categoryWeights["code_quality"]*res.Categories.CodeQuality +
				categoryWeights["collaboration"]*res.Categories.Collaboration +
				categoryWeights["consistency"]*res.Categories.Consistency +
				categoryWeights["expertise"]*res.Categories.Expertise +
				categoryWeights["impact"]*res.Categories.Impact

			assert.Equal(t, int(clip(math.Round(weighted*100), 0, 100)), res.Score)
			assert.GreaterOrEqual(t, res.Score, 0)
			assert.LessOrEqual(t, res.Score, 100)
		})
	}
}

func TestScoreCategoriesWithinBounds(t *testing.T) {
	// Deliberately lopsided inputs; every sub-score must stay in [0, 1].
	profiles := []ProfileSignals{
		{
			Repositories:   repoSet(30, 0, 100000, snapshotTime),
			Followers:      1000000,
			Following:      1,
			Languages:      map[string]int{"Go": 30},
			FocusAreas:     []string{"web", "data", "devops", "security", "mobile"},
			RecentActivity: 500,
			TotalStars:     100000,
			CollectedAt:    snapshotTime,
		},
		{
			Repositories: repoSet(1, 1, 0, snapshotTime.Add(-10*365*24*time.Hour)),
			CollectedAt:  snapshotTime,
		},
	}

	for i, sig := range profiles {
		t.Run(fmt.Sprintf("profile %d", i), func(t *testing.T) {
			res := Score(sig)
			for name, v := range map[string]float64{
				"activity_level": res.Categories.ActivityLevel,
				"code_quality":   res.Categories.CodeQuality,
				"collaboration":  res.Categories.Collaboration,
				"consistency":    res.Categories.Consistency,
				"expertise":      res.Categories.Expertise,
				"impact":         res.Categories.Impact,
			} {
				assert.GreaterOrEqual(t, v, 0.0, "%s below floor", name)
				assert.LessOrEqual(t, v, 1.0, "%s above ceiling", name)
			}
		})
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	sig := strongProfile()

	first := Score(sig)
	second := Score(sig)

	assert.Equal(t, first, second)
}

func TestClip(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lo       float64
		hi       float64
		expected float64
	}{
		{"below lower bound", -0.5, 0, 1, 0},
		{"above upper bound", 1.5, 0, 1, 1},
		{"within bounds", 0.42, 0, 1, 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clip(tt.value, tt.lo, tt.hi))
		})
	}
}
