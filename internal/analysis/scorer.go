package analysis

import (
	"math"
	"time"
)

// Category weights for the composite. Must sum to 1.0.
var categoryWeights = map[string]float64{
	"activity_level": 0.25,
	"code_quality":   0.20,
	"collaboration":  0.15,
	"consistency":    0.15,
	"expertise":      0.15,
	"impact":         0.10,
}

// Saturation constants for the category curves. These are documented policy,
// not a discovered contract; tune here, not inline.
const (
	repoCountSaturation  = 20.0 // repos at which the base activity score maxes out
	recentActivityDiv    = 10.0 // recent pushes at which the activity bonus maxes out
	recentActivityCap    = 0.5
	languageSaturation   = 5.0 // distinct languages for full diversity credit
	popularLanguageDiv   = 3.0 // popular languages for the full quality bonus
	popularLanguageCap   = 0.5
	diversityWeight      = 0.7
	popularWeight        = 0.3
	originalityWeight    = 0.7
	socialWeight         = 0.3
	consistencyWindow    = 365 * 24 * time.Hour
	consistencyBoost     = 1.5
	focusAreaSaturation  = 3.0
	depthSaturation      = 4.0
	areaWeight           = 0.6
	depthWeight          = 0.4
	starsPerRepoDiv      = 10.0 // average stars per repo for full impact credit
)

// Languages that count toward the code-quality popularity bonus.
var popularLanguages = map[string]bool{
	"Python":     true,
	"JavaScript": true,
	"TypeScript": true,
	"Go":         true,
	"Rust":       true,
	"Java":       true,
	"C++":        true,
	"C#":         true,
}

// ratingBands maps composite thresholds to labels and recommendations.
// Bands are half-open: lower bound inclusive, checked top-down, no gaps.
var ratingBands = []struct {
	Min            int
	Label          string
	Recommendation string
}{
	{90, "Certified Fresh", "Exceptional candidate - hire with confidence"},
	{80, "Fresh", "Highly recommended - this developer shows strong potential"},
	{70, "Mostly Fresh", "Recommended with minor concerns"},
	{60, "Mixed", "Consider with caution - may need mentoring"},
	{50, "Rotten", "Not recommended - significant concerns"},
	{0, "Mostly Rotten", "Strong pass - major red flags present"},
}

// Score reduces profile signals to six weighted category scores, a composite
// percentage and a rating band. Pure and deterministic: no I/O, no clock
// reads, no hidden state.
func Score(sig ProfileSignals) RatingResult {
	cats := CategoryScores{
		ActivityLevel: activityScore(sig),
		CodeQuality:   qualityScore(sig),
		Collaboration: collaborationScore(sig),
		Consistency:   consistencyScore(sig),
		Expertise:     expertiseScore(sig),
		Impact:        impactScore(sig),
	}

	weighted := categoryWeights["activity_level"]*cats.ActivityLevel +
		categoryWeights["code_quality"]*cats.CodeQuality +
		categoryWeights["collaboration"]*cats.Collaboration +
		categoryWeights["consistency"]*cats.Consistency +
		categoryWeights["expertise"]*cats.Expertise +
		categoryWeights["impact"]*cats.Impact

	score := int(clip(math.Round(weighted*100), 0, 100))
	label, recommendation := bandFor(score)

	return RatingResult{
		Score:          score,
		Rating:         label,
		Recommendation: recommendation,
		Categories:     cats,
	}
}

// bandFor returns the rating label and recommendation for a composite score.
func bandFor(score int) (label, recommendation string) {
	for _, band := range ratingBands {
		if score >= band.Min {
			return band.Label, band.Recommendation
		}
	}
	// Unreachable for score >= 0; the last band has Min 0.
	last := ratingBands[len(ratingBands)-1]
	return last.Label, last.Recommendation
}

// activityScore saturates on repository count, with a capped bonus for
// recent pushes.
func activityScore(sig ProfileSignals) float64 {
	repoScore := math.Min(1.0, float64(len(sig.Repositories))/repoCountSaturation)
	bonus := math.Min(recentActivityCap, float64(sig.RecentActivity)/recentActivityDiv)
	return clip(repoScore+bonus, 0, 1)
}

// qualityScore blends language diversity with a bonus for recognized
// mainstream languages.
func qualityScore(sig ProfileSignals) float64 {
	diversity := math.Min(1.0, float64(len(sig.Languages))/languageSaturation)

	popular := 0
	for lang := range sig.Languages {
		if popularLanguages[lang] {
			popular++
		}
	}
	bonus := math.Min(popularLanguageCap, float64(popular)/popularLanguageDiv)

	return clip(diversity*diversityWeight+bonus*popularWeight, 0, 1)
}

// collaborationScore rewards original (non-fork) work, blended with a
// follower-to-following signal.
func collaborationScore(sig ProfileSignals) float64 {
	total := len(sig.Repositories)
	if total == 0 {
		return 0
	}

	forks := 0
	for _, repo := range sig.Repositories {
		if repo.IsFork {
			forks++
		}
	}
	originality := 1.0 - float64(forks)/float64(total)

	social := 0.0
	if sig.Following > 0 {
		social = math.Min(1.0, float64(sig.Followers)/float64(sig.Following))
	}

	return clip(originality*originalityWeight+social*socialWeight, 0, 1)
}

// consistencyScore measures the share of repositories pushed within the
// consistency window before the snapshot, boosted to reward sustained
// maintenance over bursty activity.
func consistencyScore(sig ProfileSignals) float64 {
	total := len(sig.Repositories)
	if total == 0 {
		return 0
	}

	recent := 0
	for _, repo := range sig.Repositories {
		if repo.PushedAt.IsZero() {
			continue
		}
		if sig.CollectedAt.Sub(repo.PushedAt) <= consistencyWindow {
			recent++
		}
	}

	ratio := float64(recent) / float64(total)
	return clip(ratio*consistencyBoost, 0, 1)
}

// expertiseScore blends focus-area breadth with language depth.
func expertiseScore(sig ProfileSignals) float64 {
	area := math.Min(1.0, float64(len(sig.FocusAreas))/focusAreaSaturation)
	depth := math.Min(1.0, float64(len(sig.Languages))/depthSaturation)
	return clip(area*areaWeight+depth*depthWeight, 0, 1)
}

// impactScore normalizes aggregate stars by repository count.
func impactScore(sig ProfileSignals) float64 {
	if len(sig.Repositories) == 0 {
		return 0
	}
	avgStars := float64(sig.TotalStars) / float64(len(sig.Repositories))
	return clip(avgStars/starsPerRepoDiv, 0, 1)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
