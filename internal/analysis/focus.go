package analysis

import "strings"

const maxFocusAreas = 5

// focusKeywords maps each focus area to the keywords that imply it.
// Ordered slice, not a map: the output order must be stable.
var focusKeywords = []struct {
	Area     string
	Keywords []string
}{
	{"web", []string{"web", "frontend", "backend", "api", "rest", "http", "flask", "django", "react", "vue", "angular"}},
	{"data", []string{"data", "analytics", "machine learning", "ml", "ai", "statistics", "pandas", "numpy", "tensorflow", "pytorch"}},
	{"devops", []string{"docker", "kubernetes", "ci/cd", "deployment", "cloud", "aws", "gcp", "azure", "terraform", "ansible"}},
	{"security", []string{"security", "auth", "encryption", "privacy", "penetration", "hacking", "cybersecurity"}},
	{"mobile", []string{"android", "ios", "mobile", "react native", "flutter", "swift", "kotlin"}},
	{"gaming", []string{"game", "gaming", "unity", "unreal", "godot", "phaser"}},
	{"finance", []string{"trading", "finance", "stock", "crypto", "blockchain", "bitcoin", "ethereum"}},
	{"iot", []string{"iot", "internet of things", "arduino", "raspberry pi", "embedded"}},
	{"automation", []string{"automation", "scripting", "bash", "powershell", "selenium"}},
}

// DetermineFocusAreas infers topical specializations from repository names
// and descriptions. Returns at most maxFocusAreas areas in table order.
func DetermineFocusAreas(repos []Repository) []string {
	var sb strings.Builder
	for _, repo := range repos {
		sb.WriteString(repo.Name)
		sb.WriteByte(' ')
		if repo.Description != "" {
			sb.WriteString(repo.Description)
			sb.WriteByte(' ')
		}
	}
	text := strings.ToLower(sb.String())

	areas := make([]string, 0, maxFocusAreas)
	for _, entry := range focusKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(text, keyword) {
				areas = append(areas, entry.Area)
				break
			}
		}
		if len(areas) == maxFocusAreas {
			break
		}
	}

	return areas
}
