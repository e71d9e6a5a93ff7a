package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devmeterhq/devmeter/internal/analysis"
	"github.com/devmeterhq/devmeter/internal/resilience"
)

// ErrProfileNotFound indicates the GitHub user does not exist
var ErrProfileNotFound = errors.New("github profile not found")

// Repos pushed within this window count as recent activity
const recentActivityWindow = 90 * 24 * time.Hour

const defaultBaseURL = "https://api.github.com"

// githubUser represents GitHub user data
type githubUser struct {
	Login       string `json:"login"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
}

// githubRepo represents GitHub repository data
type githubRepo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Fork            bool      `json:"fork"`
	PushedAt        time.Time `json:"pushed_at"`
}

// GitHubAdapter fetches profile data from the GitHub API
type GitHubAdapter struct {
	token   string
	baseURL string
	pool    *resilience.ConnectionPool
}

// NewGitHubAdapter creates a new GitHub adapter with connection pooling
func NewGitHubAdapter(token string) *GitHubAdapter {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	pool := resilience.NewConnectionPool(10, 20, 30*time.Second, cb)

	return &GitHubAdapter{
		token:   token,
		baseURL: defaultBaseURL,
		pool:    pool,
	}
}

// FetchProfile fetches a user's profile and repositories and derives
// the signals used for scoring
func (g *GitHubAdapter) FetchProfile(ctx context.Context, username string) (analysis.ProfileSignals, error) {
	user, err := g.fetchUser(ctx, username)
	if err != nil {
		return analysis.ProfileSignals{}, err
	}

	repos, err := g.fetchRepos(ctx, username)
	if err != nil {
		return analysis.ProfileSignals{}, err
	}

	collectedAt := time.Now().UTC()

	languages := make(map[string]int)
	totalStars := 0
	recentActivity := 0

	repositories := make([]analysis.Repository, 0, len(repos))
	for _, repo := range repos {
		repositories = append(repositories, analysis.Repository{
			Name:        repo.Name,
			Description: repo.Description,
			Language:    repo.Language,
			Stars:       repo.StargazersCount,
			Forks:       repo.ForksCount,
			IsFork:      repo.Fork,
			PushedAt:    repo.PushedAt,
		})

		if repo.Language != "" {
			languages[repo.Language]++
		}
		totalStars += repo.StargazersCount

		if !repo.PushedAt.IsZero() && collectedAt.Sub(repo.PushedAt) <= recentActivityWindow {
			recentActivity++
		}
	}

	signals := analysis.ProfileSignals{
		Username:       user.Login,
		Followers:      user.Followers,
		Following:      user.Following,
		Repositories:   repositories,
		Languages:      languages,
		FocusAreas:     analysis.DetermineFocusAreas(repositories),
		RecentActivity: recentActivity,
		TotalStars:     totalStars,
		CollectedAt:    collectedAt,
	}

	return signals, nil
}

// fetchUser fetches user account data from the GitHub API
func (g *GitHubAdapter) fetchUser(ctx context.Context, username string) (githubUser, error) {
	url := fmt.Sprintf("%s/users/%s", g.baseURL, username)

	resp, err := g.makeRequest(ctx, http.MethodGet, url)
	if err != nil {
		return githubUser{}, fmt.Errorf("failed to fetch user data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return githubUser{}, ErrProfileNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return githubUser{}, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return githubUser{}, fmt.Errorf("failed to decode user data: %w", err)
	}

	return user, nil
}

// fetchRepos fetches the user's most recently pushed repositories
func (g *GitHubAdapter) fetchRepos(ctx context.Context, username string) ([]githubRepo, error) {
	url := fmt.Sprintf("%s/users/%s/repos?per_page=30&sort=pushed", g.baseURL, username)

	resp, err := g.makeRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProfileNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var repos []githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("failed to decode repositories: %w", err)
	}

	return repos, nil
}

// makeRequest makes an HTTP request to the GitHub API using the connection pool
func (g *GitHubAdapter) makeRequest(ctx context.Context, method, url string) (*http.Response, error) {
	headers := map[string]string{
		"Accept":     "application/vnd.github.v3+json",
		"User-Agent": "DevMeter/1.0",
	}

	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}

	return g.pool.DoRequest(ctx, method, url, headers)
}

// GetPoolStats returns connection pool statistics
func (g *GitHubAdapter) GetPoolStats() map[string]interface{} {
	return g.pool.GetStats()
}

// Close closes the connection pool
func (g *GitHubAdapter) Close() error {
	return g.pool.Close()
}
