package screening

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/shared/telemetry"
)

// Scorer rates a parsed resume against a job.
type Scorer interface {
	Score(ctx context.Context, job jobs.Job, resume applications.ParsedResume, text string) (applications.ScreeningScore, error)
}

// Recommendation labels.
const (
	RecommendStrong    = "strong_match"
	RecommendPotential = "potential_match"
	RecommendWeak      = "weak_match"
)

// KeywordScorer weighs skill overlap and years of experience.
type KeywordScorer struct {
	Now func() time.Time
}

func (s KeywordScorer) Score(ctx context.Context, job jobs.Job, resume applications.ParsedResume, text string) (applications.ScreeningScore, error) {
	if err := ctx.Err(); err != nil {
		return applications.ScreeningScore{}, err
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	have := map[string]bool{}
	for _, skill := range resume.Skills {
		have[strings.ToLower(skill)] = true
	}
	haystack := " " + normalizeText(text) + " "

	var matched, missing []string
	for _, skill := range job.Skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			continue
		}
		if have[key] || strings.Contains(haystack, " "+normalizeText(key)+" ") {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	skillsMatch := 100
	if total := len(matched) + len(missing); total > 0 {
		skillsMatch = percent(len(matched), total)
	}
	experienceMatch := 100
	if job.Experience.Min > 0 {
		experienceMatch = min(100, percent(resume.ExperienceYears, job.Experience.Min))
	}
	overall := int(math.Round(0.7*float64(skillsMatch) + 0.3*float64(experienceMatch)))

	return applications.ScreeningScore{
		Overall:         overall,
		SkillsMatch:     skillsMatch,
		ExperienceMatch: experienceMatch,
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Recommendation:  recommend(overall),
		Scorer:          "keyword",
		ScoredAt:        now,
	}, nil
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

func recommend(overall int) string {
	switch {
	case overall >= 75:
		return RecommendStrong
	case overall >= 50:
		return RecommendPotential
	default:
		return RecommendWeak
	}
}

// RemoteScorer posts the job and resume to an external scoring service.
type RemoteScorer struct {
	client *resty.Client
	Now    func() time.Time
}

// NewRemoteScorer builds a scorer for baseURL; token is sent as a bearer token when set.
func NewRemoteScorer(baseURL, token string, timeout time.Duration) *RemoteScorer {
	httpClient := telemetry.InstrumentClient(&http.Client{Timeout: timeout})
	client := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &RemoteScorer{client: client}
}

type remoteRequest struct {
	Job    remoteJob                 `json:"job"`
	Resume applications.ParsedResume `json:"resume"`
	Text   string                    `json:"text"`
}

type remoteJob struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Skills        []string `json:"skills"`
	Requirements  []string `json:"requirements"`
	MinExperience int      `json:"minExperience"`
	MaxExperience int      `json:"maxExperience"`
}

var errEmptyScore = errors.New("scoring service returned no overall score")

func (s *RemoteScorer) Score(ctx context.Context, job jobs.Job, resume applications.ParsedResume, text string) (applications.ScreeningScore, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(remoteRequest{
			Job: remoteJob{
				ID:            job.ID,
				Title:         job.Title,
				Skills:        job.Skills,
				Requirements:  job.Requirements,
				MinExperience: job.Experience.Min,
				MaxExperience: job.Experience.Max,
			},
			Resume: resume,
			Text:   text,
		}).
		Post("/score")
	if err != nil {
		return applications.ScreeningScore{}, fmt.Errorf("scoring request: %w", err)
	}
	if resp.IsError() {
		return applications.ScreeningScore{}, fmt.Errorf("scoring service status %d", resp.StatusCode())
	}

	body := resp.String()
	overall := gjson.Get(body, "overall")
	if !overall.Exists() {
		return applications.ScreeningScore{}, errEmptyScore
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	score := applications.ScreeningScore{
		Overall:         clampScore(overall.Int()),
		SkillsMatch:     clampScore(gjson.Get(body, "skillsMatch").Int()),
		ExperienceMatch: clampScore(gjson.Get(body, "experienceMatch").Int()),
		MatchedSkills:   stringArray(gjson.Get(body, "matchedSkills")),
		MissingSkills:   stringArray(gjson.Get(body, "missingSkills")),
		Recommendation:  gjson.Get(body, "recommendation").String(),
		Scorer:          "remote",
		ScoredAt:        now,
	}
	if score.Recommendation == "" {
		score.Recommendation = recommend(score.Overall)
	}
	return score, nil
}

func clampScore(v int64) int {
	return int(max(0, min(100, v)))
}

func stringArray(r gjson.Result) []string {
	var out []string
	for _, item := range r.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
