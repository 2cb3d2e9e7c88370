package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/models"
)

const defaultEndpoint = "https://api.sightengine.com/1.0/check.json"

// Result carries a policy verdict together with the raw oracle payload so
// the caller can persist the evidence alongside its decision.
type Result struct {
	Verdict
	Message     string          `json:"message"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	Provider    string          `json:"provider"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Client talks to the Sightengine image moderation API.
type Client struct {
	apiUser    string
	apiSecret  string
	endpoint   string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	endpoint := cfg.SightengineURL
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		apiUser:   cfg.SightengineAPIUser,
		apiSecret: cfg.SightengineAPISecret,
		endpoint:  endpoint,
		httpClient: &http.Client{
			Timeout: cfg.ModerationTimeout,
		},
	}
}

// modelsFor picks the Sightengine model set for a report reason. Every
// request carries the baseline set; text-adjacent and scam reasons add the
// models their policy branch inspects.
func modelsFor(reason models.ReportReason) string {
	const baseline = "nudity,wad,offensive,gore"
	switch reason {
	case models.ReasonSpam:
		return baseline + ",scam"
	case models.ReasonHateSpeech, models.ReasonHarassment:
		return baseline + ",offensive"
	default:
		return baseline
	}
}

type sightengineResponse struct {
	Status string `json:"status"`
	Nudity *struct {
		Raw float64 `json:"raw"`
	} `json:"nudity"`
	Weapon  float64 `json:"weapon"`
	Alcohol float64 `json:"alcohol"`
	Drugs   float64 `json:"drugs"`
	Gore    *struct {
		Prob float64 `json:"prob"`
	} `json:"gore"`
	Offensive *struct {
		Prob float64 `json:"prob"`
	} `json:"offensive"`
	Scam *struct {
		Prob float64 `json:"prob"`
	} `json:"scam"`
	Error *struct {
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// flatten maps the nested provider payload onto the flat category scores
// the policy table operates on. Models not requested come back absent and
// read as zero.
func (r *sightengineResponse) flatten() Scores {
	s := Scores{
		CategoryWeapon:  r.Weapon,
		CategoryAlcohol: r.Alcohol,
		CategoryDrugs:   r.Drugs,
	}
	if r.Nudity != nil {
		s[CategoryNudity] = r.Nudity.Raw
	}
	if r.Gore != nil {
		s[CategoryGore] = r.Gore.Prob
	}
	if r.Offensive != nil {
		s[CategoryOffensive] = r.Offensive.Prob
	}
	if r.Scam != nil {
		s[CategoryScam] = r.Scam.Prob
	}
	return s
}

// AnalyzeImage submits an image URL for moderation and evaluates the
// returned scores against the policy for the given reason. Transport
// failures, non-2xx statuses and provider-reported errors are all returned
// as plain errors; the caller decides what a failed analysis means for the
// report.
func (c *Client) AnalyzeImage(ctx context.Context, imageURL string, reason models.ReportReason) (*Result, error) {
	if c.apiUser == "" || c.apiSecret == "" {
		return nil, fmt.Errorf("moderation: sightengine credentials not configured")
	}

	params := url.Values{}
	params.Set("api_user", c.apiUser)
	params.Set("api_secret", c.apiSecret)
	params.Set("url", imageURL)
	params.Set("models", modelsFor(reason))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("moderation: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation: sightengine request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("moderation: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation: sightengine returned status %d", resp.StatusCode)
	}

	var parsed sightengineResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("moderation: decode response: %w", err)
	}
	if parsed.Status != "success" {
		msg := "unknown provider error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("moderation: sightengine failure: %s", msg)
	}

	verdict := Evaluate(reason, parsed.flatten())

	result := &Result{
		Verdict:     verdict,
		RawResponse: json.RawMessage(body),
		Provider:    "sightengine",
		Timestamp:   time.Now().UTC(),
	}
	if verdict.IsViolation {
		result.Message = fmt.Sprintf("Content flagged as %s (confidence %.2f)", verdict.ViolationType, verdict.Confidence)
	} else {
		result.Message = "No policy violation detected"
	}
	return result, nil
}
