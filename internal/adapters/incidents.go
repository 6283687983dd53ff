package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/oncallpulse/burnout-meter/internal/cache"
	apperrors "github.com/oncallpulse/burnout-meter/internal/errors"
	"github.com/oncallpulse/burnout-meter/internal/monitoring"
	"github.com/oncallpulse/burnout-meter/internal/resilience"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// IncidentAdapter fetches users and incidents from the incident-management
// API and normalizes them into analysis input records.
type IncidentAdapter struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	logger  *monitoring.Logger
}

// NewIncidentAdapter creates an adapter against baseURL. Requests are paced
// and responses cached for the lifetime of a run.
func NewIncidentAdapter(baseURL, token string, logger *monitoring.Logger) *IncidentAdapter {
	return &IncidentAdapter{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		cache:   cache.New(15 * time.Minute),
		logger:  logger,
	}
}

// API payload shapes. The upstream uses a JSON:API style envelope.
type apiEnvelope struct {
	Data []apiResource `json:"data"`
}

type apiResource struct {
	ID         string             `json:"id"`
	Attributes apiAttributes      `json:"attributes"`
	Relations  map[string]apiRefs `json:"relationships"`
}

type apiAttributes struct {
	Name           string     `json:"full_name"`
	Email          string     `json:"email"`
	SlackID        string     `json:"slack_id"`
	Severity       string     `json:"severity"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	Escalated      bool       `json:"escalated"`
}

type apiRefs struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// FetchUsers returns the engineer roster.
func (a *IncidentAdapter) FetchUsers(ctx context.Context) ([]types.Engineer, error) {
	body, err := a.get(ctx, a.baseURL+"/v1/users")
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]types.Engineer, 0, len(env.Data))
	for _, r := range env.Data {
		users = append(users, types.Engineer{
			ID:      r.ID,
			Name:    r.Attributes.Name,
			Email:   r.Attributes.Email,
			SlackID: r.Attributes.SlackID,
		})
	}
	return users, nil
}

// FetchIncidents returns incidents created since the window start.
func (a *IncidentAdapter) FetchIncidents(ctx context.Context, since time.Time) ([]types.IncidentRecord, error) {
	url := fmt.Sprintf("%s/v1/incidents?filter[created_at][gte]=%s", a.baseURL, since.UTC().Format(time.RFC3339))
	body, err := a.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch incidents: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}

	incidents := make([]types.IncidentRecord, 0, len(env.Data))
	for _, r := range env.Data {
		if r.Attributes.CreatedAt.IsZero() {
			appErr := apperrors.NewMalformedRecordError("incident", "record "+r.ID+" has no created_at")
			a.logger.Warn("Skipping malformed record", "record_id", r.ID, "error", appErr.Error())
			continue
		}
		inc := types.IncidentRecord{
			ID:             r.ID,
			Severity:       r.Attributes.Severity,
			CreatedAt:      r.Attributes.CreatedAt,
			AcknowledgedAt: r.Attributes.AcknowledgedAt,
			ResolvedAt:     r.Attributes.ResolvedAt,
			Escalated:      r.Attributes.Escalated,
		}
		if refs, ok := r.Relations["assignees"]; ok {
			for _, d := range refs.Data {
				inc.AssigneeIDs = append(inc.AssigneeIDs, d.ID)
			}
		}
		incidents = append(incidents, inc)
	}
	return incidents, nil
}

// MapIncidents indexes incidents by assigned engineer id.
func MapIncidents(users []types.Engineer, incidents []types.IncidentRecord) map[string][]types.IncidentRecord {
	byUser := make(map[string][]types.IncidentRecord, len(users))
	for _, u := range users {
		byUser[u.ID] = nil
	}
	for _, inc := range incidents {
		for _, id := range inc.AssigneeIDs {
			if _, ok := byUser[id]; ok {
				byUser[id] = append(byUser[id], inc)
			}
		}
	}
	return byUser
}

func (a *IncidentAdapter) get(ctx context.Context, url string) ([]byte, error) {
	key := cache.Key("incident", url)
	if data, ok := a.cache.Get(key); ok {
		return data, nil
	}

	var body []byte
	err := resilience.Retry(ctx, func() error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+a.token)
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := a.client.Do(req)
		if err != nil {
			a.logger.CollectorLogger("incident", url, 0, time.Since(start), false)
			return err
		}
		defer resp.Body.Close()
		a.logger.CollectorLogger("incident", url, resp.StatusCode, time.Since(start), resp.StatusCode == http.StatusOK)

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("incident API status %d: %s", resp.StatusCode, string(msg))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, body)
	return body, nil
}
