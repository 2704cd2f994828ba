package userprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/internal/errors"
	"github.com/konturio/insights-llm-api/ports"
)

// Client looks up users and app feature configuration in the user profile
// service.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
	log       *internal.Logger
}

// NewClient creates a user profile service client.
func NewClient(url, userAgent string, log *internal.Logger) *Client {
	return &Client{
		url:       strings.TrimRight(url, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}
}

// UserData fetches the current user, the set of enabled features and,
// when featuresConfig is set, the app's feature configuration. The auth
// token is forwarded as-is.
func (c *Client) UserData(ctx context.Context, appID, authToken string, featuresConfig bool) (ports.UserData, error) {
	result := ports.UserData{}
	c.log.Debug("asking UPS %s for user data..", c.url)

	if err := c.getJSON(ctx, "/users/current_user", authToken, &result.CurrentUser); err != nil {
		return result, err
	}

	if featuresConfig {
		var appConfig struct {
			FeaturesConfig map[string]any `json:"featuresConfig"`
		}
		if err := c.getJSON(ctx, "/apps/"+appID, authToken, &appConfig); err != nil {
			return result, err
		}
		result.FeaturesConfig = appConfig.FeaturesConfig
	}

	var features []struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, "/features?appId="+appID, authToken, &features); err != nil {
		return result, err
	}
	result.FeaturesEnabled = make(map[string]struct{}, len(features))
	for _, feature := range features {
		result.FeaturesEnabled[feature.Name] = struct{}{}
	}

	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path, authToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return errors.Wrap(err, "build user-profile request")
	}
	req.Header.Set("Authorization", authToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Upstream("user-profile", http.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Upstream("user-profile", http.StatusBadGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Upstream("user-profile", resp.StatusCode,
			fmt.Errorf("%s", strings.TrimSpace(string(raw))))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Upstream("user-profile", http.StatusBadGateway, err)
	}
	return nil
}
