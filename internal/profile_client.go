package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

const profilesPath = "/rest/v1/profiles"

// ProfileClient reads and writes profiles kept by a remote REST data service.
type ProfileClient struct {
	url    string
	key    string
	client *http.Client
	logger *zap.SugaredLogger
}

func NewProfileClient(baseURL, key string, logger *zap.SugaredLogger) *ProfileClient {
	return &ProfileClient{
		url:    baseURL,
		key:    key,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (c ProfileClient) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	return c.findOne(ctx, "id", id)
}

func (c ProfileClient) FindProfileByAccount(ctx context.Context, accountID string) (model.Profile, error) {
	return c.findOne(ctx, "account_id", accountID)
}

func (c ProfileClient) FindProfileByVendor(ctx context.Context, vendorID string) (model.Profile, error) {
	return c.findOne(ctx, "vendor_id", vendorID)
}

func (c ProfileClient) findOne(ctx context.Context, column, value string) (model.Profile, error) {
	q := url.Values{}
	q.Set(column, "eq."+value)
	q.Set("select", "*")
	q.Set("limit", "1")

	status, body, err := c.makeRequest(ctx, http.MethodGet, q, nil)
	if err != nil {
		return model.Profile{}, err
	}
	if status != http.StatusOK {
		return model.Profile{}, fmt.Errorf("%w: get profile status %d", ErrProfileUnavailable, status)
	}

	var res []model.Profile
	if err = json.Unmarshal(body, &res); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	if len(res) == 0 {
		return model.Profile{}, ErrNoRecords
	}
	return res[0], nil
}

func (c ProfileClient) CreateProfile(ctx context.Context, p model.Profile) (bool, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return false, err
	}

	status, _, err := c.makeRequest(ctx, http.MethodPost, nil, body)
	if err != nil {
		return false, err
	}

	switch status {
	case http.StatusCreated, http.StatusOK, http.StatusNoContent:
		return true, nil
	case http.StatusConflict:
		return false, nil
	}
	return false, fmt.Errorf("%w: create profile status %d", ErrProfileUnavailable, status)
}

func (c ProfileClient) UpdateProfile(ctx context.Context, p model.Profile) error {
	body, err := json.Marshal(profilePatch{Role: p.Role, FullName: p.FullName, VendorID: p.VendorID, AccountID: p.AccountID})
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("id", "eq."+p.ID)

	status, res, err := c.makeRequest(ctx, http.MethodPatch, q, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("%w: update profile status %d", ErrProfileUnavailable, status)
	}

	if status == http.StatusOK {
		var rows []model.Profile
		if err = json.Unmarshal(res, &rows); err == nil && len(rows) == 0 {
			return ErrNoRecords
		}
	}
	return nil
}

func (c ProfileClient) makeRequest(ctx context.Context, method string, q url.Values, body []byte) (int, []byte, error) {
	u := c.url + profilesPath
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Errorf("profile source request error: %s", err.Error())
		return 0, nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	defer res.Body.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, res.Body)
	if err != nil {
		return 0, nil, err
	}

	return res.StatusCode, buf.Bytes(), nil
}

type profilePatch struct {
	Role      model.Role `json:"role,omitempty"`
	FullName  string     `json:"full_name,omitempty"`
	VendorID  string     `json:"vendor_id,omitempty"`
	AccountID string     `json:"account_id,omitempty"`
}
