package fanapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/catalog"
	"weapon-quiz-service/internal/domain"
)

// DefaultWeaponsURL is the public weapons endpoint of the Elden Ring fan API.
const DefaultWeaponsURL = "https://eldenring.fanapis.com/api/weapons"

const maxBodyBytes = 16 << 20

// WeaponSource fetches weapon records over HTTP.
type WeaponSource struct {
	endpoint string
	client   *http.Client
	retries  uint64
	interval time.Duration
	log      *zap.Logger
}

// Option customizes a WeaponSource.
type Option func(*WeaponSource)

// WithHTTPClient replaces the default client (8s timeout).
func WithHTTPClient(client *http.Client) Option {
	return func(s *WeaponSource) { s.client = client }
}

// WithRetries sets how many times an unavailable source is retried and the
// initial backoff interval.
func WithRetries(retries uint64, interval time.Duration) Option {
	return func(s *WeaponSource) {
		s.retries = retries
		s.interval = interval
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *WeaponSource) { s.log = log }
}

func NewWeaponSource(endpoint string, opts ...Option) *WeaponSource {
	if endpoint == "" {
		endpoint = DefaultWeaponsURL
	}
	s := &WeaponSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 8 * time.Second},
		retries:  2,
		interval: 250 * time.Millisecond,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type envelope struct {
	Data []json.RawMessage `json:"data"`
}

// FetchRecords performs one GET (plus retries while the source is unavailable)
// and decodes the weapon list. Records that fail to decode individually are skipped.
func (s *WeaponSource) FetchRecords(ctx context.Context, limit int) ([]catalog.Record, error) {
	reqURL, err := s.requestURL(limit)
	if err != nil {
		return nil, err
	}

	var records []catalog.Record
	op := func() error {
		body, err := s.get(ctx, reqURL)
		if err != nil {
			return err
		}
		records, err = s.decode(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.interval
	notify := func(err error, wait time.Duration) {
		s.log.Warn("weapon catalog fetch failed, retrying",
			zap.Error(err),
			zap.Duration("wait", wait),
		)
	}
	err = backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, s.retries), ctx), notify)
	if err != nil {
		// the retry loop returns bare context errors when canceled mid-wait
		if !errors.Is(err, domain.ErrSourceUnavailable) && !errors.Is(err, domain.ErrMalformedRecord) {
			err = fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		return nil, err
	}
	return records, nil
}

func (s *WeaponSource) requestURL(limit int) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", domain.ErrSourceUnavailable, s.endpoint, err)
	}
	if limit > 0 {
		q := u.Query()
		q.Set("limit", strconv.Itoa(limit))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (s *WeaponSource) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, ctxErr))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrSourceUnavailable, err)
	}
	return body, nil
}

func (s *WeaponSource) decode(body []byte) ([]catalog.Record, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data list", domain.ErrMalformedRecord)
	}

	records := make([]catalog.Record, 0, len(env.Data))
	skipped := 0
	for _, raw := range env.Data {
		var rec catalog.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		s.log.Debug("skipped undecodable weapon records", zap.Int("skipped", skipped))
	}
	return records, nil
}
