package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"application-portal/upload/domain"
)

// SupabaseConfig aponta para o Storage de um projeto Supabase.
// ServiceKey é a service role key: ignora RLS e nunca sai do servidor.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
	HTTPClient *http.Client
}

type SupabaseStore struct {
	endpoint string // {URL}/storage/v1/object/{bucket}
	key      string
	http     *http.Client
}

var (
	ErrSupabaseURLRequired = errors.New("supabase url is required")
	ErrSupabaseKeyRequired = errors.New("supabase service role key is required")
)

func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrSupabaseURLRequired
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, ErrSupabaseKeyRequired
	}
	if cfg.Bucket == "" {
		cfg.Bucket = domain.DefaultBucket
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &SupabaseStore{
		endpoint: strings.TrimRight(cfg.URL, "/") + "/storage/v1/object/" + url.PathEscape(cfg.Bucket),
		key:      cfg.ServiceKey,
		http:     cfg.HTTPClient,
	}, nil
}

// supabaseError é o corpo de erro da Storage API. statusCode vem como string
// em algumas versões e como número em outras.
type supabaseError struct {
	StatusCode json.RawMessage `json:"statusCode"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
}

func (e supabaseError) code() int {
	n, _ := strconv.Atoi(strings.Trim(string(e.StatusCode), `"`))
	return n
}

func (s *SupabaseStore) Put(ctx context.Context, path string, data []byte, opts domain.PutOptions) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/"+escapeObjectPath(path), bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "supabase: build request")
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	req.Header.Set("Content-Type", opts.ContentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("x-upsert", strconv.FormatBool(opts.Overwrite))

	resp, err := s.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "supabase: upload")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr supabaseError
	_ = json.Unmarshal(body, &apiErr)

	if resp.StatusCode == http.StatusConflict || apiErr.code() == http.StatusConflict || apiErr.Error == "Duplicate" {
		return errors.Wrapf(domain.ErrObjectExists, "supabase: %s", path)
	}

	detail := apiErr.Message
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	return errors.Newf("supabase: upload %s: status %d: %s", path, resp.StatusCode, detail)
}

// escapeObjectPath escapa cada segmento e preserva as barras.
func escapeObjectPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *SupabaseStore) String() string {
	return fmt.Sprintf("supabase(%s)", s.endpoint)
}
