package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultRESTTimeout = 15 * time.Second

// RESTConfig describes the dashboard REST API the collections are read from.
type RESTConfig struct {
	BaseURL       string
	Token         string
	InventoryPath string
	ProductsPath  string
	SuppliersPath string
	Timeout       time.Duration
}

// RESTSource reads the three collections from a REST API.
type RESTSource struct {
	client *resty.Client
	cfg    RESTConfig
}

// NewRESTSource builds a resty-backed source.
func NewRESTSource(cfg RESTConfig) (*RESTSource, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("rest source base url must be provided")
	}
	if cfg.InventoryPath == "" {
		cfg.InventoryPath = "/inventory"
	}
	if cfg.ProductsPath == "" {
		cfg.ProductsPath = "/products"
	}
	if cfg.SuppliersPath == "" {
		cfg.SuppliersPath = "/suppliers"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRESTTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &RESTSource{client: client, cfg: cfg}, nil
}

// Load fetches inventory, products and suppliers concurrently.
func (s *RESTSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	var inventory, products, suppliers []Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inventory, err = s.fetch(gctx, s.cfg.InventoryPath)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.fetch(gctx, s.cfg.ProductsPath)
		return err
	})
	g.Go(func() (err error) {
		suppliers, err = s.fetch(gctx, s.cfg.SuppliersPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("inventory", len(inventory)).
		Int("products", len(products)).
		Int("suppliers", len(suppliers)).
		Msg("rest source: snapshot loaded")

	return RawSnapshot{Inventory: inventory, Products: products, Suppliers: suppliers}.Snapshot(), nil
}

func (s *RESTSource) fetch(ctx context.Context, path string) ([]Record, error) {
	resp, err := s.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode())
	}

	records, err := decodeRecords(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// decodeRecords accepts a bare JSON array or an envelope object holding the array
// under "data", "items" or "results".
func decodeRecords(body []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}

	switch v := payload.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		for _, key := range []string{"data", "items", "results"} {
			if list, ok := v[key].([]any); ok {
				return toRecords(list), nil
			}
		}
		return nil, fmt.Errorf("response object has no data array")
	case nil:
		return []Record{}, nil
	default:
		return nil, fmt.Errorf("unexpected response type %T", payload)
	}
}

// toRecords keeps object elements and skips anything else.
func toRecords(list []any) []Record {
	records := make([]Record, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			records = append(records, Record(obj))
		}
	}
	return records
}
