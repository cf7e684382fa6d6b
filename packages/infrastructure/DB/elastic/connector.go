package elastic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"entiq/packages/common/config"
	Error "entiq/packages/common/errors"
	"entiq/packages/core/meta"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sony/gobreaker/v2"
)

const indexPrefix = "entiq-"

// Result documents a single scan request pulls for in-memory
// evaluation. Matches the index max_result_window default, deeper
// result sets continue with search_after.
const fetchCap = 10000

var errNotFound = errors.New("document not found")

type connector struct {
	client      *elasticsearch.Client
	breaker     *gobreaker.CircuitBreaker[[]byte]
	provider    meta.Provider
	isConnected bool

	mu           sync.RWMutex
	uniqueFields map[string][]string
}

func indexFor(entityName string) string {
	return indexPrefix + strings.ToLower(entityName)
}

func (c *connector) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := config.DB.QueryTimeout()
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *connector) Connect() {
	if c.isConnected {
		dbLogger.Panic("DB connection failed", "connection already established", nil)
	}

	dbLogger.Info("Connecting to Elasticsearch...", nil)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Secret.ElasticAddresses,
		Username:  config.Secret.ElasticUser,
		Password:  config.Secret.ElasticPassword,
	})
	if err != nil {
		dbLogger.Fatal("Failed to create Elasticsearch client", err.Error(), nil)
	}

	c.client = client
	c.uniqueFields = map[string][]string{}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "elasticsearch",
		Timeout: time.Second * 30,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Missing documents are an answer, not an outage.
			return err == nil || errors.Is(err, errNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			dbLogger.Warning(
				"Circuit breaker "+name+": "+from.String()+" -> "+to.String(),
				nil,
			)
		},
	})

	res, err := client.Info()
	if err != nil {
		dbLogger.Fatal("Failed to ping Elasticsearch", err.Error(), nil)
	}
	res.Body.Close()

	if err := c.ensureIndices(); err != nil {
		dbLogger.Fatal("Index setup failed", err.Error(), nil)
	}

	c.isConnected = true

	dbLogger.Info("Connecting to Elasticsearch: OK", nil)
}

func (c *connector) Disconnect() error {
	if !c.isConnected {
		return errors.New("connection not established")
	}

	// The HTTP client holds no long-lived server state.
	c.isConnected = false

	return nil
}

// Identifier and reference fields must never be analyzed, the rest of
// the mapping stays dynamic.
func (c *connector) ensureIndices() error {
	for _, ent := range c.provider.Entities() {
		properties := map[string]any{
			"id": map[string]any{"type": "keyword"},
		}
		for _, fd := range ent.Fields {
			if fd.Ref != "" || fd.Type == meta.TypeObjectID {
				properties[fd.Name] = map[string]any{"type": "keyword"}
			}
		}

		body, err := encodeBody(map[string]any{
			"mappings": map[string]any{"properties": properties},
		})
		if err != nil {
			return err
		}

		index := indexFor(ent.Name)

		res, err := c.client.Indices.Create(index, c.client.Indices.Create.WithBody(body))
		if err != nil {
			return err
		}

		raw, _ := io.ReadAll(res.Body)
		res.Body.Close()

		if res.IsError() && !strings.Contains(string(raw), "resource_already_exists_exception") {
			return fmt.Errorf("creating index %s: %s", index, raw)
		}

		dbLogger.Info("Verifying that index "+index+" exists: OK", nil)
	}

	return nil
}

// perform routes one API call through the circuit breaker and
// normalizes transport failures. A 404 response surfaces as
// errNotFound for the caller to interpret.
func (c *connector) perform(call func() (*esapi.Response, error)) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		res, err := call()
		if err != nil {
			return nil, err
		}

		defer res.Body.Close()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}

		if res.StatusCode == 404 {
			return raw, errNotFound
		}
		if res.IsError() {
			return nil, fmt.Errorf("%s: %s", res.Status(), raw)
		}

		return raw, nil
	})
}

func (c *connector) mapError(err error, entityName string, operation string) *Error.Status {
	if errors.Is(err, errNotFound) {
		return Error.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Error.StatusTimeout
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		dbLogger.Warning("Rejected by open circuit breaker: "+operation, nil)
		return Error.StatusInternalError
	}

	dbLogger.Error(operation+" failed for "+entityName, err.Error(), nil)

	return Error.StatusInternalError
}

func (c *connector) setUniqueFields(entityName string, fields []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniqueFields[entityName] = fields
}

func (c *connector) getUniqueFields(entityName string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uniqueFields[entityName]
}
