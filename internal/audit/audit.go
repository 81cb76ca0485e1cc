package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
)

// Recorder ships auth audit entries to Elasticsearch. A nil Recorder
// is a no-op; indexing failures are the caller's to log, never to
// surface.
type Recorder struct {
	es    *elasticsearch.Client
	index string
}

func NewRecorder(addresses []string, user, password, index string) (*Recorder, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("es client: %w", err)
	}
	return &Recorder{es: client, index: index}, nil
}

type entry struct {
	Action   string    `json:"action"`
	ActorID  string    `json:"actor_id,omitempty"`
	TenantID string    `json:"tenant_id,omitempty"`
	Detalle  string    `json:"detalle,omitempty"`
	At       time.Time `json:"at"`
}

func (r *Recorder) Record(ctx context.Context, action, actorID, tenantID, detalle string) error {
	if r == nil || r.es == nil {
		return nil
	}

	data, err := json.Marshal(entry{
		Action:   action,
		ActorID:  actorID,
		TenantID: tenantID,
		Detalle:  detalle,
		At:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	res, err := r.es.Index(r.index, bytes.NewReader(data), r.es.Index.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}
