// Package search keeps the deed catalog in Meilisearch.
package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/pkg/logger"
	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const IndexDeeds = "deeds"

var ErrUnavailable = errors.New("search unavailable")

// DeedIndex is the part of the search backend the deed service uses.
type DeedIndex interface {
	Healthy() bool
	IndexDeed(d *entity.Deed) error
	DeleteDeed(id uuid.UUID) error
	SearchDeeds(query string, limit int) ([]uuid.UUID, error)
}

type deedRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili connects to Meilisearch and configures the deed index. A failed
// first health check leaves the client unhealthy; a background loop picks it
// up again once the server answers.
func NewMeili(host, apiKey string) *Meili {
	m := &Meili{
		client: meili.New(host, meili.WithAPIKey(apiKey)),
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", zap.String("host", host), zap.Error(err))
	} else {
		m.healthy.Store(true)
		m.configure()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configure() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: IndexDeeds, PrimaryKey: "id"}); err != nil {
		logger.Debug("create deeds index (may already exist)", zap.Error(err))
	}

	index := m.client.Index(IndexDeeds)
	searchable := []string{"title", "description"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		logger.Warn("update deeds searchable attributes", zap.Error(err))
	}
	sortable := []string{"created_at"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		logger.Warn("update deeds sortable attributes", zap.Error(err))
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			was := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !was {
				logger.Info("meilisearch recovered, reconfiguring deeds index")
				m.configure()
			}
		}
	}
}

func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) IndexDeed(d *entity.Deed) error {
	if !m.healthy.Load() {
		return ErrUnavailable
	}
	doc := deedRecord{
		ID:          d.ID.String(),
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.Unix(),
	}
	_, err := m.client.Index(IndexDeeds).AddDocuments([]deedRecord{doc}, nil)
	return err
}

func (m *Meili) DeleteDeed(id uuid.UUID) error {
	if !m.healthy.Load() {
		return ErrUnavailable
	}
	_, err := m.client.Index(IndexDeeds).DeleteDocument(id.String(), nil)
	return err
}

// SearchDeeds returns matching deed ids in relevance order.
func (m *Meili) SearchDeeds(query string, limit int) ([]uuid.UUID, error) {
	if !m.healthy.Load() {
		return nil, ErrUnavailable
	}

	resp, err := m.client.Index(IndexDeeds).Search(query, &meili.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search deeds: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
