package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/database"
	"github.com/ortelius/component-monitor/internal/reconcile"
	"github.com/ortelius/component-monitor/model"
)

// timestamps are stored fixed width so AQL can order them as strings
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type componentDoc struct {
	Key             string             `json:"_key,omitempty"`
	ObjType         string             `json:"objtype,omitempty"`
	Name            string             `json:"name"`
	Version         string             `json:"version"`
	Type            string             `json:"type"`
	Ecosystem       string             `json:"ecosystem"`
	Identifier      *string            `json:"identifier"`
	LastUpdated     string             `json:"last_updated"`
	Notes           *string            `json:"notes"`
	Vulnerabilities []vulnerabilityDoc `json:"vulnerabilities,omitempty"`
}

type vulnerabilityDoc struct {
	Key                 string  `json:"_key,omitempty"`
	ObjType             string  `json:"objtype,omitempty"`
	ComponentKey        string  `json:"component_key,omitempty"`
	CveID               string  `json:"cve_id"`
	Source              string  `json:"source"`
	Severity            string  `json:"severity"`
	Summary             string  `json:"summary"`
	IsFalsePositive     bool    `json:"is_false_positive"`
	FalsePositiveReason *string `json:"false_positive_reason"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseKey(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non numeric document key %q: %w", key, err)
	}
	return id, nil
}

func (d componentDoc) toModel() (model.Component, error) {
	id, err := parseKey(d.Key)
	if err != nil {
		return model.Component{}, err
	}
	updated, err := time.Parse(timeLayout, d.LastUpdated)
	if err != nil {
		return model.Component{}, fmt.Errorf("component %s last_updated: %w", d.Key, err)
	}
	c := model.Component{
		ID:              id,
		Name:            d.Name,
		Version:         d.Version,
		Type:            model.ComponentType(d.Type),
		Ecosystem:       model.Ecosystem(d.Ecosystem),
		Identifier:      d.Identifier,
		LastUpdated:     updated,
		Notes:           d.Notes,
		Vulnerabilities: make([]model.Vulnerability, 0, len(d.Vulnerabilities)),
	}
	for _, vd := range d.Vulnerabilities {
		v, err := vd.toModel()
		if err != nil {
			return model.Component{}, err
		}
		c.Vulnerabilities = append(c.Vulnerabilities, v)
	}
	return c, nil
}

func (d vulnerabilityDoc) toModel() (model.Vulnerability, error) {
	id, err := parseKey(d.Key)
	if err != nil {
		return model.Vulnerability{}, err
	}
	componentID, err := parseKey(d.ComponentKey)
	if err != nil {
		return model.Vulnerability{}, err
	}
	return model.Vulnerability{
		ID:                  id,
		ComponentID:         componentID,
		CveID:               d.CveID,
		Source:              model.Source(d.Source),
		Severity:            model.Severity(d.Severity),
		Summary:             d.Summary,
		IsFalsePositive:     d.IsFalsePositive,
		FalsePositiveReason: d.FalsePositiveReason,
	}, nil
}

func vulnerabilityDocs(vulns []model.NewVulnerability) []vulnerabilityDoc {
	docs := make([]vulnerabilityDoc, 0, len(vulns))
	for _, v := range vulns {
		severity := v.Severity
		if severity == "" {
			severity = model.SeverityUnknown
		}
		docs = append(docs, vulnerabilityDoc{
			ObjType:  "Vulnerability",
			CveID:    v.CveID,
			Source:   string(v.Source),
			Severity: string(severity),
			Summary:  v.Summary,
		})
	}
	return docs
}

// withVulnerabilities attaches a component's vulnerabilities ordered by key.
const withVulnerabilities = `MERGE(c, {
	vulnerabilities: (
		FOR v IN vulnerability
			FILTER v.component_key == c._key
			SORT TO_NUMBER(v._key)
			RETURN v
	)
})`

// ArangoStore keeps components in the component and vulnerability collections.
type ArangoStore struct {
	db     arangodb.Database
	logger *zap.Logger
}

// NewArangoStore returns a store over an initialized connection.
func NewArangoStore(conn database.DBConnection, logger *zap.Logger) *ArangoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArangoStore{db: conn.Database, logger: logger}
}

func (s *ArangoStore) queryComponents(ctx context.Context, query string, bindVars map[string]interface{}) ([]model.Component, error) {
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var components []model.Component
	for cursor.HasMore() {
		var doc componentDoc
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, err
		}
		c, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, nil
}

func first(components []model.Component, err error) (*model.Component, error) {
	if err != nil || len(components) == 0 {
		return nil, err
	}
	return &components[0], nil
}

func (s *ArangoStore) findByNaturalKey(ctx context.Context, nc model.NewComponent) (*model.Component, error) {
	query := `
		FOR c IN component
			FILTER c.name == @name
			   AND c.version == @version
			   AND c.type == @type
			   AND c.ecosystem == @ecosystem
			LIMIT 1
			RETURN ` + withVulnerabilities
	bindVars := map[string]interface{}{
		"name":      nc.Name,
		"version":   nc.Version,
		"type":      string(nc.Type),
		"ecosystem": string(nc.Ecosystem),
	}
	return first(s.queryComponents(ctx, query, bindVars))
}

// CreateOrFetch implements Store.
func (s *ArangoStore) CreateOrFetch(ctx context.Context, nc model.NewComponent, vulns []model.NewVulnerability) (*model.Component, bool, error) {
	existing, err := s.findByNaturalKey(ctx, nc)
	if err != nil {
		return nil, false, fmt.Errorf("looking up component: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT @component INTO component
		LET c = NEW
		LET inserted = (
			FOR v IN @vulnerabilities
				INSERT MERGE(v, { component_key: c._key }) INTO vulnerability
				RETURN NEW
		)
		RETURN MERGE(c, { vulnerabilities: inserted })
	`
	bindVars := map[string]interface{}{
		"component": componentDoc{
			ObjType:     "Component",
			Name:        nc.Name,
			Version:     nc.Version,
			Type:        string(nc.Type),
			Ecosystem:   string(nc.Ecosystem),
			Identifier:  nc.Identifier,
			LastUpdated: formatTime(nc.LastUpdated),
			Notes:       nc.Notes,
		},
		"vulnerabilities": vulnerabilityDocs(vulns),
	}

	created, err := first(s.queryComponents(ctx, query, bindVars))
	if err != nil {
		if shared.IsConflict(err) {
			winner, findErr := s.findByNaturalKey(ctx, nc)
			if findErr == nil && winner != nil {
				s.logger.Debug("Component created concurrently, returning existing", zap.String("component", nc.NaturalKey()))
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("creating component: %w", err)
	}
	return created, true, nil
}

// Get implements Store.
func (s *ArangoStore) Get(ctx context.Context, id int64) (*model.Component, error) {
	query := `
		FOR c IN component
			FILTER c._key == @key
			RETURN ` + withVulnerabilities
	return first(s.queryComponents(ctx, query, map[string]interface{}{"key": strconv.FormatInt(id, 10)}))
}

// List implements Store.
func (s *ArangoStore) List(ctx context.Context) ([]model.Component, error) {
	query := `
		FOR c IN component
			SORT TO_NUMBER(c._key)
			RETURN ` + withVulnerabilities
	components, err := s.queryComponents(ctx, query, nil)
	if components == nil && err == nil {
		components = []model.Component{}
	}
	return components, err
}

// Delete implements Store.
func (s *ArangoStore) Delete(ctx context.Context, id int64) (bool, error) {
	query := `
		FOR c IN component
			FILTER c._key == @key
			LET removed = (
				FOR v IN vulnerability
					FILTER v.component_key == c._key
					REMOVE v IN vulnerability
					RETURN 1
			)
			REMOVE c IN component
			RETURN c._key
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": strconv.FormatInt(id, 10)},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	return cursor.HasMore(), nil
}

// SetFalsePositive implements Store.
func (s *ArangoStore) SetFalsePositive(ctx context.Context, vulnID int64, flag bool, reason *string) (*model.Vulnerability, error) {
	query := `
		FOR v IN vulnerability
			FILTER v._key == @key
			UPDATE v WITH { is_false_positive: @flag, false_positive_reason: @reason } IN vulnerability
			RETURN NEW
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":    strconv.FormatInt(vulnID, 10),
			"flag":   flag,
			"reason": reasonFor(flag, reason),
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var doc vulnerabilityDoc
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
		return nil, err
	}
	v, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ApplyRefresh implements Store.
func (s *ArangoStore) ApplyRefresh(ctx context.Context, id int64, fetched []model.Finding, now time.Time) (*model.RefreshOutcome, error) {
	return retryOnConflict(func() (*model.RefreshOutcome, error) {
		return s.applyRefresh(ctx, id, fetched, now)
	}, shared.IsConflict)
}

func (s *ArangoStore) applyRefresh(ctx context.Context, id int64, fetched []model.Finding, now time.Time) (*model.RefreshOutcome, error) {
	current, err := s.Get(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	staged := reconcile.Reconcile(current.Vulnerabilities, fetched)

	// the insert and the bump commit together; the unique index rejects rows a concurrent refresh added
	query := `
		LET c = DOCUMENT(CONCAT("component/", @key))
		FILTER c != null
		LET inserted = (
			FOR v IN @vulnerabilities
				INSERT MERGE(v, { component_key: c._key }) INTO vulnerability
				RETURN NEW
		)
		UPDATE c WITH { last_updated: MAX([c.last_updated, @now]) } IN component
		RETURN inserted
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":             strconv.FormatInt(id, 10),
			"vulnerabilities": vulnerabilityDocs(staged),
			"now":             formatTime(now),
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var inserted []vulnerabilityDoc
	if _, err := cursor.ReadDocument(ctx, &inserted); err != nil {
		return nil, err
	}

	outcome := &model.RefreshOutcome{}
	for _, doc := range inserted {
		v, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		outcome.Added = append(outcome.Added, v)
	}
	if outcome.Component, err = s.Get(ctx, id); err != nil {
		return nil, err
	}
	return outcome, nil
}

// Close is a no-op; the driver's HTTP connections are released with the process.
func (s *ArangoStore) Close() error { return nil }
