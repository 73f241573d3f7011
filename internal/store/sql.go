package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ortelius/component-monitor/internal/reconcile"
	"github.com/ortelius/component-monitor/model"
)

type componentRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"not null;uniqueIndex:idx_component_natural_key"`
	Version         string `gorm:"not null;uniqueIndex:idx_component_natural_key"`
	Type            string `gorm:"not null;uniqueIndex:idx_component_natural_key"`
	Ecosystem       string `gorm:"not null;uniqueIndex:idx_component_natural_key"`
	Identifier      *string
	LastUpdated     time.Time `gorm:"not null;index"`
	Notes           *string
	Vulnerabilities []vulnerabilityRow `gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
}

func (componentRow) TableName() string { return "components" }

type vulnerabilityRow struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"`
	ComponentID         int64  `gorm:"not null;uniqueIndex:idx_vulnerability_natural_key;index"`
	CveID               string `gorm:"not null;uniqueIndex:idx_vulnerability_natural_key"`
	Source              string `gorm:"not null;uniqueIndex:idx_vulnerability_natural_key"`
	Severity            string `gorm:"not null;index"`
	Summary             string
	IsFalsePositive     bool `gorm:"not null"`
	FalsePositiveReason *string
}

func (vulnerabilityRow) TableName() string { return "vulnerabilities" }

func (r componentRow) toModel() model.Component {
	c := model.Component{
		ID:              r.ID,
		Name:            r.Name,
		Version:         r.Version,
		Type:            model.ComponentType(r.Type),
		Ecosystem:       model.Ecosystem(r.Ecosystem),
		Identifier:      r.Identifier,
		LastUpdated:     r.LastUpdated.UTC(),
		Notes:           r.Notes,
		Vulnerabilities: make([]model.Vulnerability, 0, len(r.Vulnerabilities)),
	}
	for _, v := range r.Vulnerabilities {
		c.Vulnerabilities = append(c.Vulnerabilities, v.toModel())
	}
	return c
}

func (r vulnerabilityRow) toModel() model.Vulnerability {
	return model.Vulnerability{
		ID:                  r.ID,
		ComponentID:         r.ComponentID,
		CveID:               r.CveID,
		Source:              model.Source(r.Source),
		Severity:            model.Severity(r.Severity),
		Summary:             r.Summary,
		IsFalsePositive:     r.IsFalsePositive,
		FalsePositiveReason: r.FalsePositiveReason,
	}
}

func vulnerabilityRows(componentID int64, vulns []model.NewVulnerability) []vulnerabilityRow {
	rows := make([]vulnerabilityRow, 0, len(vulns))
	for _, v := range vulns {
		severity := v.Severity
		if severity == "" {
			severity = model.SeverityUnknown
		}
		rows = append(rows, vulnerabilityRow{
			ComponentID: componentID,
			CveID:       v.CveID,
			Source:      string(v.Source),
			Severity:    string(severity),
			Summary:     v.Summary,
		})
	}
	return rows
}

// SQLStore keeps components in a relational database through gorm.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore migrates the schema and returns a store over db.
func NewSQLStore(db *gorm.DB, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&componentRow{}, &vulnerabilityRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &SQLStore{db: db, logger: logger}, nil
}

func preloadVulnerabilities(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Vulnerabilities", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (s *SQLStore) findOne(tx *gorm.DB, query string, args ...any) (*model.Component, error) {
	var rows []componentRow
	if err := preloadVulnerabilities(tx).Where(query, args...).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	c := rows[0].toModel()
	return &c, nil
}

func (s *SQLStore) findByNaturalKey(ctx context.Context, nc model.NewComponent) (*model.Component, error) {
	return s.findOne(s.db.WithContext(ctx), "name = ? AND version = ? AND type = ? AND ecosystem = ?",
		nc.Name, nc.Version, string(nc.Type), string(nc.Ecosystem))
}

// CreateOrFetch implements Store.
func (s *SQLStore) CreateOrFetch(ctx context.Context, nc model.NewComponent, vulns []model.NewVulnerability) (*model.Component, bool, error) {
	existing, err := s.findByNaturalKey(ctx, nc)
	if err != nil {
		return nil, false, fmt.Errorf("looking up component: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	row := componentRow{
		Name:            nc.Name,
		Version:         nc.Version,
		Type:            string(nc.Type),
		Ecosystem:       string(nc.Ecosystem),
		Identifier:      nc.Identifier,
		LastUpdated:     nc.LastUpdated.UTC(),
		Notes:           nc.Notes,
		Vulnerabilities: vulnerabilityRows(0, vulns),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		// another writer may have inserted the same natural key first
		winner, findErr := s.findByNaturalKey(ctx, nc)
		if findErr == nil && winner != nil {
			s.logger.Debug("Component created concurrently, returning existing", zap.String("component", nc.NaturalKey()))
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("creating component: %w", err)
	}

	c := row.toModel()
	return &c, true, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (*model.Component, error) {
	return s.findOne(s.db.WithContext(ctx), "id = ?", id)
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]model.Component, error) {
	var rows []componentRow
	if err := preloadVulnerabilities(s.db.WithContext(ctx)).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Component, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("component_id = ?", id).Delete(&vulnerabilityRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&componentRow{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// SetFalsePositive implements Store.
func (s *SQLStore) SetFalsePositive(ctx context.Context, vulnID int64, flag bool, reason *string) (*model.Vulnerability, error) {
	var reasonValue any
	if r := reasonFor(flag, reason); r != nil {
		reasonValue = *r
	}

	res := s.db.WithContext(ctx).Model(&vulnerabilityRow{}).Where("id = ?", vulnID).Updates(map[string]any{
		"is_false_positive":     flag,
		"false_positive_reason": reasonValue,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var row vulnerabilityRow
	if err := s.db.WithContext(ctx).First(&row, vulnID).Error; err != nil {
		return nil, err
	}
	v := row.toModel()
	return &v, nil
}

// ApplyRefresh implements Store.
func (s *SQLStore) ApplyRefresh(ctx context.Context, id int64, fetched []model.Finding, now time.Time) (*model.RefreshOutcome, error) {
	return retryOnConflict(func() (*model.RefreshOutcome, error) {
		return s.applyRefresh(ctx, id, fetched, now)
	}, func(err error) bool {
		return errors.Is(err, gorm.ErrDuplicatedKey)
	})
}

func (s *SQLStore) applyRefresh(ctx context.Context, id int64, fetched []model.Finding, now time.Time) (*model.RefreshOutcome, error) {
	var outcome *model.RefreshOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.findOne(tx, "id = ?", id)
		if err != nil || current == nil {
			return err
		}

		rows := vulnerabilityRows(id, reconcile.Reconcile(current.Vulnerabilities, fetched))
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		bumped := model.MaxTime(current.LastUpdated, now.UTC())
		if err := tx.Model(&componentRow{}).Where("id = ?", id).Update("last_updated", bumped).Error; err != nil {
			return err
		}

		updated, err := s.findOne(tx, "id = ?", id)
		if err != nil {
			return err
		}
		outcome = &model.RefreshOutcome{Component: updated}
		for _, r := range rows {
			outcome.Added = append(outcome.Added, r.toModel())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
