// Package database - Handles connecting to the backing stores and creating their schema
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ortelius/component-monitor/config"
)

// Collection names
const (
	ComponentCollection     = "component"
	VulnerabilityCollection = "vulnerability"
)

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// Define a struct to hold the index definition
type indexConfig struct {
	Collection string
	IdxName    string
	Fields     []string
	Unique     bool
}

var idxList = []indexConfig{
	// natural key of a component; guards create-or-fetch races
	{Collection: ComponentCollection, IdxName: "component_natural_key", Fields: []string{"name", "version", "type", "ecosystem"}, Unique: true},
	{Collection: ComponentCollection, IdxName: "component_last_updated", Fields: []string{"last_updated"}},

	// one row per (component, cve_id, source); guards concurrent refreshes
	{Collection: VulnerabilityCollection, IdxName: "vulnerability_natural_key", Fields: []string{"component_key", "cve_id", "source"}, Unique: true},
	{Collection: VulnerabilityCollection, IdxName: "vulnerability_component", Fields: []string{"component_key"}},
	{Collection: VulnerabilityCollection, IdxName: "vulnerability_severity", Fields: []string{"severity", "is_false_positive"}},
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger(level string) *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		prodConfig.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := prodConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// connectBackoff retries until the store answers or maxElapsed passes; zero retries forever.
func connectBackoff(maxElapsed time.Duration) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// InitializeDatabase connects to ArangoDB, creating the database, collections and indexes as needed
func InitializeDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (DBConnection, error) {
	var client arangodb.Client

	err := backoff.RetryNotify(func() error {
		logger.Debug("Attempting to connect to ArangoDB", zap.String("url", cfg.ArangoURL))
		endpoint := connection.NewRoundRobinEndpoints([]string{cfg.ArangoURL})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, cfg.ArangoUser, cfg.ArangoPass))

		client = arangodb.NewClient(conn)

		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)
		return nil
	}, connectBackoff(5*time.Minute), func(err error, wait time.Duration) {
		logger.Warn("Retrying connection to ArangoDB", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return DBConnection{}, fmt.Errorf("connecting to arangodb: %w", err)
	}

	db, err := ensureDatabase(ctx, client, cfg.ArangoDB)
	if err != nil {
		return DBConnection{}, err
	}

	collections := make(map[string]arangodb.Collection)
	for _, collectionName := range []string{ComponentCollection, VulnerabilityCollection} {
		var col arangodb.Collection

		exists, _ := db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				return DBConnection{}, fmt.Errorf("using collection %s: %w", collectionName, err)
			}
		} else {
			if col, err = db.CreateCollectionV2(ctx, collectionName, nil); err != nil {
				return DBConnection{}, fmt.Errorf("creating collection %s: %w", collectionName, err)
			}
		}

		collections[collectionName] = col
	}

	if err := ensureIndexes(ctx, collections, logger); err != nil {
		return DBConnection{}, err
	}

	logger.Info("Database initialization complete", zap.String("database", cfg.ArangoDB))

	return DBConnection{
		Database:    db,
		Collections: collections,
	}, nil
}

func ensureDatabase(ctx context.Context, client arangodb.Client, name string) (arangodb.Database, error) {
	dblist, err := client.Databases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	for _, dbinfo := range dblist {
		if dbinfo.Name() == name {
			var options arangodb.GetDatabaseOptions
			db, err := client.GetDatabase(ctx, name, &options)
			if err != nil {
				return nil, fmt.Errorf("getting database: %w", err)
			}
			return db, nil
		}
	}

	db, err := client.CreateDatabase(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}
	return db, nil
}

func ensureIndexes(ctx context.Context, collections map[string]arangodb.Collection, logger *zap.Logger) error {
	False := false

	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}
		if found {
			continue
		}

		unique := idx.Unique
		indexOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &unique,
			Sparse: &False,
			Name:   idx.IdxName,
		}

		if _, _, err := collections[idx.Collection].EnsurePersistentIndex(ctx, idx.Fields, &indexOptions); err != nil {
			return fmt.Errorf("creating index %s: %w", idx.IdxName, err)
		}
		logger.Sugar().Infof("Created index: %s on %s%v", idx.IdxName, idx.Collection, idx.Fields)
	}
	return nil
}
