// Package mongodb implementa los puertos de persistencia sobre MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/pkg/config"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// Colecciones fijas (las de proyección están en entity.ProfileContainers).
const (
	CollectionUsers   = "usuarios"
	CollectionReports = "reportes"
)

// Store es la conexión compartida al almacén. Se crea al arrancar, se inyecta en
// los repositorios y se cierra al recibir la señal de apagado.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect abre la conexión y hace ping, reintentando cfg.ConnectAttempts veces con
// espera lineal (intento n espera n*RetryBackoff). Las operaciones posteriores no se reintentan.
func Connect(ctx context.Context, cfg config.MongoConfig, log *logger.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	var client *mongo.Client
	policy := retryPolicy{attempts: cfg.ConnectAttempts, backoff: cfg.RetryBackoff, wait: sleepCtx}
	err := policy.run(ctx, func(ctx context.Context, attempt int) error {
		c, err := mongo.Connect(opts)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			log.Warn().Err(err).Int("intento", attempt).Int("max", cfg.ConnectAttempts).Msg("ping a MongoDB fallido")
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("conectar a MongoDB: %w", err)
	}
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// NewStore envuelve un cliente ya conectado (tests de integración).
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Collection devuelve la colección con ese nombre.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Ping verifica que el almacén responde (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close cierra la conexión.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes crea los índices de los que dependen las invariantes:
// email único en usuarios y en cada contenedor de proyección, y orden por timestamp.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	names := append([]string{CollectionUsers}, entity.ProfileContainers...)
	for _, name := range names {
		if _, err := s.Collection(name).Indexes().CreateOne(ctx, unique); err != nil {
			return fmt.Errorf("índice email en %s: %w", name, err)
		}
	}
	byTime := mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: -1}}}
	if _, err := s.Collection(CollectionReports).Indexes().CreateOne(ctx, byTime); err != nil {
		return fmt.Errorf("índice timestamp en %s: %w", CollectionReports, err)
	}
	return nil
}

type retryPolicy struct {
	attempts int
	backoff  time.Duration
	wait     func(ctx context.Context, d time.Duration) error
}

// run ejecuta fn hasta que no devuelva error o se agoten los intentos.
func (p retryPolicy) run(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if werr := p.wait(ctx, time.Duration(attempt)*p.backoff); werr != nil {
			return werr
		}
	}
	return fmt.Errorf("%d intentos agotados: %w", attempts, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
