// Package store provides the control audit store: a durable, rebuildable
// log of every Control message admitted by the ingestion service.
//
// It is backed by PostgreSQL via GORM, narrowed to a single entity and
// three query shapes (latest sequence, lookup by idempotency token, and
// listing since a sequence).
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/streamshard/megaflow/pkg/controlplane/models"
)

// ErrSequenceAlreadyAdmitted is returned by InsertAuditRecord when the
// insert violates a unique constraint: the sequence number (the primary
// key) or the non-empty idempotency token was already written by a prior
// call.
var ErrSequenceAlreadyAdmitted = errors.New("controlplane/store: sequence already admitted")

// Config contains the audit store's PostgreSQL connection configuration.
type Config struct {
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string // disable, require, verify-ca, verify-full
	SSLRootCert  string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)

	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	if c.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", c.SSLRootCert)
	}

	return dsn
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("postgres database is required")
	}
	if c.User == "" {
		return fmt.Errorf("postgres user is required")
	}
	return nil
}

// GORMStore is the audit store's GORM-backed implementation.
type GORMStore struct {
	db *gorm.DB
}

// New opens a PostgreSQL connection and applies the SQL schema migrations
// (runMigrations, via golang-migrate) for the audit_records table.
func New(config *Config) (*GORMStore, error) {
	if config == nil {
		config = &Config{}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)

	if err := runMigrations(config.DSN()); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	return &GORMStore{db: db}, nil
}

// DB returns the underlying GORM database connection, for advanced queries
// and tests.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// Healthcheck verifies the database connection is usable.
func (s *GORMStore) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertAuditRecord persists one admitted Control message. It returns
// ErrSequenceAlreadyAdmitted if the sequence or the idempotency token was
// already written.
func (s *GORMStore) InsertAuditRecord(ctx context.Context, rec *models.AuditRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrSequenceAlreadyAdmitted
		}
		return err
	}
	return nil
}

// LastSequence returns the highest sequence number admitted so far, or 0 if
// the audit log is empty.
func (s *GORMStore) LastSequence(ctx context.Context) (uint64, error) {
	var rec models.AuditRecord
	err := s.db.WithContext(ctx).Order("sequence DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Sequence, nil
}

// FindByIdempotencyToken returns the audit record previously written under
// token, or nil if no such record exists.
func (s *GORMStore) FindByIdempotencyToken(ctx context.Context, token string) (*models.AuditRecord, error) {
	var rec models.AuditRecord
	err := s.db.WithContext(ctx).Where("idempotency_token = ?", token).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListSince returns audit records with sequence > since, oldest first,
// capped at limit (a non-positive limit means unbounded).
func (s *GORMStore) ListSince(ctx context.Context, since uint64, limit int) ([]models.AuditRecord, error) {
	var recs []models.AuditRecord
	q := s.db.WithContext(ctx).Where("sequence > ?", since).Order("sequence ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
