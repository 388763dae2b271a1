package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saifurrahmanctg/micro-earn-server/config"
	"github.com/saifurrahmanctg/micro-earn-server/logger"
)

// Connect opens the MySQL ledger store with pooling and connect retry.
// The handle is owned by the caller; pass it down, there is no package
// global.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dbc := cfg.Database

	dsn := dbc.DSN
	if dsn == "" {
		params := dbc.Params
		if dbc.TLS == "true" || dbc.TLS == "preferred" {
			if !strings.Contains(params, "tls=") {
				if dbc.TLSCAPath != "" {
					params = params + "&tls=custom"
				} else {
					params = params + "&tls=true"
				}
			}
		}
		if !strings.Contains(params, "timeout=") {
			params = params + "&timeout=10s"
		}
		if !strings.Contains(params, "readTimeout=") {
			params = params + "&readTimeout=10s"
		}
		if !strings.Contains(params, "writeTimeout=") {
			params = params + "&writeTimeout=10s"
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", dbc.User, dbc.Password, dbc.Host, dbc.Port, dbc.Name, params)
	}

	safeDSN := dsn
	if dbc.Password != "" {
		safeDSN = strings.Replace(safeDSN, dbc.Password, "******", 1)
	}
	logger.Info("[database] using DSN: %s", safeDSN)

	if strings.Contains(dsn, "tls=custom") {
		if err := registerCustomTLS(dbc.TLSCAPath); err != nil {
			return nil, err
		}
	}

	var gl gormlogger.Interface
	if strings.ToLower(cfg.Server.Env) == "development" {
		gl = gormlogger.Default.LogMode(gormlogger.Info)
	} else {
		gl = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	maxRetries := dbc.ConnectRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	var db *gorm.DB
	var err error
	backoff := time.Second
	for attempt := 0; attempt < maxRetries; attempt++ {
		db, err = gorm.Open(gormmysql.Open(dsn), &gorm.Config{
			Logger: gl,
			// duplicate inserts must surface as gorm.ErrDuplicatedKey so the
			// ledger can treat them as idempotent no-ops
			TranslateError: true,
		})
		if err == nil {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(dbc.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbc.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(dbc.ConnMaxLifeSec) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func registerCustomTLS(caPath string) error {
	tlsCfg := &tls.Config{}
	if caPath != "" {
		caCert, err := os.ReadFile(caPath)
		if err != nil {
			return fmt.Errorf("failed reading DB TLS CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return errors.New("failed to append CA certs")
		}
		tlsCfg.RootCAs = pool
	}
	return mysqldriver.RegisterTLSConfig("custom", tlsCfg)
}
