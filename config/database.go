package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// MySQLDSN builds the DSN. A DB_HOST of "/cloudsql/<CONNECTION_NAME>"
// connects through the Cloud SQL Auth Proxy unix socket.
func MySQLDSN(s *Settings) string {
	cfg := mysqlDriver.NewConfig()
	cfg.User = s.DBUser
	cfg.Passwd = s.DBPassword
	cfg.DBName = s.DBName
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.Loc = time.UTC
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s", s.DBHost, s.DBPort)
	if strings.HasPrefix(s.DBHost, "/cloudsql/") {
		cfg.Net = "unix"
		cfg.Addr = s.DBHost
	}
	return cfg.FormatDSN()
}

func PostgresDSN(s *Settings) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		s.DBHost, s.DBPort, s.DBUser, s.DBPassword, s.DBName)
}

func dialector(s *Settings) gorm.Dialector {
	if s.DBDriver == DriverPostgres {
		return postgres.Open(PostgresDSN(s))
	}
	return mysql.Open(MySQLDSN(s))
}

// ConnectDatabase opens the warehouse pool, retrying with exponential
// backoff up to DB_CONNECT_RETRY_ATTEMPTS times (0 retries forever).
func ConnectDatabase(ctx context.Context, s *Settings, logg *logrus.Logger) (*gorm.DB, error) {
	log := logg.WithFields(logrus.Fields{"field": "database", "driver": s.DBDriver})

	var attempt int
	for {
		attempt++
		db, err := open(s)
		if err == nil {
			tunePool(db, s)
			if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.WithError(pluginErr).Warn("db connected but failed to install otelgorm plugin")
			}
			log.WithField("attempt", attempt).Info("connected to database")
			return db, nil
		}
		if s.DBConnectRetryAttempts > 0 && attempt >= s.DBConnectRetryAttempts {
			return nil, fmt.Errorf("connect database after %d attempts: %w", attempt, err)
		}

		sleep := Backoff(attempt)
		log.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "retry_in": sleep.String()}).
			Warn("failed to connect database")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

func open(s *Settings) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(s), initConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func tunePool(db *gorm.DB, s *Settings) {
	sqlDB, err := db.DB()
	if err != nil || sqlDB == nil {
		return
	}
	if s.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.DBMaxOpenConns)
	}
	if s.DBMaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(s.DBMaxIdleConns)
	}
	if s.DBConnMaxLifetimeSecs > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(s.DBConnMaxLifetimeSecs) * time.Second)
	}
	if s.DBConnMaxIdleTimeSecs > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(s.DBConnMaxIdleTimeSecs) * time.Second)
	}
}

// Backoff is 2^attempt seconds, capped at 30s.
func Backoff(attempt int) time.Duration {
	sleep := time.Second * time.Duration(1<<min(attempt, 5))
	if sleep > 30*time.Second {
		sleep = 30 * time.Second
	}
	return sleep
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: schema.NamingStrategy{},
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}
