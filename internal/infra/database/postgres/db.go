package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

// Constantes para os modos SSL permitidos no PostgreSQL
const (
	SSLDisable    = "disable"
	SSLRequire    = "require"
	SSLVerifyFull = "verify-full"
	SSLVerifyCA   = "verify-ca"
)

// Config descreve a conexão lida de databases.postgres.*
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	db *gorm.DB
	mu sync.Mutex
)

func dbLog() *logger.Logger {
	return logger.Named("database")
}

// ConfigFromViper monta a Config a partir das chaves databases.postgres.*
func ConfigFromViper() Config {
	return Config{
		Host:            viper.GetString("databases.postgres.host"),
		Port:            viper.GetString("databases.postgres.port"),
		User:            viper.GetString("databases.postgres.user"),
		Password:        viper.GetString("databases.postgres.pwd"),
		DBName:          viper.GetString("databases.postgres.db_name"),
		SSLMode:         viper.GetString("databases.postgres.ssl_mode"),
		MaxOpenConns:    viper.GetInt("databases.postgres.max_open_conns"),
		MaxIdleConns:    viper.GetInt("databases.postgres.max_idle_conns"),
		ConnMaxLifetime: time.Duration(viper.GetInt("databases.postgres.conn_max_lifetime_min")) * time.Minute,
	}
}

// InitPostgres abre a conexão GORM (driver pgx) uma única vez e testa com ping.
func InitPostgres(ctx context.Context, cfg Config) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	conn, err := gorm.Open(gormPostgres.New(gormPostgres.Config{
		DriverName: "pgx",
		DSN:        BuildDSN(cfg),
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão GORM: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter *sql.DB do GORM: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("erro ao testar conexão com o banco de dados: %w", err)
	}

	dbLog().Info(ctx, "conexão GORM com PostgreSQL estabelecida",
		zap.String("host", cfg.Host),
		zap.String("db", cfg.DBName),
	)
	db = conn
	return db, nil
}

// Close encerra a conexão com o banco de dados e permite nova inicialização.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		dbLog().Warn(context.Background(), "erro ao obter *sql.DB para fechamento", zap.Error(err))
	} else if err := sqlDB.Close(); err != nil {
		dbLog().Warn(context.Background(), "erro ao fechar conexão com banco", zap.Error(err))
	}

	db = nil
}

// BuildDSN monta a string de conexão (Data Source Name) para o PostgreSQL.
func BuildDSN(cfg Config) string {
	name := cfg.DBName
	if name == "" {
		name = "appdb"
	}
	ssl := cfg.SSLMode
	if !isValidSSLMode(ssl) {
		dbLog().Warn(context.Background(), "modo SSL inválido, usando o padrão",
			zap.String("ssl_mode", ssl),
			zap.String("default", SSLDisable),
		)
		ssl = SSLDisable
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, name, ssl,
	)
}

// isValidSSLMode verifica se a string de modo SSL fornecida é um valor válido.
func isValidSSLMode(mode string) bool {
	switch mode {
	case SSLDisable, SSLRequire, SSLVerifyFull, SSLVerifyCA:
		return true
	default:
		return false
	}
}
