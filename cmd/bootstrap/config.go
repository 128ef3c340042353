package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment carrega o .env (se existir) e lê configs.json. Variáveis de
// ambiente sobrepõem as chaves do arquivo: security.jwt_access_secret vira
// SECURITY_JWT_ACCESS_SECRET.
func Environment() error {
	if os.Getenv("APP_ENV") != "prod" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("falha ao carregar .env: %w", err)
		}
	}

	setDefaults()

	viper.SetConfigName("configs")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/") // Para ambientes de produção
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("fatal error in configuration file: %w", err)
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("app.name", "pro-career-suite")
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("security.jwt_access_expiry_min", 60)
	viper.SetDefault("session.hydrate_wait_ms", 300)
	viper.SetDefault("session.fetch_timeout_ms", 5000)
	viper.SetDefault("session.cache_ttl_min", 5)
	viper.SetDefault("session.secure_cookie", false)
	viper.SetDefault("session.breaker.max_requests", 1)
	viper.SetDefault("session.breaker.interval_sec", 60)
	viper.SetDefault("session.breaker.timeout_sec", 10)
	viper.SetDefault("session.breaker.max_failures", 5)
	viper.SetDefault("routes.login", "/auth")
	viper.SetDefault("routes.upgrade", "/upgrade")
	viper.SetDefault("routes.dashboard", "/dashboard")
	viper.SetDefault("routes.admin", "/admin")
	viper.SetDefault("databases.postgres.port", "5432")
	viper.SetDefault("databases.postgres.ssl_mode", "disable")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)
	viper.SetDefault("log.audit.enabled", true)
	viper.SetDefault("log.access.enabled", false)
	viper.SetDefault("mail.smtp.port", "587")
	viper.SetDefault("mail.smtp.encryption", "tls")
}

// validate garante as chaves sem as quais o servidor não deve subir.
func validate() error {
	var missing []string
	for _, key := range []string{"security.jwt_access_secret", "security.session_secret"} {
		if viper.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuração obrigatória ausente: %s", strings.Join(missing, ", "))
	}
	if len(viper.GetString("security.session_secret")) < 32 {
		return errors.New("security.session_secret deve ter ao menos 32 caracteres")
	}
	return nil
}
