package admin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// RequiredTables são as tabelas que o seed precisa ter criado para o servidor subir.
var RequiredTables = []string{
	"users",
	"users_acess_tokens",
	"audit_log",
	"access_log",
}

type Status struct {
	Tables    []string
	Missing   []string
	Tiers     map[string]int64
	CheckedAt time.Time
}

// Healthy informa se todas as tabelas obrigatórias existem.
func (s Status) Healthy() bool {
	return len(s.Missing) == 0
}

func Check(ctx context.Context, db *gorm.DB) (Status, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return Status{}, fmt.Errorf("falha ao obter conexão subjacente: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Status{}, fmt.Errorf("banco de dados indisponível: %w", err)
	}

	var tables []string
	err = db.WithContext(ctx).Raw(`
SELECT tablename
FROM pg_catalog.pg_tables
WHERE schemaname = current_schema()
ORDER BY tablename;
        `).Scan(&tables).Error
	if err != nil {
		return Status{}, fmt.Errorf("falha ao listar tabelas: %w", err)
	}

	status := Status{
		Tables:    tables,
		Missing:   missingTables(tables, RequiredTables),
		CheckedAt: time.Now(),
	}

	if !contains(tables, "users") {
		return status, nil
	}

	type tierCount struct {
		Tier  string
		Total int64
	}
	var counts []tierCount
	if err := db.WithContext(ctx).Raw(`SELECT tier, COUNT(*) AS total FROM users GROUP BY tier`).Scan(&counts).Error; err != nil {
		return status, fmt.Errorf("falha ao contar usuários por tier: %w", err)
	}
	status.Tiers = make(map[string]int64, len(counts))
	for _, c := range counts {
		status.Tiers[c.Tier] = c.Total
	}

	return status, nil
}

func missingTables(found, required []string) []string {
	var missing []string
	for _, name := range required {
		if !contains(found, name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
