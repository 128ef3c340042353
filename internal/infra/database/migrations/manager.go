package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

const (
	seedCategory   = "seed"
	updateCategory = "update"
)

var (
	//go:embed sql/seed/*.sql sql/update/*.sql
	embeddedMigrations embed.FS
)

type migrationFile struct {
	Name      string
	Content   string
	Category  string
	Timestamp time.Time
}

// Manager aplica os scripts SQL embutidos, registrando cada um em schema_migrations.
type Manager struct {
	db    *gorm.DB
	files fs.FS
	log   *logger.Logger
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, files: embeddedMigrations, log: logger.Named("migrations")}
}

// ApplySeed cria o schema inicial (usuários, tokens e logs).
func (m *Manager) ApplySeed(ctx context.Context) error {
	return m.applyCategory(ctx, seedCategory)
}

// ApplyUpdate aplica as alterações posteriores ao seed.
func (m *Manager) ApplyUpdate(ctx context.Context) error {
	return m.applyCategory(ctx, updateCategory)
}

// Pending lista as migrations da categoria que ainda não foram aplicadas.
func (m *Manager) Pending(ctx context.Context, category string) ([]string, error) {
	files, err := loadFiles(m.files, category)
	if err != nil {
		return nil, err
	}

	tx := m.db.WithContext(ctx)
	if err := ensureSchemaMigrationsTable(tx); err != nil {
		return nil, err
	}
	applied, err := fetchApplied(tx, category)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, file := range files {
		if !applied[file.Name] {
			pending = append(pending, file.Name)
		}
	}
	return pending, nil
}

func (m *Manager) applyCategory(ctx context.Context, category string) error {
	files, err := loadFiles(m.files, category)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSchemaMigrationsTable(tx); err != nil {
			return err
		}

		applied, err := fetchApplied(tx, category)
		if err != nil {
			return err
		}

		for _, file := range files {
			if applied[file.Name] {
				continue
			}

			if err := executeMigration(tx, file); err != nil {
				return err
			}
			m.log.Info(ctx, "migration aplicada", zap.String("category", category), zap.String("name", file.Name))
		}

		return nil
	})
}

func loadFiles(fsys fs.FS, category string) ([]migrationFile, error) {
	var dir string
	switch category {
	case seedCategory:
		dir = "sql/seed"
	case updateCategory:
		dir = "sql/update"
	default:
		return nil, fmt.Errorf("categoria de migration desconhecida: %s", category)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("falha ao ler diretório de migrations %s: %w", dir, err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		name := entry.Name()
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("falha ao ler migration %s: %w", name, err)
		}

		ts, err := parseTimestamp(name)
		if err != nil {
			return nil, err
		}

		files = append(files, migrationFile{
			Name:      name,
			Content:   string(content),
			Category:  category,
			Timestamp: ts,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Timestamp.Equal(files[j].Timestamp) {
			return files[i].Name < files[j].Name
		}
		return files[i].Timestamp.Before(files[j].Timestamp)
	})

	return files, nil
}

func parseTimestamp(name string) (time.Time, error) {
	base := path.Base(name)
	ts, _, found := strings.Cut(base, "_")
	if !found {
		return time.Time{}, fmt.Errorf("migration %s não segue o padrão 'YYYYMMDDHHMMSS_nome.sql'", name)
	}
	if len(ts) != 14 {
		return time.Time{}, fmt.Errorf("migration %s não contém carimbo de data e hora válido", name)
	}

	parsed, err := time.Parse("20060102150405", ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("falha ao interpretar data da migration %s: %w", name, err)
	}
	return parsed, nil
}

func ensureSchemaMigrationsTable(tx *gorm.DB) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    category VARCHAR(50) NOT NULL,
    applied_at TIMESTAMP WITHOUT TIME ZONE NOT NULL DEFAULT NOW(),
    UNIQUE (name, category)
);`
	return tx.Exec(createTable).Error
}

func fetchApplied(tx *gorm.DB, category string) (map[string]bool, error) {
	var names []string
	if err := tx.Raw(
		"SELECT name FROM schema_migrations WHERE category = ?",
		category,
	).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("falha ao consultar migrations aplicadas (%s): %w", category, err)
	}

	applied := make(map[string]bool, len(names))
	for _, name := range names {
		applied[name] = true
	}
	return applied, nil
}

func executeMigration(tx *gorm.DB, file migrationFile) error {
	if err := tx.Exec(file.Content).Error; err != nil {
		return fmt.Errorf("falha ao aplicar migration %s: %w", file.Name, err)
	}

	if err := tx.Exec(
		"INSERT INTO schema_migrations (name, category) VALUES (?, ?)",
		file.Name,
		file.Category,
	).Error; err != nil {
		return fmt.Errorf("falha ao registrar migration %s: %w", file.Name, err)
	}

	return nil
}
