package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingTables(t *testing.T) {
	missing := missingTables([]string{"users", "schema_migrations"}, RequiredTables)
	assert.Equal(t, []string{"access_log", "audit_log", "users_acess_tokens"}, missing)

	assert.Empty(t, missingTables(append([]string{"schema_migrations"}, RequiredTables...), RequiredTables))
}

func TestStatusHealthy(t *testing.T) {
	assert.True(t, Status{}.Healthy())
	assert.False(t, Status{Missing: []string{"users"}}.Healthy())
}
