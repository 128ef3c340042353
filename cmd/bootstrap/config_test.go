package bootstrap

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	setDefaults()
	err := validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security.jwt_access_secret")
	assert.Contains(t, err.Error(), "security.session_secret")

	viper.Set("security.jwt_access_secret", "segredo")
	viper.Set("security.session_secret", "curto")
	assert.Error(t, validate())

	viper.Set("security.session_secret", strings.Repeat("s", 32))
	assert.NoError(t, validate())
}

func TestPathsFromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	setDefaults()
	viper.Set("routes.upgrade", "/planos")

	paths := Paths()
	assert.Equal(t, "/auth", paths.Login)
	assert.Equal(t, "/planos", paths.Upgrade)
	assert.Equal(t, "/dashboard", paths.Dashboard)
	assert.Equal(t, "/admin", paths.Admin)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_HYDRATE_WAIT_MS", "750")
	t.Chdir(t.TempDir())

	viper.Reset()
	require.NoError(t, Environment())
	assert.Equal(t, "prod", viper.GetString("app.env"))
	assert.Equal(t, int64(750), viper.GetInt64("session.hydrate_wait_ms"))
	assert.True(t, viper.GetBool("log.audit.enabled"))
}
