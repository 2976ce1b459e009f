package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 480, cfg.JWT.Expiration, "el token dura 8 horas por defecto")
	assert.Equal(t, 3, cfg.Mongo.ConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.Mongo.RetryBackoff)
	assert.Equal(t, 20*1024*1024, cfg.HTTP.BodyLimit())
	assert.Equal(t, int64(10*1024*1024), cfg.Uploads.MaxFileBytes())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	v.Set("JWT_EXPIRATION_MINUTES", "60")
	v.Set("HTTP_PORT", 9090)
	v.Set("MONGO_CONNECT_ATTEMPTS", "no-es-numero")

	cfg := fromViper(v)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, 60, cfg.JWT.Expiration)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Mongo.ConnectAttempts, "valor inválido cae al default")
}

func TestValidate(t *testing.T) {
	cfg := fromViper(viper.New())
	require.Error(t, cfg.Validate(), "sin JWT_SECRET no arranca")

	cfg.JWT.Secret = "s3cr3t"
	require.NoError(t, cfg.Validate())

	cfg.Mongo.ConnectAttempts = 0
	assert.Error(t, cfg.Validate())
}
