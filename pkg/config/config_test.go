package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout())
	assert.Equal(t, "preserve", cfg.Ledger.DeletePolicy)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("LEDGER_TX_TIMEOUT_SECONDS", "2")
	t.Setenv("LEDGER_DELETE_POLICY", "cascade")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 2*time.Second, cfg.Ledger.TxTimeout())
	assert.Equal(t, "cascade", cfg.Ledger.DeletePolicy)
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "obras", Password: "p@ss:1", DBName: "obras", SSLMode: "disable"}
	assert.Equal(t, "postgres://obras:p%40ss%3A1@db:5432/obras?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
