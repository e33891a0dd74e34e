// internal/common/database/database_test.go
package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-recommender/internal/common/config"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedis(config.RedisConfig{Address: mr.Addr(), PoolSize: 3, ReadTimeout: 1500})
	require.NoError(t, err)
	defer c.Close()

	opts := c.Client.Options()
	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, 5, opts.MinIdleConns)
	assert.Equal(t, 1500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, opts.ReadTimeout, opts.WriteTimeout)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)

	assert.NoError(t, c.Ping(context.Background()))
}

func TestRedisPing_Unreachable(t *testing.T) {
	c, err := NewRedis(config.RedisConfig{Address: "127.0.0.1:1", DialTimeout: 200})
	require.NoError(t, err)
	defer c.Close()

	err = c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestNewRedis_EmptyAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestElasticsearchPing(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))

	status = http.StatusServiceUnavailable
	assert.Error(t, c.Ping(context.Background()))
}

func TestPostgresDSN(t *testing.T) {
	cfg := config.PostgresConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "jobs", SSLMode: "disable",
		MaxConnections: 4, MaxIdle: 2,
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=jobs sslmode=disable", cfg.GetDSN())

	c, err := NewPostgres(cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 4, c.DB.Stats().MaxOpenConnections)
}
