package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{
		Host:     "db",
		Port:     "3306",
		User:     "app",
		Password: "secret",
		DBName:   "creditoya_web",
	})
	assert.Equal(t, "app:secret@tcp(db:3306)/creditoya_web?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}
