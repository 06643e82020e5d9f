package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNValue(t *testing.T) {
	dsn := "host=localhost user=postgres dbname=blog_comments port=5432 sslmode=disable"
	assert.Equal(t, "blog_comments", dsnValue(dsn, "dbname"))
	assert.Equal(t, "5432", dsnValue(dsn, "port"))
	assert.Empty(t, dsnValue(dsn, "password"))
}
