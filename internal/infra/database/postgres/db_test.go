package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(Config{Host: "db", Port: "5432", User: "app", Password: "s3cret", DBName: "career", SSLMode: SSLRequire})
	assert.Equal(t, "host=db port=5432 user=app password=s3cret dbname=career sslmode=require", dsn)
}

func TestBuildDSNDefaults(t *testing.T) {
	dsn := BuildDSN(Config{Host: "db", Port: "5432", User: "app", SSLMode: "bogus"})
	assert.Contains(t, dsn, "dbname=appdb")
	assert.Contains(t, dsn, "sslmode=disable")
}
