package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/gantta/pkg/config"
)

func TestNewS3StoreValidates(t *testing.T) {
	base := config.StorageConfig{
		Endpoint:  "localhost:9000",
		Bucket:    "plans",
		AccessKey: "key",
		SecretKey: "secret",
	}

	_, err := NewS3Store(base)
	require.NoError(t, err)

	missing := base
	missing.Endpoint = ""
	_, err = NewS3Store(missing)
	assert.ErrorContains(t, err, "endpoint")

	missing = base
	missing.SecretKey = " "
	_, err = NewS3Store(missing)
	assert.ErrorContains(t, err, "secret key")

	missing = base
	missing.Bucket = ""
	_, err = NewS3Store(missing)
	assert.ErrorContains(t, err, "bucket")
}

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey("", "data.json")
	require.NoError(t, err)
	assert.Equal(t, "data.json", key)

	key, err = ObjectKey("/gantt/launch/", "/data.json")
	require.NoError(t, err)
	assert.Equal(t, "gantt/launch/data.json", key)

	_, err = ObjectKey("gantt", "  ")
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	name, ok := ObjectName("s3://exports/plan.csv")
	require.True(t, ok)
	assert.Equal(t, "exports/plan.csv", name)

	name, ok = ObjectName("s3:///rows.json")
	require.True(t, ok)
	assert.Equal(t, "rows.json", name)

	for _, in := range []string{"rows.json", "-", "s3://", "S3://rows.json", "./s3://rows.json"} {
		_, ok := ObjectName(in)
		assert.False(t, ok, in)
	}

	key, err := ObjectKey("gantta/", "exports/plan.csv")
	require.NoError(t, err)
	assert.Equal(t, "gantta/exports/plan.csv", key)
}
