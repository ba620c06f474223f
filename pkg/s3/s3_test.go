package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/wscontext/config"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "descriptors",
	})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.S3Config{Endpoint: "http://localhost:9000", Region: "us-east-1"})
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestNew(t *testing.T) {
	c := testClient(t)
	assert.Equal(t, "descriptors", c.bucket)
	assert.Equal(t, defaultPresign, c.ttl)
}

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "documents/greeter.wsdl", DocumentKey("greeter"))
	assert.Equal(t, "s3://documents/greeter.wsdl", DocumentLocation("greeter"))
}

// Presigning is local, so it exercises the endpoint and path-style settings
// without a server.
func TestDocumentURL(t *testing.T) {
	raw, err := testClient(t).DocumentURL(context.Background(), "greeter")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/descriptors/documents/greeter.wsdl", u.Path)
	assert.True(t, strings.Contains(u.RawQuery, "X-Amz-Expires=300"))
}
