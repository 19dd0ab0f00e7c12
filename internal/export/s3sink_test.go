package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/claimdesk/internal/claims"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

type mockS3Client struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (m *mockS3Client) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	return &s3.PutObjectOutput{}, nil
}

func TestSinkUploadCSV(t *testing.T) {
	client := &mockS3Client{}
	sink := NewSink(client, "claim-exports", logging.Default())
	require.True(t, sink.Enabled())

	key, err := sink.UploadCSV(context.Background(), []claims.Claim{sampleClaim(t)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "exports/claims/"))
	assert.True(t, strings.HasSuffix(key, ".csv"))

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "claim-exports", *in.Bucket)
	assert.Equal(t, key, *in.Key)
	assert.Equal(t, "text/csv", *in.ContentType)

	body, err := io.ReadAll(in.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "John Doe")
}

func TestSinkDisabledWithoutBucket(t *testing.T) {
	sink := NewSink(&mockS3Client{}, "", logging.Default())
	assert.False(t, sink.Enabled())

	key, err := sink.UploadCSV(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestSinkNilReceiver(t *testing.T) {
	var sink *Sink
	assert.False(t, sink.Enabled())
}

func TestSinkUploadError(t *testing.T) {
	client := &mockS3Client{err: errors.New("access denied")}
	sink := NewSink(client, "claim-exports", logging.Default())

	_, err := sink.UploadCSV(context.Background(), nil)
	assert.Error(t, err)
}
