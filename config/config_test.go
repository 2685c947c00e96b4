package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":        "9090",
		"BAD_INT":     "nine",
		"ENABLED":     "true",
		"CACHE":       "120",
		"CACHE_UNIT":  "90s",
		"EMPTY":       "",
		"BAD_BOOLEAN": "maybe",
	}

	assert.Equal(t, 9090, GetInt(c, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(c, "BAD_INT", 8080))
	assert.Equal(t, 8080, GetInt(nil, "PORT", 8080))

	assert.True(t, GetBool(c, "ENABLED", false))
	assert.False(t, GetBool(c, "BAD_BOOLEAN", false))
	assert.True(t, GetBool(c, "MISSING", true))

	assert.Equal(t, 2*time.Minute, GetDuration(c, "CACHE", time.Second, time.Minute))
	assert.Equal(t, 90*time.Second, GetDuration(c, "CACHE_UNIT", time.Second, time.Minute))
	assert.Equal(t, time.Minute, GetDuration(c, "EMPTY", time.Second, time.Minute))

	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, "9090", GetString(c, "PORT", ""))
}

func TestSplit(t *testing.T) {
	k, v := split("A=b=c")
	assert.Equal(t, "A", k)
	assert.Equal(t, "b=c", v)

	k, v = split("FLAG")
	assert.Equal(t, "FLAG", k)
	assert.Empty(t, v)
}

func TestParameterKey(t *testing.T) {
	assert.Equal(t, "SUPABASE_DB_PASSWORD", ParameterKey("/portfolio/prod/supabase_db_password"))
	assert.Equal(t, "ADMIN_JWT_SECRET", ParameterKey("/portfolio/admin-jwt-secret/"))
}

type mockSSM struct {
	mock.Mock
}

func (m *mockSSM) GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	args := m.Called(aws.ToString(in.NextToken))
	return args.Get(0).(*ssm.GetParametersByPathOutput), args.Error(1)
}

func TestLoadParametersFollowsPages(t *testing.T) {
	client := &mockSSM{}
	client.On("GetParametersByPath", "").Return(&ssm.GetParametersByPathOutput{
		Parameters: []ssmtypes.Parameter{
			{Name: aws.String("/portfolio/prod/port"), Value: aws.String("7000")},
		},
		NextToken: aws.String("page-2"),
	}, nil).Once()
	client.On("GetParametersByPath", "page-2").Return(&ssm.GetParametersByPathOutput{
		Parameters: []ssmtypes.Parameter{
			{Name: aws.String("/portfolio/prod/storage_bucket"), Value: aws.String("media")},
		},
	}, nil).Once()

	c := map[string]string{"PORT": "8080"}
	require.NoError(t, loadParameters(context.Background(), client, c, "/portfolio/prod"))

	assert.Equal(t, "7000", c["PORT"])
	assert.Equal(t, "media", c["STORAGE_BUCKET"])
	client.AssertExpectations(t)
}
