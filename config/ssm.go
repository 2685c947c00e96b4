package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// LoadSSM overlays every parameter stored under parameterPath onto c. The
// config key is the last path segment upper-cased, so
// /portfolio/prod/supabase_db_password becomes SUPABASE_DB_PASSWORD.
// Parameters override values already present in c.
func LoadSSM(ctx context.Context, c map[string]string, parameterPath string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	return loadParameters(ctx, ssm.NewFromConfig(awsCfg), c, parameterPath)
}

func loadParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, c map[string]string, parameterPath string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("read ssm parameters under %s: %w", parameterPath, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			if name == "" {
				continue
			}
			c[ParameterKey(name)] = aws.ToString(p.Value)
			loaded++
		}
	}

	log.Debug().Str("path", parameterPath).Int("count", loaded).Msg("loaded ssm parameters")
	return nil
}

// ParameterKey maps an SSM parameter name to its config key.
func ParameterKey(name string) string {
	key := path.Base(strings.TrimRight(name, "/"))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ToUpper(key)
}
