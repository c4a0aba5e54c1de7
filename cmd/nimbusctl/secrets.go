package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/spf13/cobra"
)

var (
	secretsPrefix string
	secretsDryRun bool
)

// secretGroups maps a secret name suffix to the env keys stored under it.
var secretGroups = []struct {
	Name        string
	Description string
	Keys        []string
}{
	{
		Name:        "llm",
		Description: "LLM provider API keys",
		Keys:        []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY"},
	},
	{
		Name:        "config",
		Description: "Application configuration",
		Keys: []string{
			"BEDROCK_REGION", "BEDROCK_MODEL_ID", "BEDROCK_VISION_MODEL_ID",
			"KNOWLEDGE_BASE_ID", "DSQL_ENDPOINT", "DSQL_REGION",
		},
	},
}

var pushSecretsCmd = &cobra.Command{
	Use:   "push-secrets <env-file>",
	Short: "Push API keys from an env file to AWS Secrets Manager",
	Args:  cobra.ExactArgs(1),
	RunE:  runPushSecrets,
}

func init() {
	pushSecretsCmd.Flags().StringVar(&secretsPrefix, "prefix", "nimbus", "secret name prefix")
	pushSecretsCmd.Flags().BoolVar(&secretsDryRun, "dry-run", false, "preview without writing secrets")
}

func runPushSecrets(cmd *cobra.Command, args []string) error {
	values, err := parseEnvFile(args[0])
	if err != nil {
		return err
	}

	var client *secretsmanager.Client
	if !secretsDryRun {
		awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		client = secretsmanager.NewFromConfig(awsCfg)
	}

	for _, group := range secretGroups {
		found := map[string]string{}
		for _, key := range group.Keys {
			if v, ok := values[key]; ok {
				found[key] = v
			}
		}
		secretName := fmt.Sprintf("%s/%s", secretsPrefix, group.Name)
		if len(found) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s (no keys found)\n", secretName)
			continue
		}
		payload, err := json.Marshal(found)
		if err != nil {
			return err
		}
		if secretsDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "[dry-run] would write %s with %d keys\n", secretName, len(found))
			continue
		}
		if err := putSecret(cmd, client, secretName, group.Description, string(payload)); err != nil {
			return fmt.Errorf("pushing %s: %w", secretName, err)
		}
	}
	return nil
}

// putSecret updates an existing secret, creating it on first push.
func putSecret(cmd *cobra.Command, client *secretsmanager.Client, name, description, value string) error {
	_, err := client.PutSecretValue(cmd.Context(), &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return err
		}
		_, err = client.CreateSecret(cmd.Context(), &secretsmanager.CreateSecretInput{
			Name:         aws.String(name),
			Description:  aws.String(description),
			SecretString: aws.String(value),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", name)
	return nil
}

var envLine = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

func parseEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		matches := envLine.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		value := strings.Trim(matches[2], `"'`)
		if value == "" {
			continue
		}
		values[matches[1]] = value
	}
	return values, scanner.Err()
}
