// infra synthesizes the scale-to-zero SageMaker inference stack.
//
// Deploy with:
//
//	cdk deploy --app "go run ./cmd/infra"
package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/nimbusworks/nimbus/infra"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	infra.NewInferenceStack(app, "InferenceComponentStack", &infra.InferenceStackProps{
		StackProps: awscdk.StackProps{
			Env: env(),
		},
	})

	app.Synth(nil)
}

// env resolves the deployment account and region from the CDK CLI
// environment. Returning nil yields an environment-agnostic stack.
func env() *awscdk.Environment {
	account := os.Getenv("CDK_DEFAULT_ACCOUNT")
	region := os.Getenv("CDK_DEFAULT_REGION")
	if account == "" || region == "" {
		return nil
	}
	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}
