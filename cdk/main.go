package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type FragPortalStackProps struct {
	awscdk.StackProps
}

// Settings passed through from the deploying shell into the function.
var passthroughEnv = []string{
	"POSTGRES_DSN",
	"REDIS_URL",
	"CORS_ORIGINS",
	"ADMIN_USERNAME",
	"ADMIN_PASSWORD",
	"DISCORD_WEBHOOK_URL",
	"SHEETS_URL",
	"SHEETS_TAB",
}

func NewFragPortalStack(scope constructs.Construct, id string, props *FragPortalStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	env := map[string]*string{
		"APP":           jsii.String("prod"),
		"COOKIE_SECURE": jsii.String("true"),
		"LOG_FORMAT":    jsii.String("json"),
	}
	for _, key := range passthroughEnv {
		if v := os.Getenv(key); v != "" {
			env[key] = jsii.String(v)
		}
	}

	lambdaFn := awslambda.NewFunction(stack, jsii.String("FragPortalApi"), &awslambda.FunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
		Handler:     jsii.String("bootstrap"),
		Code:        awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		MemorySize:  jsii.Number(512),
		Timeout:     awscdk.Duration_Seconds(jsii.Number(29)),
		Environment: &env,
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("FragPortalApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler:          lambdaFn,
		BinaryMediaTypes: jsii.Strings("multipart/form-data"),
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewFragPortalStack(app, "FragPortalStack", &FragPortalStackProps{})
	app.Synth(nil)
}
