// Package infra defines the CDK stack for a scale-to-zero SageMaker
// inference component: a single endpoint whose managed instances and
// component copies both scale down to zero when idle, with a CloudWatch
// alarm that scales back from zero on the first failed invocation.
package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapplicationautoscaling"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssagemaker"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// InferenceStackProps configures the scale-to-zero inference stack. Zero
// values fall back to the Llama 3 8B demo deployment.
type InferenceStackProps struct {
	awscdk.StackProps

	// DefaultImage is the inference container image parameter default.
	DefaultImage string
	// DefaultModelData is the model artifact S3 prefix parameter default.
	DefaultModelData string
	// DefaultInstanceType is the endpoint instance type parameter default.
	DefaultInstanceType string

	// ComponentName names the inference component and its scaling target.
	ComponentName string
	// ModelEnvironment is passed to the inference container.
	ModelEnvironment map[string]*string
	// MinMemoryMB and AcceleratorCount size the component's compute
	// reservation on the instance.
	MinMemoryMB      float64
	AcceleratorCount float64
	// MaxCopies bounds both managed instances and component copies.
	MaxCopies float64
}

func (p *InferenceStackProps) applyDefaults() {
	if p.DefaultImage == "" {
		p.DefaultImage = "763104351884.dkr.ecr.us-east-1.amazonaws.com/djl-inference:0.31.0-lmi13.0.0-cu124"
	}
	if p.DefaultModelData == "" {
		p.DefaultModelData = "s3://jumpstart-private-cache-prod-us-east-1/meta-textgeneration/meta-textgeneration-llama-3-8b/artifacts/inference-prepack/v1.1.0/"
	}
	if p.DefaultInstanceType == "" {
		p.DefaultInstanceType = "ml.g5.12xlarge"
	}
	if p.ComponentName == "" {
		p.ComponentName = "llama-inference-component"
	}
	if p.ModelEnvironment == nil {
		p.ModelEnvironment = map[string]*string{
			"ENDPOINT_SERVER_TIMEOUT":        jsii.String("3600"),
			"HF_MODEL_ID":                    jsii.String("/opt/ml/model"),
			"MODEL_CACHE_ROOT":               jsii.String("/opt/ml/model"),
			"OPTION_GPU_MEMORY_UTILIZATION":  jsii.String("0.85"),
			"OPTION_TENSOR_PARALLEL_DEGREE":  jsii.String("4"),
			"SAGEMAKER_ENV":                  jsii.String("1"),
			"SAGEMAKER_MODEL_SERVER_WORKERS": jsii.String("1"),
			"SAGEMAKER_PROGRAM":              jsii.String("inference.py"),
		}
	}
	if p.MinMemoryMB == 0 {
		p.MinMemoryMB = 104096
	}
	if p.AcceleratorCount == 0 {
		p.AcceleratorCount = 4
	}
	if p.MaxCopies == 0 {
		p.MaxCopies = 2
	}
}

// NewInferenceStack builds the model, endpoint config, endpoint, inference
// component, and the auto-scaling wiring that lets the component reach a
// desired copy count of zero.
func NewInferenceStack(scope constructs.Construct, id string, props *InferenceStackProps) awscdk.Stack {
	if props == nil {
		props = &InferenceStackProps{}
	}
	props.applyDefaults()
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)

	ecrImage := awscdk.NewCfnParameter(stack, jsii.String("ECRImage"), &awscdk.CfnParameterProps{
		Default: props.DefaultImage,
	}).ValueAsString()
	modelData := awscdk.NewCfnParameter(stack, jsii.String("ModelData"), &awscdk.CfnParameterProps{
		Default: props.DefaultModelData,
	}).ValueAsString()
	instanceType := awscdk.NewCfnParameter(stack, jsii.String("InstanceType"), &awscdk.CfnParameterProps{
		Default: props.DefaultInstanceType,
	}).ValueAsString()

	role := awsiam.NewRole(stack, jsii.String("SageMakerRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("sagemaker.amazonaws.com"), nil),
	})
	role.AddManagedPolicy(awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("AmazonSageMakerFullAccess")))

	model := awssagemaker.NewCfnModel(stack, jsii.String("InferenceModel"), &awssagemaker.CfnModelProps{
		ExecutionRoleArn: role.RoleArn(),
		PrimaryContainer: &awssagemaker.CfnModel_ContainerDefinitionProperty{
			Image:       ecrImage,
			Environment: props.ModelEnvironment,
			Mode:        jsii.String("SingleModel"),
			ModelDataSource: &awssagemaker.CfnModel_ModelDataSourceProperty{
				S3DataSource: &awssagemaker.CfnModel_S3DataSourceProperty{
					CompressionType: jsii.String("None"),
					S3DataType:      jsii.String("S3Prefix"),
					S3Uri:           modelData,
					ModelAccessConfig: &awssagemaker.CfnModel_ModelAccessConfigProperty{
						AcceptEula: jsii.Bool(true),
					},
				},
			},
		},
	})

	endpointConfig := awssagemaker.NewCfnEndpointConfig(stack, jsii.String("InferenceEndpointConfig"), &awssagemaker.CfnEndpointConfigProps{
		ExecutionRoleArn: role.RoleArn(),
		ProductionVariants: []any{
			&awssagemaker.CfnEndpointConfig_ProductionVariantProperty{
				VariantName:          jsii.String("variant-0"),
				InstanceType:         instanceType,
				InitialInstanceCount: jsii.Number(1),
				ModelDataDownloadTimeoutInSeconds:           jsii.Number(3600),
				ContainerStartupHealthCheckTimeoutInSeconds: jsii.Number(3600),
				ManagedInstanceScaling: &awssagemaker.CfnEndpointConfig_ManagedInstanceScalingProperty{
					Status:           jsii.String("ENABLED"),
					MinInstanceCount: jsii.Number(0),
					MaxInstanceCount: jsii.Number(props.MaxCopies),
				},
				RoutingConfig: &awssagemaker.CfnEndpointConfig_RoutingConfigProperty{
					RoutingStrategy: jsii.String("LEAST_OUTSTANDING_REQUESTS"),
				},
			},
		},
	})

	endpoint := awssagemaker.NewCfnEndpoint(stack, jsii.String("InferenceEndpoint"), &awssagemaker.CfnEndpointProps{
		EndpointConfigName: endpointConfig.AttrEndpointConfigName(),
	})

	component := awssagemaker.NewCfnInferenceComponent(stack, jsii.String("InferenceComponent"), &awssagemaker.CfnInferenceComponentProps{
		VariantName:            jsii.String("variant-0"),
		InferenceComponentName: jsii.String(props.ComponentName),
		EndpointName:           endpoint.AttrEndpointName(),
		Specification: &awssagemaker.CfnInferenceComponent_InferenceComponentSpecificationProperty{
			ModelName: model.AttrModelName(),
			StartupParameters: &awssagemaker.CfnInferenceComponent_InferenceComponentStartupParametersProperty{
				ModelDataDownloadTimeoutInSeconds:           jsii.Number(3600),
				ContainerStartupHealthCheckTimeoutInSeconds: jsii.Number(3600),
			},
			ComputeResourceRequirements: &awssagemaker.CfnInferenceComponent_InferenceComponentComputeResourceRequirementsProperty{
				MinMemoryRequiredInMb:              jsii.Number(props.MinMemoryMB),
				NumberOfAcceleratorDevicesRequired: jsii.Number(props.AcceleratorCount),
			},
		},
		RuntimeConfig: &awssagemaker.CfnInferenceComponent_InferenceComponentRuntimeConfigProperty{
			CopyCount: jsii.Number(1),
		},
	})

	target := awsapplicationautoscaling.NewScalableTarget(stack, jsii.String("ComponentScalableTarget"), &awsapplicationautoscaling.ScalableTargetProps{
		ServiceNamespace:  awsapplicationautoscaling.ServiceNamespace_SAGEMAKER,
		MinCapacity:       jsii.Number(0),
		MaxCapacity:       jsii.Number(props.MaxCopies),
		ScalableDimension: jsii.String("sagemaker:inference-component:DesiredCopyCount"),
		ResourceId:        jsii.String("inference-component/" + props.ComponentName),
	})

	target.ScaleToTrackMetric(jsii.String("CopyCountTracking"), &awsapplicationautoscaling.BasicTargetTrackingScalingPolicyProps{
		TargetValue:      jsii.Number(1),
		PredefinedMetric: awsapplicationautoscaling.PredefinedMetric_SAGEMAKER_INFERENCE_COMPONENT_INVOCATIONS_PER_COPY,
	})

	// With zero copies SageMaker rejects invocations with
	// NoCapacityInvocationFailures; the first failure trips the alarm and
	// the step action provisions the first copy again.
	alarm := awscloudwatch.NewAlarm(stack, jsii.String("ComponentScalingAlarm"), &awscloudwatch.AlarmProps{
		ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
		Threshold:          jsii.Number(1),
		EvaluationPeriods:  jsii.Number(1),
		Metric: awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
			Namespace:  jsii.String("AWS/SageMaker"),
			MetricName: jsii.String("NoCapacityInvocationFailures"),
			Period:     awscdk.Duration_Seconds(jsii.Number(30)),
			DimensionsMap: &map[string]*string{
				"InferenceComponentName": jsii.String(props.ComponentName),
			},
		}),
	})

	scaleFromZero := awsapplicationautoscaling.NewStepScalingAction(stack, jsii.String("ScaleFromZero"), &awsapplicationautoscaling.StepScalingActionProps{
		ScalingTarget:         target,
		AdjustmentType:        awsapplicationautoscaling.AdjustmentType_CHANGE_IN_CAPACITY,
		MetricAggregationType: awsapplicationautoscaling.MetricAggregationType_MAXIMUM,
		Cooldown:              awscdk.Duration_Seconds(jsii.Number(60)),
	})
	scaleFromZero.AddAdjustment(&awsapplicationautoscaling.AdjustmentTier{
		Adjustment: jsii.Number(1),
		LowerBound: jsii.Number(0),
	})
	alarm.AddAlarmAction(awscloudwatchactions.NewApplicationScalingAction(scaleFromZero))

	// The scaling target registers against the component by name, so the
	// component must exist first.
	target.Node().AddDependency(component)

	awscdk.NewCfnOutput(stack, jsii.String("EndpointName"), &awscdk.CfnOutputProps{
		Value: endpoint.AttrEndpointName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("InferenceComponentName"), &awscdk.CfnOutputProps{
		Value: jsii.String(props.ComponentName),
	})

	return stack
}
