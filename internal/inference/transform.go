package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// SageMakerAPI is the slice of the SageMaker control-plane client the
// inference operations need.
type SageMakerAPI interface {
	CreateModel(ctx context.Context, params *sagemaker.CreateModelInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateModelOutput, error)
	CreateTransformJob(ctx context.Context, params *sagemaker.CreateTransformJobInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateTransformJobOutput, error)
	DescribeTransformJob(ctx context.Context, params *sagemaker.DescribeTransformJobInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeTransformJobOutput, error)
}

// ModelSpec describes a SageMaker model backed by a container image and a
// packaged model archive.
type ModelSpec struct {
	Name         string
	Image        string
	ModelDataURL string
	RoleARN      string
}

// TransformSpec describes a batch transform job over line-delimited input.
type TransformSpec struct {
	JobName       string
	ModelName     string
	InstanceType  string
	InstanceCount int32
	InputS3URI    string
	OutputS3URI   string
	ContentType   string
	MaxPayloadMB  int32
}

// TransformStatus summarizes a transform job.
type TransformStatus struct {
	JobName       string
	Status        string
	FailureReason string
	CreatedAt     time.Time
}

// Ops runs SageMaker inference operations.
type Ops struct {
	client SageMakerAPI
}

// NewOps creates inference operations over a SageMaker client.
func NewOps(client SageMakerAPI) *Ops {
	return &Ops{client: client}
}

// CreateModel registers the container and model data as a SageMaker model.
func (o *Ops) CreateModel(ctx context.Context, spec ModelSpec) error {
	_, err := o.client.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(spec.Name),
		ExecutionRoleArn: aws.String(spec.RoleARN),
		PrimaryContainer: &types.ContainerDefinition{
			Image:        aws.String(spec.Image),
			ModelDataUrl: aws.String(spec.ModelDataURL),
		},
	})
	if err != nil {
		return fmt.Errorf("inference: create model %s: %w", spec.Name, err)
	}
	slog.Info("sagemaker model created", "model", spec.Name)
	return nil
}

// StartBatchTransform creates a MultiRecord transform job splitting input
// by line and assembling JSON output by line.
func (o *Ops) StartBatchTransform(ctx context.Context, spec TransformSpec) error {
	if spec.ContentType == "" {
		spec.ContentType = "text/plain"
	}
	if spec.MaxPayloadMB == 0 {
		spec.MaxPayloadMB = 6
	}
	if spec.InstanceCount == 0 {
		spec.InstanceCount = 1
	}
	_, err := o.client.CreateTransformJob(ctx, &sagemaker.CreateTransformJobInput{
		TransformJobName: aws.String(spec.JobName),
		ModelName:        aws.String(spec.ModelName),
		BatchStrategy:    types.BatchStrategyMultiRecord,
		MaxPayloadInMB:   aws.Int32(spec.MaxPayloadMB),
		TransformInput: &types.TransformInput{
			ContentType: aws.String(spec.ContentType),
			SplitType:   types.SplitTypeLine,
			DataSource: &types.TransformDataSource{
				S3DataSource: &types.TransformS3DataSource{
					S3DataType: types.S3DataTypeS3Prefix,
					S3Uri:      aws.String(spec.InputS3URI),
				},
			},
		},
		TransformOutput: &types.TransformOutput{
			S3OutputPath: aws.String(spec.OutputS3URI),
			Accept:       aws.String("application/json"),
			AssembleWith: types.AssemblyTypeLine,
		},
		TransformResources: &types.TransformResources{
			InstanceType:  types.TransformInstanceType(spec.InstanceType),
			InstanceCount: aws.Int32(spec.InstanceCount),
		},
	})
	if err != nil {
		return fmt.Errorf("inference: create transform job %s: %w", spec.JobName, err)
	}
	slog.Info("batch transform started", "job", spec.JobName, "model", spec.ModelName)
	return nil
}

// DescribeTransform returns the status of a transform job, including the
// failure reason when the job failed.
func (o *Ops) DescribeTransform(ctx context.Context, jobName string) (*TransformStatus, error) {
	out, err := o.client.DescribeTransformJob(ctx, &sagemaker.DescribeTransformJobInput{
		TransformJobName: aws.String(jobName),
	})
	if err != nil {
		return nil, fmt.Errorf("inference: describe transform job %s: %w", jobName, err)
	}
	status := &TransformStatus{
		JobName: jobName,
		Status:  string(out.TransformJobStatus),
	}
	if out.FailureReason != nil {
		status.FailureReason = *out.FailureReason
	}
	if out.CreationTime != nil {
		status.CreatedAt = *out.CreationTime
	}
	return status, nil
}
