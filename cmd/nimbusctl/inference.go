package main

import (
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/spf13/cobra"

	"github.com/nimbusworks/nimbus/internal/inference"
)

var (
	packageOut    string
	packageBucket string
	packageKey    string

	transformModel        string
	transformImage        string
	transformRole         string
	transformModelData    string
	transformInstanceType string
	transformInput        string
	transformOutput       string
)

var packageModelCmd = &cobra.Command{
	Use:   "package-model <model-dir>",
	Short: "Package model artifacts as model.tar.gz and optionally upload to S3",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := inference.PackageModel(args[0], packageOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Packaged %s into %s\n", args[0], packageOut)
		if packageBucket == "" {
			return nil
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		uri, err := inference.Upload(cmd.Context(), s3.NewFromConfig(awsCfg), packageOut, packageBucket, packageKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to %s\n", uri)
		return nil
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Manage SageMaker batch transform jobs",
}

var transformStartCmd = &cobra.Command{
	Use:   "start <job-name>",
	Short: "Create the model (when an image is given) and start a batch transform job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		ops := inference.NewOps(sagemaker.NewFromConfig(awsCfg))
		if transformImage != "" {
			err := ops.CreateModel(cmd.Context(), inference.ModelSpec{
				Name:         transformModel,
				Image:        transformImage,
				ModelDataURL: transformModelData,
				RoleARN:      transformRole,
			})
			if err != nil {
				return err
			}
		}
		err = ops.StartBatchTransform(cmd.Context(), inference.TransformSpec{
			JobName:      args[0],
			ModelName:    transformModel,
			InstanceType: transformInstanceType,
			InputS3URI:   transformInput,
			OutputS3URI:  transformOutput,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started transform job %s\n", args[0])
		return nil
	},
}

var transformStatusCmd = &cobra.Command{
	Use:   "status <job-name>",
	Short: "Show the status of a batch transform job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		status, err := inference.NewOps(sagemaker.NewFromConfig(awsCfg)).DescribeTransform(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Job:     %s\nStatus:  %s\n", status.JobName, status.Status)
		if !status.CreatedAt.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", status.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		}
		if status.FailureReason != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Failure: %s\n", status.FailureReason)
		}
		return nil
	},
}

func init() {
	packageModelCmd.Flags().StringVarP(&packageOut, "out", "o", "model.tar.gz", "archive output path")
	packageModelCmd.Flags().StringVar(&packageBucket, "bucket", "", "S3 bucket to upload to (skips upload when empty)")
	packageModelCmd.Flags().StringVar(&packageKey, "key", "model.tar.gz", "S3 object key")

	transformStartCmd.Flags().StringVar(&transformModel, "model", "", "SageMaker model name")
	transformStartCmd.Flags().StringVar(&transformImage, "image", "", "inference container image (creates the model first)")
	transformStartCmd.Flags().StringVar(&transformModelData, "model-data", "", "model artifact S3 URI")
	transformStartCmd.Flags().StringVar(&transformRole, "role", "", "execution role ARN")
	transformStartCmd.Flags().StringVar(&transformInstanceType, "instance-type", "ml.m5.xlarge", "transform instance type")
	transformStartCmd.Flags().StringVar(&transformInput, "input", "", "input S3 prefix")
	transformStartCmd.Flags().StringVar(&transformOutput, "output", "", "output S3 prefix")
	_ = transformStartCmd.MarkFlagRequired("model")
	_ = transformStartCmd.MarkFlagRequired("input")
	_ = transformStartCmd.MarkFlagRequired("output")

	transformCmd.AddCommand(transformStartCmd, transformStatusCmd)
}
