package inference

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PackageModel writes the regular files of modelDir into a model.tar.gz at
// outputPath, with entries rooted at "." the way SageMaker expects.
// Subdirectories are skipped.
func PackageModel(modelDir, outputPath string) error {
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		return fmt.Errorf("inference: read model dir: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("inference: create archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := addFile(tw, filepath.Join(modelDir, entry.Name()), entry.Name()); err != nil {
			return err
		}
		slog.Debug("packaged model file", "file", entry.Name())
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("inference: close tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("inference: close gzip: %w", err)
	}
	slog.Info("model packaged", "dir", modelDir, "archive", outputPath)
	return nil
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("inference: open model file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("inference: stat model file: %w", err)
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("inference: tar header: %w", err)
	}
	header.Name = "./" + name
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("inference: write tar header: %w", err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("inference: write tar entry: %w", err)
	}
	return nil
}

// Upload puts a packaged model archive at s3://bucket/key and returns the
// S3 URI.
func Upload(ctx context.Context, client PutObjectAPI, archivePath, bucket, key string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("inference: open archive: %w", err)
	}
	defer f.Close()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("inference: upload model: %w", err)
	}
	uri := fmt.Sprintf("s3://%s/%s", bucket, key)
	slog.Info("model uploaded", "uri", uri)
	return uri, nil
}
