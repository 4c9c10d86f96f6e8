// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gcs uploads result tables to Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type Client struct {
	storageClient *storage.Client
	ProjectId     string
	BucketName    string
}

// NewClient builds a storage client for the given bucket.
//
// Description:
//
//	When saKeyPath is non-empty the file must exist and is used as the
//	credential source. An empty saKeyPath falls through to Application
//	Default Credentials, which covers workstations with gcloud auth and
//	GCE/GKE workloads with attached service accounts.
//
// Inputs:
//   - ctx: request context.
//   - projectId: GCP project owning the bucket.
//   - bucketName: destination bucket, without the gs:// prefix.
//   - saKeyPath: optional service account JSON key.
//
// Outputs:
//   - *Client: ready for uploads.
//   - error: missing key file or credential failure.
func NewClient(ctx context.Context, projectId, bucketName, saKeyPath string) (*Client, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s. Please ensure you have the correct key and it is accessible", saKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{
		storageClient: storageClient,
		ProjectId:     projectId,
		BucketName:    bucketName,
	}, nil
}

// ObjectURI returns the gs:// URI an object path resolves to.
func (c *Client) ObjectURI(gcsPath string) string {
	return fmt.Sprintf("gs://%s/%s", c.BucketName, gcsPath)
}

// Close releases the underlying storage connection.
func (c *Client) Close() error {
	return c.storageClient.Close()
}

// contentTypeFor maps result file extensions to upload content types so
// browser downloads and BigQuery external tables see tabular data as text.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		return "text/tab-separated-values"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func (c *Client) UploadFile(ctx context.Context, localPath, gcsPath string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open the local file: %s: %w", localPath, err)
	}
	defer localFile.Close()

	// Get a writer for the GCS object
	obj := c.storageClient.Bucket(c.BucketName).Object(gcsPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentTypeFor(localPath)
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, localFile); err != nil {
		return fmt.Errorf("failed to copy local file %s to GCS object %s: %w", localPath, gcsPath, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", gcsPath, err)
	}
	return nil
}

// UploadFunc is invoked after each successful file upload within UploadDir.
type UploadFunc func(localPath, gcsPath string)

// UploadDir uploads every regular file under localDir.
//
// Description:
//
//	Walks localDir and uploads each file to gcsPrefix, preserving the
//	relative directory layout. onUpload, when non-nil, is called once per
//	uploaded file so callers can report progress without the client
//	printing anything itself.
//
// Outputs:
//   - int: number of files uploaded.
//   - error: first upload or walk failure; uploads stop at that point.
func (c *Client) UploadDir(ctx context.Context, localDir, gcsPrefix string, onUpload UploadFunc) (int, error) {
	uploaded := 0
	err := filepath.Walk(localDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return err
		}
		gcsPath := filepath.ToSlash(filepath.Join(gcsPrefix, rel))
		if err := c.UploadFile(ctx, path, gcsPath); err != nil {
			return err
		}
		uploaded++
		if onUpload != nil {
			onUpload(path, gcsPath)
		}
		return nil
	})
	return uploaded, err
}
