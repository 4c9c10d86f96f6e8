// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/MetapathFOSS/cmd/metapath/config"
	"github.com/AleutianAI/MetapathFOSS/cmd/metapath/gcs"
	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
)

// runPublish uploads a directory of result tables to GCS.
func runPublish(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	info, err := os.Stat(publishDir)
	if err != nil || !info.IsDir() {
		failUsage(fmt.Sprintf("--results-dir %s is not a readable directory", publishDir))
	}

	bucket := publishBucket
	if bucket == "" {
		bucket = config.Global.Publish.Bucket
	}
	if bucket == "" {
		failUsage("--bucket is required (or set publish.bucket in the config)")
	}
	project := publishProject
	if project == "" {
		project = config.Global.Publish.Project
	}
	saKey := publishSAKey
	if saKey == "" {
		saKey = config.Global.Publish.SAKeyPath
	}
	prefix := publishPrefix
	if prefix == "" {
		prefix = "runs/" + time.Now().UTC().Format("2006-01-02")
	}

	if !publishYes && ux.IsInteractive() {
		proceed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Upload %s to gs://%s/%s?", publishDir, bucket, prefix)).
			Affirmative("Upload").
			Negative("Cancel").
			Value(&proceed).
			Run()
		if err != nil {
			fail("confirmation prompt failed", err)
		}
		if !proceed {
			ux.Warning("publish aborted, nothing uploaded")
			os.Exit(exitFailure)
		}
	}

	cliLogger.Info("publishing results",
		"dir", publishDir,
		"bucket", bucket,
		"prefix", prefix)

	client, err := gcs.NewClient(ctx, project, bucket, saKey)
	if err != nil {
		fail("cannot connect to GCS", err)
	}
	defer func() { _ = client.Close() }()

	n, err := client.UploadDir(ctx, publishDir, prefix, func(local, remote string) {
		ux.FileStatus(remote, ux.IconSuccess, "uploaded")
	})
	if err != nil {
		fail(fmt.Sprintf("upload failed after %d file(s)", n), err)
	}
	if n == 0 {
		ux.Warning(fmt.Sprintf("no files found under %s", publishDir))
		return
	}

	ux.Success(fmt.Sprintf("published %d table(s) to %s", n, client.ObjectURI(prefix)))
}
