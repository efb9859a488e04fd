// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package backblaze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog"
)

var (
	ErrBucketNotFound = errors.New("bucket not found")
)

// Uploader stores exported files in a backblaze b2 bucket
type Uploader struct {
	KeyID          string
	ApplicationKey string
	BucketName     string
}

// Upload saves fn to the bucket as dirname/<base name of fn>
func (uploader *Uploader) Upload(ctx context.Context, fn, dirname string) error {
	logger := zerolog.Ctx(ctx)

	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          uploader.KeyID,
		ApplicationKey: uploader.ApplicationKey,
	})
	if err != nil {
		logger.Error().Err(err).Str("BucketName", uploader.BucketName).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(uploader.BucketName)
	if err != nil {
		logger.Error().Err(err).Str("BucketName", uploader.BucketName).Msg("lookup bucket failed")
		return err
	}

	if bucket == nil {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, uploader.BucketName)
	}

	reader, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer reader.Close()

	outName := fmt.Sprintf("%s/%s", dirname, filepath.Base(fn))

	file, err := bucket.UploadFile(outName, map[string]string{}, reader)
	if err != nil {
		logger.Error().Err(err).Str("FileName", outName).Str("BucketName", uploader.BucketName).Msg("save file to backblaze failed")
		return err
	}

	logger.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded export to backblaze")

	return nil
}
