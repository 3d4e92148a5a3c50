// Package archive ships completed conversation transcripts to S3-compatible
// storage. Everything here is best effort and off the reply critical path.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"beliefshift/internal/interview/entity"
)

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Store struct {
	client *minio.Client
	bucket string

	ensured bool
}

// New connects to the configured endpoint. The bucket is created lazily on
// first archive.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("archive: endpoint required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: connect %s: %w", endpoint, err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	if s.ensured {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	s.ensured = true
	return nil
}

// Archive uploads the conversation as a JSON object keyed by participant and
// conversation.
func (s *Store) Archive(ctx context.Context, conv entity.Conversation) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("archive: ensure bucket: %w", err)
	}
	b, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	key := fmt.Sprintf("transcripts/%s/%s.json", conv.ParticipantID, conv.ConversationID)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("archive: put %s: %w", key, err)
	}
	return nil
}
