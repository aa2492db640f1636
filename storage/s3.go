package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// S3SlotStore implements a slot store on Amazon S3 or compatible services.
// Write-once semantics come from conditional PutObject (If-None-Match: *):
// S3 rejects the upload with PreconditionFailed when the key already exists.
type S3SlotStore struct {
	client         *s3.S3
	bucketName     string
	prefix         string
	log            *slog.Logger
	locationURI    string
	hasWriteAccess bool
}

// NewS3SlotStore creates a new S3 slot store.
// If accessKey and secretKey are provided, the store will have write access.
// Otherwise requests are anonymous, which is enough for the query path
// against publicly readable buckets.
func NewS3SlotStore(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3SlotStore, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		// Custom endpoints (minio, localstack) need path-style addressing.
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	hasWriteAccess := accessKey != "" && secretKey != ""
	if hasWriteAccess {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	} else {
		cfg.Credentials = credentials.AnonymousCredentials
		log.Warn("No S3 credentials provided - attest writes will fail unless bucket is public writable")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3SlotStore{
		client:         s3.New(sess),
		bucketName:     bucketName,
		prefix:         strings.TrimSuffix(prefix, "/"),
		log:            log,
		locationURI:    uri,
		hasWriteAccess: hasWriteAccess,
	}, nil
}

// PutIfAbsent uploads the slot payload with a conditional write.
// Returns ErrAlreadyExists if the slot object already exists.
func (b *S3SlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	key := b.getObjectKey(addr)

	req, _ := b.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
		ACL:    aws.String("public-read"), // records are world-readable
	})
	req.SetContext(ctx)
	// Conditional create: S3 rejects the upload with PreconditionFailed when
	// the key already exists.
	req.HTTPRequest.Header.Set("If-None-Match", "*")

	if err := req.Send(); err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == "PreconditionFailed" {
			return interfaces.ErrAlreadyExists
		}
		if !b.hasWriteAccess {
			return fmt.Errorf("%w: failed to upload slot to S3 (no write credentials provided): %v", interfaces.ErrBackendUnavailable, err)
		}
		return fmt.Errorf("%w: failed to upload slot to S3: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored attestation slot in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)))

	return nil
}

// Get retrieves a slot payload from S3 by address.
// Returns ErrNotFound if the object doesn't exist.
func (b *S3SlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	start := time.Now()
	key := b.getObjectKey(addr)

	result, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "404") {
			b.log.Debug("Attestation slot not found in S3",
				slog.String("bucket", b.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrNotFound
		}

		b.log.Error("Failed to get slot object from S3",
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: failed to get slot object from S3: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read slot object body: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Fetched attestation slot from S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Available checks if the S3 store is accessible by heading the bucket.
func (b *S3SlotStore) Available(ctx context.Context) bool {
	_, err := b.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucketName),
	})
	if err != nil {
		b.log.Warn("S3 slot store unavailable",
			slog.String("bucket", b.bucketName),
			"err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this slot store.
func (b *S3SlotStore) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this slot store.
func (b *S3SlotStore) LocationURI() string {
	return b.locationURI
}

func (b *S3SlotStore) getObjectKey(addr interfaces.SlotAddress) string {
	if b.prefix == "" {
		return addr.String()
	}
	return path.Join(b.prefix, addr.String())
}
