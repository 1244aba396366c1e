package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/common"
	"github.com/quorumvault/custodian/config"
)

// ArchiveStorage keeps xz-compressed wallet statements in an S3 bucket. The
// worker writes one object per wallet per archival run.
type ArchiveStorage struct {
	cfg      config.Config
	session  *session.Session
	s3Client *s3.S3
	logger   *logrus.Logger
}

func NewArchiveStorage(cfg config.Config) (*ArchiveStorage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.BlockStorage.Region),
		Endpoint:         aws.String(cfg.BlockStorage.Host),
		Credentials:      credentials.NewStaticCredentials(cfg.BlockStorage.AccessKey, cfg.BlockStorage.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return &ArchiveStorage{
		cfg:      cfg,
		session:  sess,
		s3Client: s3.New(sess),
		logger:   logrus.WithField("module", "archive_storage").Logger,
	}, nil
}

// UploadStatement compresses and stores a wallet statement under name.
func (as *ArchiveStorage) UploadStatement(ctx context.Context, content []byte, name string) error {
	compressed, err := common.CompressData(content)
	if err != nil {
		return fmt.Errorf("fail to compress statement, err: %w", err)
	}
	as.logger.Infoln("upload statement", name, "bucket", as.cfg.BlockStorage.Bucket, "content length", len(compressed))
	_, err = as.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(as.cfg.BlockStorage.Bucket),
		Key:           aws.String(name),
		Body:          aws.ReadSeekCloser(bytes.NewReader(compressed)),
		ContentLength: aws.Int64(int64(len(compressed))),
	})
	if err != nil {
		as.logger.Error(err)
		return err
	}
	return nil
}

// GetStatement fetches and decompresses a stored statement.
func (as *ArchiveStorage) GetStatement(ctx context.Context, name string) ([]byte, error) {
	output, err := as.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(as.cfg.BlockStorage.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		as.logger.Error("error getting statement: ", err)
		return nil, err
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			as.logger.Error(err)
		}
	}()
	compressed, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	return common.DecompressData(compressed)
}

// StatementExists reports whether a statement object is present.
func (as *ArchiveStorage) StatementExists(ctx context.Context, name string) (bool, error) {
	_, err := as.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(as.cfg.BlockStorage.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}
