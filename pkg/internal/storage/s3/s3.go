// Package s3 处理 S3 兼容对象存储操作，用于上传元数据快照.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/oxygen/pkg/configs"
	nlog "github.com/yeisme/oxygen/pkg/log"
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client
	cfg configs.S3Config
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	c := *cfg
	endpoint := c.Endpoint

	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			c.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("oxygen", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, c.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, c.BucketName, minio.MakeBucketOptions{Region: c.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", c.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", c.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", c.Endpoint).Str("bucket", c.BucketName).Msg("s3 connected")

	return &Client{Client: cli, cfg: c}, nil
}

// ObjectKey 在配置的前缀下拼接对象键.
func (c *Client) ObjectKey(parts ...string) string {
	return path.Join(append([]string{c.cfg.Prefix}, parts...)...)
}

// PutBytes 上传一段内存数据.
func (c *Client) PutBytes(ctx context.Context, key, contentType string, data []byte) (minio.UploadInfo, error) {
	info, err := c.PutObject(ctx, c.cfg.BucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return info, fmt.Errorf("put object %s: %w", key, err)
	}

	return info, nil
}

// HealthCheck 通过检查桶存在性验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.BucketExists(ctx, c.cfg.BucketName)
	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}
