package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
)

// S3Config 对象存储配置
type S3Config struct {
	Bucket       string // 存储桶
	Prefix       string // 对象键前缀
	Region       string // 区域 (默认: us-east-1)
	Endpoint     string // 兼容S3的自定义端点(MinIO、CDN厂商存储)
	AccessKey    string // 为空时使用默认凭证链
	SecretKey    string
	UsePathStyle bool
}

// fontContentTypes 优先于系统 mime 表的类型,字体在很多系统上缺失
var fontContentTypes = map[string]string{
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
	".svg":   "image/svg+xml",
	".js":    "application/javascript",
	".css":   "text/css",
}

// S3Uploader 把本地资源文件上传到S3兼容的对象存储
// 实现 core.Uploader 接口
type S3Uploader struct {
	client *s3.Client
	fs     afero.Fs
	config S3Config
}

// NewS3Uploader 创建上传器
func NewS3Uploader(ctx context.Context, fs afero.Fs, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("未配置上传存储桶 (upload.bucket)")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" || cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				// 大多数兼容S3的存储只支持路径风格
				o.UsePathStyle = true
			}
			if cfg.UsePathStyle {
				o.UsePathStyle = true
			}
		})
	}

	utils.Infof("对象存储已初始化: bucket=%s prefix=%s region=%s endpoint=%s",
		cfg.Bucket, cfg.Prefix, cfg.Region, cfg.Endpoint)

	return &S3Uploader{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		fs:     fs,
		config: cfg,
	}, nil
}

// Upload 上传单个文件
func (u *S3Uploader) Upload(ctx context.Context, localPath, remotePath string) error {
	file, err := u.fs.Open(localPath)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("读取文件信息失败: %w", err)
	}

	key := u.fullKey(remotePath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.config.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentTypeFor(remotePath)),
	})
	if err != nil {
		return fmt.Errorf("上传对象失败 [%s]: %w", key, err)
	}

	utils.Debugf("已上传 %s -> s3://%s/%s", localPath, u.config.Bucket, key)
	return nil
}

// fullKey 返回带前缀的对象键
func (u *S3Uploader) fullKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if u.config.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(u.config.Prefix, "/") + "/" + key
}

// contentTypeFor 按扩展名推断 Content-Type
func contentTypeFor(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := fontContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
