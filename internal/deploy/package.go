package deploy

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	ZipFileName   = "lambda_function.zip"
	BootstrapName = "bootstrap"
	StagingName   = "temp"
)

// BuildSpec describes one Lambda binary build.
type BuildSpec struct {
	ProjectRoot string
	MainPackage string
	Output      string
	GOARCH      string
}

// BuildFunc produces the bootstrap binary at spec.Output.
type BuildFunc func(ctx context.Context, spec BuildSpec) error

type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	ProjectRoot string
	MainPackage string
	GOARCH      string
	// Assets are copied into the root of the bundle next to bootstrap.
	Assets []string

	Bucket   string
	Key      string
	Uploader Uploader

	Build BuildFunc
	Log   *zap.Logger
}

func (o *Options) defaults() error {
	if o.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		o.ProjectRoot = wd
	}
	if o.MainPackage == "" {
		o.MainPackage = "./cmd/mycity-lambda"
	}
	if o.GOARCH == "" {
		o.GOARCH = "amd64"
	}
	if o.Key == "" {
		o.Key = ZipFileName
	}
	if o.Build == nil {
		o.Build = GoBuild
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Bucket != "" && o.Uploader == nil {
		return fmt.Errorf("bucket %s given without an uploader", o.Bucket)
	}
	return nil
}

// Package builds the bootstrap binary in a staging directory under the
// project root, zips the staging contents into <root>/lambda_function.zip
// and, when a bucket is set, uploads the zip. It returns the zip path.
func Package(ctx context.Context, opts Options) (string, error) {
	if err := opts.defaults(); err != nil {
		return "", err
	}
	log := opts.Log
	zipPath := filepath.Join(opts.ProjectRoot, ZipFileName)
	staging := filepath.Join(opts.ProjectRoot, StagingName)

	err := WithStagingDir(staging, func(dir string) error {
		log.Info("building bootstrap", zap.String("package", opts.MainPackage), zap.String("goarch", opts.GOARCH))
		if err := opts.Build(ctx, BuildSpec{
			ProjectRoot: opts.ProjectRoot,
			MainPackage: opts.MainPackage,
			Output:      filepath.Join(dir, BootstrapName),
			GOARCH:      opts.GOARCH,
		}); err != nil {
			return fmt.Errorf("build: %w", err)
		}

		for _, a := range opts.Assets {
			src := a
			if !filepath.IsAbs(src) {
				src = filepath.Join(opts.ProjectRoot, a)
			}
			if err := copyFile(src, filepath.Join(dir, filepath.Base(a))); err != nil {
				return fmt.Errorf("copy asset %s: %w", a, err)
			}
		}

		log.Info("compressing", zap.String("zip", zipPath))
		return ZipDir(dir, zipPath)
	})
	if err != nil {
		return "", err
	}

	if opts.Bucket != "" {
		if err := upload(ctx, opts.Uploader, opts.Bucket, opts.Key, zipPath); err != nil {
			return "", err
		}
		log.Info("uploaded", zap.String("bucket", opts.Bucket), zap.String("key", opts.Key))
	}
	return zipPath, nil
}

// GoBuild cross-compiles a static Linux binary with the go tool.
func GoBuild(ctx context.Context, spec BuildSpec) error {
	cmd := exec.CommandContext(ctx, "go", "build", "-tags", "lambda.norpc", "-trimpath",
		"-ldflags", "-s -w", "-o", spec.Output, spec.MainPackage)
	cmd.Dir = spec.ProjectRoot
	cmd.Env = append(os.Environ(), "GOOS=linux", "GOARCH="+spec.GOARCH, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ZipDir writes every regular file under dir into a zip at dest, with
// paths relative to dir and no enclosing directory.
func ZipDir(dir, dest string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		return walkErr
	}
	return zw.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func upload(ctx context.Context, u Uploader, bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("s3 putobject failed: %w", err)
	}
	return nil
}
