// Package main packages and deploys the MyCity Lambda function.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mycity/internal/deploy"
	"mycity/internal/logging"
)

type flags struct {
	pkg     bool
	root    string
	main    string
	goarch  string
	assets  []string
	bucket  string
	key     string
	verbose bool
}

// packageFunc is swapped in tests.
var packageFunc = deploy.Package

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "deploy-tools",
		Short:         "Tools to package and deploy the lambda function for the MyCity app",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().BoolVarP(&f.pkg, "package", "p", false, "Create a zip file that can be uploaded as a Lambda function")
	cmd.Flags().StringVar(&f.root, "root", "", "Project root (defaults to the working directory)")
	cmd.Flags().StringVar(&f.main, "main", "./cmd/mycity-lambda", "Main package to build as bootstrap")
	cmd.Flags().StringVar(&f.goarch, "goarch", "amd64", "Target architecture (amd64 or arm64)")
	cmd.Flags().StringArrayVar(&f.assets, "asset", nil, "Extra file to include in the bundle (repeatable)")
	cmd.Flags().StringVar(&f.bucket, "bucket", "", "Upload the zip to this S3 bucket")
	cmd.Flags().StringVar(&f.key, "key", deploy.ZipFileName, "S3 object key for the upload")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func run(ctx context.Context, out io.Writer, f flags) error {
	if !f.pkg {
		fmt.Fprintln(out, "No known option selected")
		return nil
	}

	logger, err := logging.NewVerbose(os.Getenv("LOG_LEVEL"), f.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := deploy.Options{
		ProjectRoot: f.root,
		MainPackage: f.main,
		GOARCH:      f.goarch,
		Assets:      f.assets,
		Bucket:      f.bucket,
		Key:         f.key,
		Log:         logger,
	}
	if f.bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		opts.Uploader = s3.NewFromConfig(awsCfg)
	}

	zipPath, err := packageFunc(ctx, opts)
	if err != nil {
		return err
	}
	logger.Info("package ready", zap.String("zip", zipPath))
	fmt.Fprintln(out, zipPath)
	return nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
