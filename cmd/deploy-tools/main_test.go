package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycity/internal/deploy"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestNoOption(t *testing.T) {
	assert.Equal(t, "No known option selected\n", execute(t))
}

func TestPackageFlag(t *testing.T) {
	var got deploy.Options
	packageFunc = func(_ context.Context, opts deploy.Options) (string, error) {
		got = opts
		return "/tmp/root/lambda_function.zip", nil
	}
	t.Cleanup(func() { packageFunc = deploy.Package })

	for _, flag := range []string{"-p", "--package"} {
		out := execute(t, flag, "--root", "/tmp/root", "--goarch", "arm64", "--asset", "a.yaml", "--asset", "b.yaml")
		assert.Equal(t, "/tmp/root/lambda_function.zip\n", out)
		assert.Equal(t, "/tmp/root", got.ProjectRoot)
		assert.Equal(t, "arm64", got.GOARCH)
		assert.Equal(t, "./cmd/mycity-lambda", got.MainPackage)
		assert.Equal(t, []string{"a.yaml", "b.yaml"}, got.Assets)
		assert.Nil(t, got.Uploader)
	}
}
