// Package testutil starts throwaway database servers for the storage
// integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// startupTimeout is generous for CI environments pulling images.
const startupTimeout = 3 * time.Minute

// run starts image and returns its host:port endpoint. The container is
// removed when t finishes. Tests are skipped under -short or when no
// container runtime is available.
func run(t *testing.T, image string, opts ...testcontainers.ContainerCustomizer) string {
	t.Helper()
	if testing.Short() {
		t.Skipf("skipping %s container test in short mode", image)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	c, err := testcontainers.Run(ctx, image, opts...)
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Skipf("cannot start %s container: %v", image, err)
	}

	endpoint, err := c.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("resolve %s endpoint: %v", image, err)
	}
	return endpoint
}
