package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestServeUntilShutdownStopsOnContextCancel(t *testing.T) {
	RegisterTestingT(t)

	ctx, cancel := context.WithCancel(context.Background())

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

	done := make(chan error, 1)

	go func() {
		done <- serveUntilShutdown(ctx, srv)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	Eventually(done, 2*time.Second).Should(Receive(BeNil()))
}

func TestServeUntilShutdownReportsListenerFailure(t *testing.T) {
	RegisterTestingT(t)

	srv := &http.Server{Addr: "256.256.256.256:0"}

	err := serveUntilShutdown(context.Background(), srv)

	Expect(err).To(HaveOccurred())
}
