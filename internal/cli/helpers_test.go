package cli_test

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/recordingking/rkdiag/internal/cli"
)

// syncBuffer is a thread-safe bytes.Buffer for capturing output
// from concurrent probes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// noSleep replaces the real sleep so countdowns finish instantly.
func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

// testEnv builds an Env with safe test defaults. Every capability is a
// mock that succeeds; tests override the pieces they exercise.
func testEnv(opts ...cli.EnvOption) (*cli.Env, *syncBuffer, *syncBuffer) {
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	base := []cli.EnvOption{
		cli.WithStdout(stdout),
		cli.WithStderr(stderr),
		cli.WithGetenv(func(string) string { return "" }),
		cli.WithNow(func() time.Time { return time.Unix(1700000000, 0) }),
		cli.WithSleep(noSleep),
		cli.WithConfigLoader(&mockConfigLoader{}),
		cli.WithClipboard(&fakeClipboard{}),
		cli.WithKeystroker(&mockKeystroker{}),
		cli.WithSynthesizer(&mockSynthesizer{}),
		cli.WithPinger(&mockPinger{}),
		cli.WithTranscriberFactory(&mockTranscriberFactory{transcript: "hello"}),
	}
	env := cli.NewEnv(append(base, opts...)...)
	return env, stdout, stderr
}
