package whirlwind

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/assert"
	"pkg.whirlwind.dev/whirlwind/worldstage"
)

// TestWhirlwind is a helper struct that manages an App instance. It will automatically clean up its resources
// at the end of the test.
type TestWhirlwind struct {
	testing.TB
	*App

	// BaseURL is something like "localhost:5050". You must attach http:// as well as a resource path.
	BaseURL string
	Redis   *miniredis.Miniredis

	FrameTrigger chan time.Time
	FrameDone    chan uint64

	doCleanup func()
	startOnce *sync.Once
}

// NewTestWhirlwind creates a test fixture with a random open port for integration tests. Passing a nil redis
// starts a fresh miniredis; passing an existing one lets two fixtures share snapshot storage, which is how
// recovery is tested.
func NewTestWhirlwind(t testing.TB, redis *miniredis.Miniredis, opts ...AppOption) *TestWhirlwind {
	if redis == nil {
		redis = miniredis.RunT(t)
	}

	port, err := findOpenPort()
	assert.NilError(t, err)

	t.Setenv("WHIRLWIND_LOG_PRETTY", "true")
	t.Setenv("WHIRLWIND_PORT", port)
	t.Setenv("REDIS_ADDRESS", redis.Addr())

	frameTrigger, frameDoneCh := make(chan time.Time), make(chan uint64)

	defaultOpts := []AppOption{
		WithFrameChannel(frameTrigger),
		WithFrameDoneChannel(frameDoneCh),
	}

	// Default options go first so that any user supplied options overwrite the defaults.
	app, err := NewApp(append(defaultOpts, opts...)...)
	assert.NilError(t, err)

	return &TestWhirlwind{
		TB:  t,
		App: app,

		BaseURL: "localhost:" + port,
		Redis:   redis,

		FrameTrigger: frameTrigger,
		FrameDone:    frameDoneCh,

		startOnce: &sync.Once{},
		// Only register this method with t.Cleanup if the app is actually started
		doCleanup: func() {
			// First, make sure completed frames will never be blocked
			go func() {
				for range frameDoneCh { //nolint:revive // This pattern drains the channel until closed
				}
			}()

			// Next, shut down the app
			assert.NilError(t, app.Shutdown())

			// The app is shut down; No more frames will be started
			close(frameTrigger)
		},
	}
}

// StartApp starts the app and registers a cleanup function that will shut it down at the end of the test.
// Components, resources, schedules and systems should be registered before calling this function.
func (c *TestWhirlwind) StartApp() {
	c.startOnce.Do(func() {
		startupError := make(chan error, 1)
		go func() {
			// Start is meant to block forever, so any return value will be non-nil and cause for concern.
			// Also, calling t.Fatal from a non-main thread only reports a failure once the test on the main
			// thread has completed. By sending this error out on a channel we can fail the test right away.
			startupError <- c.App.Start()
		}()

		// Wait for the app to reach the running stage, or fail fast if startup errored out.
		select {
		case <-c.App.worldStage.NotifyOnStage(worldstage.Running):
		case err := <-startupError:
			c.Fatalf("app failed to start: %v", err)
		}

		c.Cleanup(c.doCleanup)
	})
}

// DoFrame executes one frame and blocks until the frame is complete. StartApp is automatically called if it
// was not called before the first frame.
func (c *TestWhirlwind) DoFrame() {
	c.StartApp()
	c.FrameTrigger <- time.Now()
	<-c.FrameDone
}

func (c *TestWhirlwind) httpURL(path string) string {
	return fmt.Sprintf("http://%s/%s", c.BaseURL, path)
}

// Post executes a http POST request to this TestWhirlwind's server.
func (c *TestWhirlwind) Post(path string, payload any) *http.Response {
	bz, err := json.Marshal(payload)
	assert.NilError(c, err)
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		c.httpURL(strings.Trim(path, "/")),
		bytes.NewReader(bz),
	)
	assert.NilError(c, err)
	req.Header.Add("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	assert.NilError(c, err)
	return resp
}

// Get executes a http GET request to this TestWhirlwind's server.
func (c *TestWhirlwind) Get(path string) *http.Response {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.httpURL(strings.Trim(path, "/")),
		nil)
	assert.NilError(c, err)
	resp, err := http.DefaultClient.Do(req)
	assert.NilError(c, err)
	return resp
}

// findOpenPort finds an open port and returns it as a string.
func findOpenPort() (string, error) {
	findFn := func() (string, error) {
		// Try to get a random port using the wildcard 0 port
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return "", eris.Wrap(err, "failed to initialize listener")
		}

		// Get the automatically assigned port number from the listener
		tcpAddr, err := net.ResolveTCPAddr(l.Addr().Network(), l.Addr().String())
		if err != nil {
			return "", eris.Wrap(err, "failed to resolve address")
		}

		// Close the listener when the function returns
		err = l.Close()
		if err != nil {
			return "", eris.Wrap(err, "failed to close listener")
		}
		return strconv.Itoa(tcpAddr.Port), nil
	}

	for retries := 10; retries > 0; retries-- {
		port, err := findFn()
		if err == nil {
			return port, nil
		}
		time.Sleep(10 * time.Millisecond) //nolint:gomnd // it's fine.
	}

	return "", eris.New("failed to find an open port")
}
