package whirlwind_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"pkg.whirlwind.dev/whirlwind"
	"pkg.whirlwind.dev/whirlwind/assert"
	"pkg.whirlwind.dev/whirlwind/server"
	"pkg.whirlwind.dev/whirlwind/types"
)

type PlayerHealth struct {
	HP int
}

func (PlayerHealth) Name() string { return "playerHealth" }

type Stamina struct {
	Value int
}

func (Stamina) Name() string { return "stamina" }

type MatchClock struct {
	Frame uint64
}

func (MatchClock) Name() string { return "matchClock" }

// RegenSystem heals every player by one HP per frame.
func RegenSystem(w *whirlwind.World) error {
	for _, player := range whirlwind.Query[PlayerHealth](w) {
		player.Component.HP++
	}
	return nil
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)
	assert.NilError(t, resp.Body.Close())
	return string(body)
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NilError(t, resp.Body.Close())
	return out
}

func TestApp_FramesRunTheUpdateSchedule(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	world := tf.World()

	whirlwind.MustRegisterComponent[PlayerHealth](world)
	player := world.Spawn(PlayerHealth{HP: 10})
	assert.NilError(t, player.Err())
	assert.NilError(t, world.AddSystems("update", RegenSystem))

	assert.Equal(t, uint64(0), tf.CurrentFrame())
	for i := 0; i < 3; i++ {
		tf.DoFrame()
	}
	assert.Equal(t, uint64(3), tf.CurrentFrame())

	health, err := whirlwind.GetComponent[PlayerHealth](world, player.ID())
	assert.NilError(t, err)
	assert.Equal(t, 13, health.HP)
}

func TestApp_StartingTwiceFails(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	tf.StartApp()
	assert.ErrorContains(t, tf.App.Start(), "app has already been started")
}

func TestApp_ShutdownBeforeStartFails(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "")
	app, err := whirlwind.NewApp()
	assert.NilError(t, err)
	assert.ErrorContains(t, app.Shutdown(), "shutdown attempted before the app was started")
}

func TestApp_CanWaitForNextFrame(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	tf.StartApp()
	tf.DoFrame()

	waitForNextFrameDone := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			success := tf.WaitForNextFrame()
			assert.Check(t, success)
		}
		close(waitForNextFrameDone)
	}()

	for {
		select {
		case tf.FrameTrigger <- time.Now():
			<-tf.FrameDone
		case <-waitForNextFrameDone:
			// The above goroutine successfully waited multiple times
			return
		}
	}
}

func TestApp_WaitForNextFrameReturnsFalseWhenAppIsShutDown(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	tf.StartApp()
	tf.DoFrame()

	waitForNextFrameDone := make(chan struct{})
	go func() {
		// continually spin here waiting for next frame. One of these must fail before
		// the test times out for this test to pass
		for tf.WaitForNextFrame() {
		}
		close(waitForNextFrameDone)
	}()

	// Shutdown the app at some point in the near future
	time.AfterFunc(
		100*time.Millisecond, func() {
			assert.NilError(t, tf.App.Shutdown())
		},
	)
	// testTimeout will cause the test to fail if we have to wait too long for a WaitForNextFrame failure
	testTimeout := time.After(5 * time.Second)
	for {
		select {
		case tf.FrameTrigger <- time.Now():
			time.Sleep(10 * time.Millisecond)
			<-tf.FrameDone
		case <-testTimeout:
			assert.Check(t, false, "test timeout")
			return
		case <-waitForNextFrameDone:
			// WaitForNextFrame failed, meaning this test was successful
			return
		}
	}
}

func TestApp_HealthEndpoint(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	tf.StartApp()

	resp := tf.Get("health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isServerRunning":true,"isFrameLoopRunning":true}`, readBody(t, resp))
}

func TestApp_DebugStateEndpoint(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	world := tf.World()

	whirlwind.MustRegisterComponent[PlayerHealth](world)
	whirlwind.MustRegisterComponent[Stamina](world)
	assert.NilError(t, world.Spawn(PlayerHealth{HP: 10}, Stamina{Value: 5}).Err())
	assert.NilError(t, world.Spawn(PlayerHealth{HP: 20}).Err())
	tf.StartApp()

	resp := tf.Post("debug/state", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	state := decodeBody[types.DebugState](t, resp)
	assert.Len(t, state, 2)

	assert.Equal(t, types.EntityID(0), state[0].ID)
	assert.Len(t, state[0].Components, 2)
	assert.JSONEq(t, `{"HP":10}`, string(state[0].Components["playerHealth"]))
	assert.JSONEq(t, `{"Value":5}`, string(state[0].Components["stamina"]))

	assert.Equal(t, types.EntityID(1), state[1].ID)
	assert.Len(t, state[1].Components, 1)
	assert.JSONEq(t, `{"HP":20}`, string(state[1].Components["playerHealth"]))
}

func TestApp_DebugResourcesEndpoint(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	whirlwind.InsertResource(tf.World(), MatchClock{Frame: 99})
	tf.StartApp()

	resp := tf.Post("debug/resources", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resources := decodeBody[[]types.DebugResourceElement](t, resp)
	assert.Len(t, resources, 1)
	assert.Equal(t, "matchClock", resources[0].Name)
	assert.JSONEq(t, `{"Frame":99}`, string(resources[0].Value))
}

func TestApp_SchedulesEndpoint(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	assert.NilError(t, tf.World().AddSystems("update", RegenSystem))
	tf.StartApp()

	resp := tf.Get("debug/schedules")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	schedules := decodeBody[[]types.ScheduleInfo](t, resp)
	assert.Len(t, schedules, 1)
	assert.Equal(t, "update", schedules[0].Name)
	assert.Len(t, schedules[0].Systems, 1)
	assert.True(t, strings.Contains(schedules[0].Systems[0], "RegenSystem"))
}

func TestApp_WQLEndpoint(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	world := tf.World()

	whirlwind.MustRegisterComponent[PlayerHealth](world)
	whirlwind.MustRegisterComponent[Stamina](world)
	assert.NilError(t, world.Spawn(PlayerHealth{HP: 10}).Err())
	assert.NilError(t, world.Spawn(PlayerHealth{HP: 20}, Stamina{Value: 5}).Err())
	assert.NilError(t, world.Spawn(PlayerHealth{HP: 30}).Err())
	tf.StartApp()

	resp := tf.Post("wql", server.WQLQueryRequest{WQL: "HAS(playerHealth) & !HAS(stamina)"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[server.WQLQueryResponse](t, resp)
	assert.Len(t, result.Results, 2)
	assert.Equal(t, types.EntityID(0), result.Results[0].ID)
	assert.JSONEq(t, `{"HP":10}`, string(result.Results[0].Components["playerHealth"]))
	assert.Equal(t, types.EntityID(2), result.Results[1].ID)
	assert.JSONEq(t, `{"HP":30}`, string(result.Results[1].Components["playerHealth"]))
}

func TestApp_WQLEndpointRejectsBadQueries(t *testing.T) {
	tf := whirlwind.NewTestWhirlwind(t, nil)
	whirlwind.MustRegisterComponent[PlayerHealth](tf.World())
	tf.StartApp()

	// A component name that was never registered
	resp := tf.Post("wql", server.WQLQueryRequest{WQL: "HAS(bogus)"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.Contains(readBody(t, resp), "bogus"))

	// A query that does not parse at all
	resp = tf.Post("wql", server.WQLQueryRequest{WQL: "HAS(playerHealth) &"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApp_RecoversFromSnapshot(t *testing.T) {
	t.Setenv("WHIRLWIND_SNAPSHOT_INTERVAL", "1")
	rs := miniredis.RunT(t)

	one := whirlwind.NewTestWhirlwind(t, rs)
	whirlwind.MustRegisterComponent[PlayerHealth](one.World())
	whirlwind.InsertResource(one.World(), MatchClock{Frame: 7})
	assert.NilError(t, one.World().Spawn(PlayerHealth{HP: 10}).Err())
	assert.NilError(t, one.World().Spawn(PlayerHealth{HP: 20}).Err())
	for i := 0; i < 3; i++ {
		one.DoFrame()
	}
	assert.Equal(t, uint64(3), one.CurrentFrame())

	// A second app under the same namespace and redis picks up where the
	// first one left off. Every component and resource in the snapshot must
	// be registered again before the world starts.
	two := whirlwind.NewTestWhirlwind(t, rs)
	whirlwind.MustRegisterComponent[PlayerHealth](two.World())
	whirlwind.InitResource[MatchClock](two.World())
	two.StartApp()

	assert.Equal(t, uint64(3), two.CurrentFrame())
	assert.Equal(t, 2, two.World().EntityCount())

	first, err := whirlwind.GetComponent[PlayerHealth](two.World(), 0)
	assert.NilError(t, err)
	assert.Equal(t, 10, first.HP)
	second, err := whirlwind.GetComponent[PlayerHealth](two.World(), 1)
	assert.NilError(t, err)
	assert.Equal(t, 20, second.HP)

	clock, err := whirlwind.GetResource[MatchClock](two.World())
	assert.NilError(t, err)
	assert.Equal(t, uint64(7), clock.Frame)
}
