// Package gputest provides a headless GPU device for tests that need one.
package gputest

import (
	"os"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

// EnvVar enables GPU tests when set to "1".
const EnvVar = "ORBITAL_GPU_TESTS"

var (
	once   sync.Once
	device *wgpu.Device
	queue  *wgpu.Queue
	setup  error
)

// Device returns a shared headless device and its queue, skipping the test unless
// ORBITAL_GPU_TESTS=1.
func Device(t testing.TB) (*wgpu.Device, *wgpu.Queue) {
	t.Helper()
	if os.Getenv(EnvVar) != "1" {
		t.Skipf("set %s=1 to run GPU tests", EnvVar)
	}

	once.Do(func() {
		instance := wgpu.CreateInstance(nil)
		adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			ForceFallbackAdapter: os.Getenv("ORBITAL_FORCE_FALLBACK_ADAPTER") == "1",
		})
		if err != nil {
			setup = err
			return
		}
		device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Test Device"})
		if err != nil {
			setup = err
			return
		}
		queue = device.GetQueue()
	})

	if setup != nil {
		t.Fatalf("no GPU device: %v", setup)
	}
	return device, queue
}
