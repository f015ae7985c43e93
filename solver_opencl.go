//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// openCLSolver keeps the three timestep slots resident in device memory and
// advances them with a 2D compute dispatch. The command queue is in-order, so
// a blocking ReadSlot is automatically sequenced after every dispatch that
// wrote the slot; no separate host-side fence is needed.
type openCLSolver struct {
	context       *cl.Context
	queue         *cl.CommandQueue
	program       *cl.Program
	stepKernel    *cl.Kernel
	disturbKernel *cl.Kernel
	slots         [slotCount]*cl.MemObject
	width         int
	height        int
	global        []int
	local         []int
	deviceName    string
}

const waveKernelSource = `__kernel void wave_step(
    const int width,
    const int height,
    const float r,
    const float damp,
    __global const float* curr,
    __global const float* before,
    __global float* next_buffer)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= width || y >= height) {
        return;
    }
    if (x == 0 || x == width - 1 || y == 0 || y == height - 1) {
        return;
    }
    int idx = y * width + x;
    float center = curr[idx];
    float laplacian = curr[idx - 1] + curr[idx + 1] + curr[idx - width] + curr[idx + width] - 4.0f * center;
    next_buffer[idx] = (r * laplacian + 2.0f * center - before[idx]) * damp;
}

__kernel void add_disturbance(
    const int width,
    const int height,
    const int cx,
    const int cy,
    const float magnitude,
    const int margin,
    __global float* buffer)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x < margin || x >= width - margin || y < margin || y >= height - margin) {
        return;
    }
    float dx = (float)(x - cx);
    float dy = (float)(y - cy);
    float dist = powr(dx * dx + dy * dy, 1.5f);
    buffer[y * width + x] += magnitude / fmax(dist, 2.0f);
}`

// newOpenCLSolver picks a device, compiles the kernels, allocates the three
// slot buffers and uploads the initial field into all of them.
func newOpenCLSolver(width, height int, initial []float32) (*openCLSolver, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	var device *cl.Device
	for _, p := range platforms {
		devices, derr := p.GetDevices(cl.DeviceTypeGPU)
		if derr != nil && derr != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			device = devices[0]
			break
		}
	}
	if device == nil {
		for _, p := range platforms {
			devices, derr := p.GetDevices(cl.DeviceTypeCPU)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &openCLSolver{
		width:      width,
		height:     height,
		global:     []int{roundUp(width, workgroupDim), roundUp(height, workgroupDim)},
		local:      []int{workgroupDim, workgroupDim},
		deviceName: device.Name(),
	}

	s.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s.queue, err = s.context.CreateCommandQueue(device, 0)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = s.context.CreateProgramWithSource([]string{waveKernelSource})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	s.stepKernel, err = s.program.CreateKernel("wave_step")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating step kernel: %w", err)
	}
	s.disturbKernel, err = s.program.CreateKernel("add_disturbance")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating disturbance kernel: %w", err)
	}

	byteSize := width * height * int(unsafe.Sizeof(float32(0)))
	for i := range s.slots {
		s.slots[i], err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("allocating slot %d buffer: %w", i, err)
		}
	}
	// Every slot starts from the same field so the first dispatch has valid
	// t-1 and t-2 readings.
	for i := range s.slots {
		if _, err := s.queue.EnqueueWriteBufferFloat32(s.slots[i], true, 0, initial, nil); err != nil {
			s.Close()
			return nil, fmt.Errorf("initializing slot %d: %w", i, err)
		}
	}
	return s, nil
}

// roundUp returns n rounded up to the next multiple of unit.
func roundUp(n, unit int) int {
	return ((n + unit - 1) / unit) * unit
}

// Advance enqueues one stencil dispatch. The call does not wait for
// completion; the in-order queue serializes it against later commands.
func (s *openCLSolver) Advance(p stepParams) error {
	if err := s.stepKernel.SetArgs(
		int32(s.width),
		int32(s.height),
		p.r,
		p.damp,
		s.slots[prevSlot(p.t)],
		s.slots[beforeSlot(p.t)],
		s.slots[slotFor(p.t)],
	); err != nil {
		return fmt.Errorf("setting step kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.stepKernel, nil, s.global, s.local, nil); err != nil {
		return fmt.Errorf("enqueueing step kernel: %w", err)
	}
	return nil
}

// Inject enqueues the disturbance kernel against slot(t).
func (s *openCLSolver) Inject(imp impulse, t uint64) error {
	if err := s.disturbKernel.SetArgs(
		int32(s.width),
		int32(s.height),
		int32(imp.x),
		int32(imp.y),
		imp.magnitude,
		int32(disturbMargin),
		s.slots[slotFor(t)],
	); err != nil {
		return fmt.Errorf("setting disturbance kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.disturbKernel, nil, s.global, s.local, nil); err != nil {
		return fmt.Errorf("enqueueing disturbance kernel: %w", err)
	}
	return nil
}

// ReadSlot copies one device slot to host memory. The blocking read is the
// consumption boundary: it returns only after every prior dispatch touching
// the slot has completed.
func (s *openCLSolver) ReadSlot(slot int, dst []float32) error {
	if len(dst) != s.width*s.height {
		return fmt.Errorf("destination has %d cells, want %d", len(dst), s.width*s.height)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.slots[slot], true, 0, dst, nil); err != nil {
		return fmt.Errorf("reading slot %d: %w", slot, err)
	}
	return nil
}

func (s *openCLSolver) Name() string {
	return fmt.Sprintf("OpenCL (%s)", s.deviceName)
}

func (s *openCLSolver) Close() {
	for i := range s.slots {
		if s.slots[i] != nil {
			s.slots[i].Release()
			s.slots[i] = nil
		}
	}
	if s.disturbKernel != nil {
		s.disturbKernel.Release()
		s.disturbKernel = nil
	}
	if s.stepKernel != nil {
		s.stepKernel.Release()
		s.stepKernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
