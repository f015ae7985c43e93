package main

import "flag"

// Command-line flags control runtime behavior; simulation parameters live in
// the YAML configuration so runs are reproducible from a single document.
var (
	// configFlag points at a YAML file overlaying the embedded defaults.
	configFlag = flag.String("config", "", "path to a YAML configuration file")

	// headlessFlag runs the solver without a window, exporting frames and
	// telemetry instead of rendering.
	headlessFlag = flag.Bool("headless", false, "run without a window and export frames")

	// stepsFlag bounds a headless run.
	stepsFlag = flag.Int("steps", 4000, "number of ticks to run in headless mode")

	// backendFlag overrides the configured solver backend.
	backendFlag = flag.String("backend", "", "override solver backend: auto, opencl or cpu")

	// debugFlag enables the FPS and simulation overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation speed overlay")

	// cpuProfileFlag captures a pprof CPU profile for the whole run.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
)
