//go:build !opencl

package main

import "errors"

type openCLSolver struct{}

func newOpenCLSolver(width, height int, initial []float32) (*openCLSolver, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLSolver) Advance(p stepParams) error { return errors.New("OpenCL solver unavailable") }

func (s *openCLSolver) Inject(imp impulse, t uint64) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLSolver) ReadSlot(slot int, dst []float32) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLSolver) Name() string { return "" }

func (s *openCLSolver) Close() {}
