package ode

import "errors"

// Failure taxonomy for solver backends. Every failure is reported back to
// the caller with a wrapped diagnostic; none are treated as fatal inside
// the solver core.
var (
	// ErrInitialization indicates the device, context, surface or a
	// kernel compile could not be brought up.
	ErrInitialization = errors.New("ode: device initialization failed")

	// ErrUnsupportedSystem indicates a system without a usable device
	// descriptor was handed to the GPU path.
	ErrUnsupportedSystem = errors.New("ode: system has no device RHS descriptor")

	// ErrAllocation indicates device buffer creation failed.
	ErrAllocation = errors.New("ode: device buffer allocation failed")

	// ErrDispatch indicates a device execution or readback error
	// mid-integration.
	ErrDispatch = errors.New("ode: device dispatch failed")

	// ErrUnknownSystem indicates an RHS name with no registry entry.
	ErrUnknownSystem = errors.New("ode: unknown RHS system")

	// ErrDimensionMismatch indicates an initial state whose length does
	// not match the system dimension.
	ErrDimensionMismatch = errors.New("ode: initial state length does not match dimension")
)
