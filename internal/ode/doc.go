// Package ode provides the core types shared by the host and GPU
// integration backends: the [System] descriptor, the [State] vector, the
// recorded [Solution], and the failure taxonomy both backends report
// through.
//
// A System describes dX/dt = f(t, X) over a fixed time domain together
// with its initial state. Systems that can run on the GPU additionally
// carry a [DeviceInfo] naming a registered kernel fragment and its
// ordered uniform values.
package ode
