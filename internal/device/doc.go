// Package device models an offload compute device with the life cycle of a GPU runtime:
// contexts own device buffers and kernels, data crosses the host/device boundary through
// explicit copies, and kernels execute over an index range split into work-groups.
//
// The emulated device runs work-groups on host goroutines, one per compute unit.
// Every device accounts for its live contexts and allocations so that leaks are observable.
package device
