package tensor

// Device represents the compute device a buffer is bound to.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// Residency tracks which copies of a buffer's data are currently valid.
// A buffer may be valid on the host, on the device, or both (after a
// readback). Backends consult residency when dispatching and update it
// after transfers.
type Residency uint8

// Residency flags.
const (
	HostValid Residency = 1 << iota
	DeviceValid
)

// Host reports whether the host copy is valid.
func (r Residency) Host() bool { return r&HostValid != 0 }

// Device reports whether the device copy is valid.
func (r Residency) Device() bool { return r&DeviceValid != 0 }
