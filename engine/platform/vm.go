package platform

import "fmt"

// VM is a Host whose backing CPU capacity is carved from a physical Host's
// CPU constraint (spec.md §3, "Virtual Machine"). Its CPU constraint is
// rebound on migration rather than owning independent capacity.
type VM struct {
	*Host
	RAMBytes float64

	physicalHost string
	reservation  float64 // FLOP/s reserved from the physical host
}

// NewVM creates a VM with a given FLOP/s reservation carved from
// physicalHost, which the caller must already have registered.
func NewVM(id string, ramBytes, reservationFlops float64, physicalHost string) *VM {
	return &VM{
		Host:         NewHost(id, reservationFlops, 1),
		RAMBytes:     ramBytes,
		physicalHost: physicalHost,
		reservation:  reservationFlops,
	}
}

// PhysicalHost returns the ID of the physical Host currently backing this VM.
func (vm *VM) PhysicalHost() string { return vm.physicalHost }

// Reservation returns the VM's reserved FLOP/s, the weight it contributes
// to its physical host's CPU constraint.
func (vm *VM) Reservation() float64 { return vm.reservation }

// Migrate rebinds the VM to a new physical host (spec.md §3: "may be
// migrated (its CPU constraint is rebound)"). The caller (engine/resource)
// is responsible for moving the VM's solver variable to the new host's
// constraint; Migrate only updates the platform-level bookkeeping.
func (vm *VM) Migrate(newPhysicalHost string) {
	vm.physicalHost = newPhysicalHost
}

// ErrOverReservation reports that a physical Host's VM reservations would
// exceed its physical capacity (spec.md §3 invariant).
type ErrOverReservation struct {
	Host      string
	Capacity  float64
	Requested float64
}

func (e ErrOverReservation) Error() string {
	return fmt.Sprintf("host %s: VM reservations %.0f FLOP/s exceed physical capacity %.0f FLOP/s", e.Host, e.Requested, e.Capacity)
}
