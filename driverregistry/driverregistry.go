// Package driverregistry is the driver vtable lookup table: a dense
// index-to-Definition mapping per driver group (base filesystem, user
// filesystem, user device, and base device drivers), plus a PCI
// (vendor, device) scan over each group's registered drivers.
package driverregistry

import (
	"sync"

	"github.com/joeycumines/go-korecore/kerrors"
)

// Group identifies one of the four driver classes.
type Group int

const (
	GroupBaseFS Group = iota
	GroupUserFS
	GroupUserDevice
	GroupBaseDevice

	groupCount
)

// PCICode is a (vendor, device) pair a PCI-backed driver claims.
type PCICode struct {
	Vendor uint16
	Device uint16
}

// ACPICode is an ACPI HID string a driver claims.
type ACPICode string

// Definition is a driver's vtable: the eleven file-operation hooks
// plus the PCI and ACPI code lists used to match a driver to a
// discovered device.
type Definition struct {
	Init    func(driverState any, args any) error
	Uninit  func(driverState any) error
	Write   func(driverState any, buf []byte, offset int64) (int, error)
	Read    func(driverState any, buf []byte, offset int64) (int, error)
	Seek    func(driverState any, offset int64, whence int) (int64, error)
	Rename  func(driverState any, newName string) error
	Stat    func(driverState any) (any, error)
	Control func(driverState any, request int, arg any) (any, error)
	Create  func(driverState any, name string) error
	Remove  func(driverState any, name string) error
	Locate  func(driverState any, name string) (any, error)

	PCICodes  []PCICode
	ACPICodes []ACPICode
}

var (
	mu     sync.RWMutex
	tables [groupCount]map[int]*Definition
)

func init() {
	for i := range tables {
		tables[i] = make(map[int]*Definition)
	}
}

// Register adds def to group at index. Re-registering the same
// (group, index) overwrites the previous definition.
func Register(group Group, index int, def *Definition) error {
	if def == nil || group < 0 || group >= groupCount {
		return kerrors.New(kerrors.InvalidArg, "driverregistry.Register", nil)
	}
	mu.Lock()
	defer mu.Unlock()
	tables[group][index] = def
	return nil
}

// Lookup returns the Definition registered at (group, index).
// Returns NotFound if no driver has been registered there.
func Lookup(group Group, index int) (*Definition, error) {
	if group < 0 || group >= groupCount {
		return nil, kerrors.New(kerrors.InvalidArg, "driverregistry.Lookup", nil)
	}
	mu.RLock()
	defer mu.RUnlock()
	def, ok := tables[group][index]
	if !ok {
		return nil, kerrors.New(kerrors.NotFound, "driverregistry.Lookup", nil)
	}
	return def, nil
}

// LookupPCI scans every driver registered in group for one claiming
// (vendor, device). The reserved pair (0xFFFF, 0xFFFF) never matches
// a driver; it is rejected up front with InvalidArg.
func LookupPCI(group Group, vendor, device uint16) (*Definition, error) {
	if group < 0 || group >= groupCount {
		return nil, kerrors.New(kerrors.InvalidArg, "driverregistry.LookupPCI", nil)
	}
	if vendor == 0xFFFF && device == 0xFFFF {
		return nil, kerrors.New(kerrors.InvalidArg, "driverregistry.LookupPCI", nil)
	}
	mu.RLock()
	defer mu.RUnlock()
	for _, def := range tables[group] {
		for _, code := range def.PCICodes {
			if code.Vendor == vendor && code.Device == device {
				return def, nil
			}
		}
	}
	return nil, kerrors.New(kerrors.NotFound, "driverregistry.LookupPCI", nil)
}
