package gadget

// =============================================================================
// System Paths
// =============================================================================

// DefaultRoot is the configfs directory containing USB gadgets.
const DefaultRoot = "/sys/kernel/config/usb_gadget"

// DefaultLockFile is the file whose presence marks the USB subsystem as
// owned by an exclusive external session.
const DefaultLockFile = "/run/badusb/usb.lock"

// DefaultControllerDir lists the USB device controllers.
const DefaultControllerDir = "/sys/class/udc"

// =============================================================================
// Gadget Attributes
// =============================================================================

// Attribute file names inside a gadget directory.
const (
	AttrUDC       = "UDC"
	AttrIDVendor  = "idVendor"
	AttrIDProduct = "idProduct"
)
