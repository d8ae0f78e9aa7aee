package transport

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// AdapterInfo describes a detected FTDI adapter that could host the
// accelerator's SPI bus.
type AdapterInfo struct {
	Description string
	VendorID    uint16
	ProductID   uint16
}

// Label returns a user-friendly description for the adapter.
func (a AdapterInfo) Label() string {
	if a.Description != "" {
		return a.Description
	}
	return fmt.Sprintf("FTDI device (%04X:%04X)", a.VendorID, a.ProductID)
}

// knownFTDIVIDPIDs lists the adapter variants the icestick bring-up
// path has been exercised against.
var knownFTDIVIDPIDs = []AdapterInfo{
	{VendorID: 0x0403, ProductID: 0x6014, Description: "FTDI FT232H"},
	{VendorID: 0x0403, ProductID: 0x6010, Description: "FTDI FT2232H"},
	{VendorID: 0x0403, ProductID: 0x6001, Description: "FTDI FT232R (icestick onboard UART)"},
}

// DiscoverAdapters enumerates connected USB devices matching known
// FTDI VID/PID pairs usable as the accelerator's SPI bridge.
func DiscoverAdapters(ctx context.Context) ([]AdapterInfo, error) {
	var results []AdapterInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if info, ok := classifyFTDIDevice(desc); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}
	return results, nil
}

func classifyFTDIDevice(desc *gousb.DeviceDesc) (AdapterInfo, bool) {
	for _, known := range knownFTDIVIDPIDs {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return AdapterInfo{
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
			}, true
		}
	}
	return AdapterInfo{}, false
}
