package simharness

import (
	"testing"

	"github.com/approxmatch/hostctl/pkg/accel"
	"github.com/approxmatch/hostctl/pkg/bus"
	"github.com/approxmatch/hostctl/pkg/transport"
)

func TestEndToEndSearchOverSimulatedUART(t *testing.T) {
	h := NewHarness(accel.RevisionCompact)
	b := bus.New(h.UARTTransport())
	c := accel.New(b, accel.RevisionCompact)

	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	words := []string{"h", "he", "hes", "hest", "heste", "hesten"}
	if err := c.LoadDictionary(words); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	res, err := c.Search([]byte("hest"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Index != 3 || res.Distance != 0 {
		t.Fatalf("Search(hest) = %+v, want {Index:3 Distance:0}", res)
	}
}

func TestEndToEndSearchOverSimulatedSPI(t *testing.T) {
	h := NewHarness(accel.RevisionWishbone)
	pins := NewSimPins(h, 2)
	b := bus.New(transport.NewSPI(pins))
	c := accel.New(b, accel.RevisionWishbone)

	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	words := []string{"cat", "cot", "dog"}
	if err := c.LoadDictionary(words); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	res, err := c.Search([]byte("cog"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Distance != 1 {
		t.Fatalf("Search(cog).Distance = %d, want 1", res.Distance)
	}
	if res.Index != 0 && res.Index != 1 {
		t.Fatalf("Search(cog).Index = %d, want 0 or 1", res.Index)
	}
}

func TestEndToEndSearchWithBusyPolling(t *testing.T) {
	h := NewHarness(accel.RevisionCompact)
	h.Model.SetBusyCycles(5)
	b := bus.New(h.UARTTransport())
	c := accel.New(b, accel.RevisionCompact).WithPollConfig(accel.PollConfig{Budget: 1000})

	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.LoadDictionary([]string{"a"}); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	res, err := c.Search([]byte("b"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Index != 0 || res.Distance != 1 {
		t.Fatalf("Search(b) = %+v, want {Index:0 Distance:1}", res)
	}
}

func TestEndToEndWishboneDeviceError(t *testing.T) {
	h := NewHarness(accel.RevisionWishbone)
	h.Model.InjectError(true)
	b := bus.New(h.UARTTransport())
	c := accel.New(b, accel.RevisionWishbone)

	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.LoadDictionary([]string{"x"}); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	_, err := c.Search([]byte("y"))
	if _, ok := err.(accel.DeviceError); !ok {
		t.Fatalf("Search: got %T (%v), want accel.DeviceError", err, err)
	}
}
