package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"

	"github.com/approxmatch/hostctl/internal/corpus"
	"github.com/approxmatch/hostctl/internal/dictfile"
	"github.com/approxmatch/hostctl/internal/oracle"
	"github.com/approxmatch/hostctl/internal/vcdwriter"
	"github.com/approxmatch/hostctl/pkg/accel"
	"github.com/approxmatch/hostctl/pkg/bus"
	"github.com/approxmatch/hostctl/pkg/runner"
	"github.com/approxmatch/hostctl/pkg/simharness"
	"github.com/approxmatch/hostctl/pkg/transport"
	"github.com/spf13/cobra"
)

func resolveRevision(name string) (accel.Revision, error) {
	switch name {
	case "compact":
		return accel.RevisionCompact, nil
	case "wishbone":
		return accel.RevisionWishbone, nil
	default:
		return accel.Revision{}, fmt.Errorf("matchctl: unknown revision %q (want compact or wishbone)", name)
	}
}

// builtClient bundles a client with whatever resources back it, so the
// caller can tear them down uniformly.
type builtClient struct {
	client *accel.Client
	closer io.Closer
}

func buildClient(revision accel.Revision) (*builtClient, error) {
	switch flagDevice {
	case "verilator", "sim", "simulator":
		h := simharness.NewHarness(revision)
		tp := h.UARTTransport()
		if flagVCDFile != "" {
			if verbose {
				fmt.Printf("tracing simulated bus to %s\n", flagVCDFile)
			}
			// Tracing wraps the transport so every command frame also
			// records a VCD change; kept local to this constructor so a
			// non-simulated device never pays for it.
			vcd, closer, err := openVCD(flagVCDFile)
			if err != nil {
				return nil, err
			}
			return &builtClient{client: accel.New(bus.New(tracedTransport{inner: tp, vcd: vcd}), revision), closer: closer}, nil
		}
		return &builtClient{client: accel.New(bus.New(tp), revision)}, nil

	case "icestick":
		pins, closer, err := openFTDIPins(flagChipSelect)
		if err != nil {
			return nil, err
		}
		sp := transport.NewSPI(pins)
		return &builtClient{client: accel.New(bus.New(sp), revision), closer: closer}, nil

	case "uart":
		if flagPort == "" {
			return nil, fmt.Errorf("matchctl: --device uart requires --port")
		}
		u, err := transport.OpenUART(flagPort)
		if err != nil {
			return nil, err
		}
		u.StrictWriteStatus = revision.HasErrorFlag
		return &builtClient{client: accel.New(bus.New(u), revision), closer: u}, nil

	default:
		return nil, fmt.Errorf("matchctl: unknown device %q (want verilator, icestick, or uart)", flagDevice)
	}
}

func openFTDIPins(chipSelect string) (*transport.FTDIPins, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("matchctl: periph host init: %w", err)
	}
	devices := ftdi.All()
	if len(devices) == 0 {
		return nil, nil, fmt.Errorf("matchctl: no FTDI adapter found")
	}
	dev := devices[0]

	cs, err := chipSelectPin(dev, chipSelect)
	if err != nil {
		return nil, nil, err
	}

	return &transport.FTDIPins{
		CS:   cs,
		SCK:  dev.D0(),
		MOSI: dev.D1(),
		MISO: dev.D2(),
	}, dev, nil
}

func chipSelectPin(dev ftdi.Dev, name string) (gpio.PinOut, error) {
	switch name {
	case "none", "cs":
		return dev.D3(), nil
	case "cs2":
		return dev.D4(), nil
	case "cs3":
		return dev.D5(), nil
	default:
		return nil, fmt.Errorf("matchctl: unknown chip-select %q (want none, cs, cs2, or cs3)", name)
	}
}

func openVCD(path string) (*vcdwriter.Writer, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("matchctl: vcd-file: %w", err)
	}
	vcd := vcdwriter.New(f, []vcdwriter.Signal{
		{Name: "cmd", Bits: 32},
		{Name: "resp", Bits: 8},
	})
	return vcd, vcdFileCloser{vcd: vcd, file: f}, nil
}

// vcdFileCloser flushes the buffered VCD writer before closing the
// underlying file, since vcdwriter.Writer only knows how to flush an
// io.Writer, not close one.
type vcdFileCloser struct {
	vcd  *vcdwriter.Writer
	file *os.File
}

func (c vcdFileCloser) Close() error {
	if err := c.vcd.Close(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

// tracedTransport wraps a bus.Transport and records every command and
// response to a VCD trace, standing in for the real harness's --vcd-file.
type tracedTransport struct {
	inner bus.Transport
	vcd   *vcdwriter.Writer
}

func (t tracedTransport) Exec(cmd [4]byte) (byte, error) {
	t.vcd.Tick()
	t.vcd.Change("cmd", uint64(cmd[0])<<24|uint64(cmd[1])<<16|uint64(cmd[2])<<8|uint64(cmd[3]))
	resp, err := t.inner.Exec(cmd)
	t.vcd.Change("resp", uint64(resp))
	return resp, err
}

func runSearch(cobraCmd *cobra.Command, args []string) error {
	revision, err := resolveRevision(flagRevision)
	if err != nil {
		return err
	}

	built, err := buildClient(revision)
	if err != nil {
		return err
	}
	if built.closer != nil {
		defer built.closer.Close()
	}
	client := built.client

	if flagTest {
		return runBuiltinTest(client)
	}

	if !flagNoInit {
		if err := client.Init(); err != nil {
			return fmt.Errorf("matchctl: init: %w", err)
		}
	}

	if flagLoadDictionary != "" {
		words, err := dictfile.Load(flagLoadDictionary)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Printf("loaded %d words from %s\n", len(words), flagLoadDictionary)
		}
		if err := client.LoadDictionary(words); err != nil {
			return fmt.Errorf("matchctl: load dictionary: %w", err)
		}
	}

	if flagSearch != "" {
		res, err := client.Search([]byte(flagSearch))
		if err != nil {
			return fmt.Errorf("matchctl: search: %w", err)
		}
		fmt.Printf("index=%d distance=%d\n", res.Index, res.Distance)
	}

	return nil
}

func runBuiltinTest(client *accel.Client) error {
	scenarios := []struct {
		words []string
		probe string
	}{
		{[]string{"h", "he", "hes", "hest", "heste", "hesten"}, "hest"},
		{[]string{"cat", "cot", "dog"}, "cog"},
		{[]string{"a"}, "b"},
	}

	for _, sc := range scenarios {
		outcomes, err := runner.Run(client, sc.words, []string{sc.probe}, true)
		if err != nil {
			return err
		}
		o := outcomes[0]
		if o.Err != nil {
			return fmt.Errorf("matchctl: scenario %q: %w", sc.probe, o.Err)
		}
		fmt.Printf("%-8s -> index=%d distance=%d\n", sc.probe, o.Result.Index, o.Result.Distance)
	}

	rng := rand.New(rand.NewPCG(1, 1))
	cfg := corpus.DefaultConfig
	cfg.WordCount = 1024
	words := corpus.Generate(rng, cfg)
	probes := corpus.RandomProbes(rng, cfg, 256)

	disagreements, err := runner.RunRandomized(client, words, probes, oracle.BestMatch)
	if err != nil {
		return err
	}
	if len(disagreements) > 0 {
		for _, d := range disagreements {
			fmt.Printf("disagreement: probe=%q accel=%+v oracle_distance=%d\n", d.Probe, d.Got, d.WantDistance)
		}
		return fmt.Errorf("matchctl: %d of %d randomized probes disagreed with the oracle", len(disagreements), len(probes))
	}
	fmt.Printf("randomized test passed: %d words, %d probes\n", len(words), len(probes))
	return nil
}
