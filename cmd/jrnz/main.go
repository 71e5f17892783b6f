// Command jrnz is a ZX Spectrum-class Z80 emulator core: loads a ROM image
// and an optional snapshot, then either runs to a breakpoint or drops into
// the interactive inspector.
//
// The flag/subcommand wiring follows the teacher's cobra-based CLI
// (oisee-z80-optimizer/cmd/z80opt/main.go): a root command with RunE and
// flags bound by pflag.Var-family calls, rather than hand-rolled os.Args
// parsing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spjewkes/jrnz-go/debug"
	"github.com/spjewkes/jrnz-go/keyboard"
	"github.com/spjewkes/jrnz-go/mem"
	"github.com/spjewkes/jrnz-go/snapshot"
	"github.com/spjewkes/jrnz-go/ula"
	"github.com/spjewkes/jrnz-go/z80"
)

func main() {
	var (
		romPath   string
		snaPath   string
		z80Path   string
		breakAddr string
		debugMode bool
		fast      bool
		pause     bool
	)

	root := &cobra.Command{
		Use:   "jrnz",
		Short: "ZX Spectrum-class Z80 emulator core",
		RunE: func(cmd *cobra.Command, args []string) error {
			bus := mem.NewBus()
			kb := keyboard.NewMatrix()
			bus.Ports = kb

			if romPath != "" {
				rom, err := os.ReadFile(romPath)
				if err != nil {
					return fmt.Errorf("jrnz: reading ROM: %w", err)
				}
				copy(bus.Mem[0:], rom)
				bus.RAMStart = uint16(len(rom))
			}

			cpu := z80.NewCPU(bus)
			u := ula.New(bus, cpu)
			u.Fast = fast

			if snaPath != "" {
				data, err := os.ReadFile(snaPath)
				if err != nil {
					return fmt.Errorf("jrnz: reading SNA: %w", err)
				}
				if err := snapshot.LoadSNA(data, cpu, bus); err != nil {
					return fmt.Errorf("jrnz: loading SNA: %w", err)
				}
			}

			if z80Path != "" {
				data, err := os.ReadFile(z80Path)
				if err != nil {
					return fmt.Errorf("jrnz: reading Z80 snapshot: %w", err)
				}
				if err := snapshot.LoadZ80(data, cpu, bus); err != nil {
					return fmt.Errorf("jrnz: loading Z80 snapshot: %w", err)
				}
			}

			var breakpoint uint16
			hasBreak := false
			if breakAddr != "" {
				var v uint32
				if _, err := fmt.Sscanf(breakAddr, "0x%x", &v); err != nil {
					return fmt.Errorf("jrnz: invalid --break address %q: %w", breakAddr, err)
				}
				breakpoint = uint16(v)
				hasBreak = true
			}

			if pause {
				if err := debug.Run(cpu); err != nil {
					return fmt.Errorf("jrnz: inspector: %w", err)
				}
				return nil
			}

			for {
				if hasBreak && cpu.Regs.PC.Word() == breakpoint {
					break
				}
				cycles := cpu.Step()
				for i := 0; i < cycles; i++ {
					u.Tick()
				}
				if debugMode && cpu.Halted {
					break
				}
			}

			if debugMode {
				return debug.Run(cpu)
			}
			return nil
		},
	}

	root.Flags().StringVar(&romPath, "rom", "", "path to a ROM image to load at address 0")
	root.Flags().StringVar(&snaPath, "sna", "", "path to a .SNA snapshot to load")
	root.Flags().StringVar(&z80Path, "z80", "", "path to a .Z80 snapshot to load")
	root.Flags().StringVar(&breakAddr, "break", "", "stop execution when PC reaches this address (e.g. 0x8000)")
	root.Flags().BoolVar(&debugMode, "debug", false, "drop into the interactive inspector on halt or breakpoint")
	root.Flags().BoolVar(&fast, "fast", false, "run without pacing the ULA's frame scheduler")
	root.Flags().BoolVar(&pause, "pause", false, "start paused in the interactive inspector")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
