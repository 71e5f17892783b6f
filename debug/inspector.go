// Package debug implements an interactive register/memory inspector,
// adapted from the teacher's bubbletea TUI (cpu/debugger.go): same
// Init/Update/View shape and page-table rendering, generalized from the
// 6502's three flat registers to the Z80's full register file and decoded
// Instruction descriptor.
package debug

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/spjewkes/jrnz-go/z80"
)

type model struct {
	cpu    *z80.CPU
	offset uint16
	prevPC uint16
	cycles int
	err    error
}

// New returns an Inspector model for cpu. offset is stored on the model;
// the page table is always drawn around the current PC.
func New(cpu *z80.CPU, offset uint16) model {
	return model{cpu: cpu, offset: offset}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.cpu.Regs.PC.Word()
			func() {
				defer func() {
					if r := recover(); r != nil {
						m.err = fmt.Errorf("%v", r)
					}
				}()
				m.cycles = m.cpu.Step()
			}()
			if m.err != nil {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := 0; i < 16; i++ {
		addr := start + uint16(i)
		b := m.cpu.Bus.ReadData(addr)
		if addr == m.cpu.Regs.PC.Word() {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) pageTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}
	lines := []string{header}
	base := m.cpu.Regs.PC.Word() &^ 0x0F
	for row := 0; row < 5; row++ {
		lines = append(lines, m.renderPage(base+uint16(row*16)))
	}
	return strings.Join(lines, "\n")
}

func (m model) status() string {
	r := m.cpu.Regs
	flagBits := []struct {
		name string
		set  bool
	}{
		{"S", r.AF.Flag(z80.FlagS)},
		{"Z", r.AF.Flag(z80.FlagZ)},
		{"5", r.AF.Flag(z80.Flag5)},
		{"H", r.AF.Flag(z80.FlagH)},
		{"3", r.AF.Flag(z80.Flag3)},
		{"P", r.AF.Flag(z80.FlagP)},
		{"N", r.AF.Flag(z80.FlagN)},
		{"C", r.AF.Flag(z80.FlagC)},
	}
	var flags string
	for _, f := range flagBits {
		if f.set {
			flags += f.name + " "
		} else {
			flags += "_ "
		}
	}

	return fmt.Sprintf(`
PC: %04x (prev %04x)   cycles: %d
AF: %04x   BC: %04x   DE: %04x   HL: %04x
IX: %04x   IY: %04x   SP: %04x
IFF1: %v  IFF2: %v  IM: %d  HALT: %v
%s
`,
		m.cpu.Regs.PC.Word(), m.prevPC, m.cycles,
		r.AF.Word(), r.BC.Word(), r.DE.Word(), r.HL.Word(),
		r.IX.Word(), r.IY.Word(), r.SP.Word(),
		m.cpu.IFF1, m.cpu.IFF2, m.cpu.IM, m.cpu.Halted,
		flags,
	)
}

func (m model) currentInstruction() string {
	opcode, _ := m.cpu.Bus.ReadOpcode(m.cpu.Regs.PC.Word())
	return spew.Sdump(z80.Decode(opcode))
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		m.currentInstruction(),
	)
}

// Run starts the interactive inspector against cpu, paused at its current
// PC (the caller is expected to have already loaded a ROM or snapshot).
func Run(cpu *z80.CPU) error {
	final, err := tea.NewProgram(New(cpu, cpu.Regs.PC.Word())).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}
