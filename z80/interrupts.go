package z80

// acceptNMI services a pending non-maskable interrupt: copy IFF1 into IFF2
// (so RETN can restore it), clear IFF1, push PC, jump to 0x0066. NMI always
// wakes a halted CPU and is never masked (spec §4.6).
func (c *CPU) acceptNMI() int {
	c.NMIPending = false
	c.Halted = false
	c.IFF2 = c.IFF1
	c.IFF1 = false
	c.pushWord(c.Regs.PC.Word())
	c.Regs.PC.SetWord(0x0066)
	return 11
}

// acceptINT services a pending maskable interrupt once IFF1 is true,
// dispatching per the current interrupt mode (spec §4.6). NMI takes
// priority over INT when both are pending and is checked first by Step.
func (c *CPU) acceptINT() int {
	c.INTPending = false
	c.Halted = false
	c.IFF1 = false
	c.IFF2 = false

	switch c.IM {
	case 0:
		// Mode 0: the interrupting device is expected to place an
		// instruction on the bus; this core treats it as RST 38h, the
		// common case for a Spectrum with no daisy-chained peripherals.
		c.pushWord(c.Regs.PC.Word())
		c.Regs.PC.SetWord(0x0038)
		return 13
	case 1:
		c.pushWord(c.Regs.PC.Word())
		c.Regs.PC.SetWord(0x0038)
		return 13
	case 2:
		vecTable := uint16(c.Regs.IR.I())<<8 | 0x00FF
		addr := c.Bus.ReadAddrFromMem(vecTable)
		c.pushWord(c.Regs.PC.Word())
		c.Regs.PC.SetWord(addr)
		return 19
	}
	return 13
}

// RequestNMI latches a non-maskable interrupt, serviced on the next Step.
func (c *CPU) RequestNMI() { c.NMIPending = true }

// RequestINT latches a maskable interrupt, serviced on the next Step if
// IFF1 is set. The ULA raises this once per frame (spec §5).
func (c *CPU) RequestINT() { c.INTPending = true }

// ClearINT withdraws a pending maskable interrupt that Step has not yet
// serviced, matching the ULA's brief interrupt pulse (spec §4.6: raised at
// counter 0, withdrawn at counter 32).
func (c *CPU) ClearINT() { c.INTPending = false }
