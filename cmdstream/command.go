// Package cmdstream replays a textual graphics command stream against a
// texture cache table. It stands in for the register decoder and the
// renderer's per-draw driver.
//
// The stream is line oriented. Blank lines and text after '#' are ignored.
//
//	init
//	config <unit> <register> <value>
//	bp <addr> <value>
//	invalidate [param]
//	bind <unit> <width> <height> [mip] [32bit]
//	finalize
//	query <unit>
//
// Numbers are decimal or 0x-prefixed hexadecimal.
package cmdstream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/tmemsim/tmem"
	"github.com/sarchlab/tmemsim/tmem/texreg"
)

// Op is the kind of a command.
type Op int

// Command kinds.
const (
	OpInit Op = iota
	OpConfig
	OpBP
	OpInvalidate
	OpBind
	OpFinalize
	OpQuery
)

var opNames = map[string]Op{
	"init":       OpInit,
	"config":     OpConfig,
	"bp":         OpBP,
	"invalidate": OpInvalidate,
	"bind":       OpBind,
	"finalize":   OpFinalize,
	"query":      OpQuery,
}

func (o Op) String() string {
	for name, op := range opNames {
		if op == o {
			return name
		}
	}

	return fmt.Sprintf("Op(%d)", int(o))
}

// A Command is one parsed line of the stream.
type Command struct {
	Op   Op
	Line int

	Unit     int
	Register texreg.Register
	Addr     uint8
	Value    uint32

	Width, Height uint32
	Mipmapped     bool
	Is32Bit       bool
}

// Parse reads a whole stream.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command

	err := scan(r, func(cmd Command) error {
		cmds = append(cmds, cmd)
		return nil
	})

	return cmds, err
}

func scan(r io.Reader, f func(Command) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		cmd, ok, err := ParseLine(scanner.Text(), lineNo)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if err := f(cmd); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading command stream: %w", err)
	}

	return nil
}

// ParseLine parses one line. It returns ok == false for blank and comment
// lines.
func ParseLine(line string, lineNo int) (cmd Command, ok bool, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false, nil
	}

	op, known := opNames[strings.ToLower(fields[0])]
	if !known {
		return Command{}, false,
			fmt.Errorf("line %d: unknown command %q", lineNo, fields[0])
	}

	cmd = Command{Op: op, Line: lineNo}
	p := argParser{args: fields[1:]}

	switch op {
	case OpConfig:
		cmd.Unit = p.unit()
		cmd.Register = p.register()
		cmd.Value = p.uint32()
	case OpBP:
		cmd.Addr = uint8(p.number(8))
		cmd.Value = p.uint32()
	case OpInvalidate:
		if p.remaining() > 0 {
			cmd.Value = p.uint32()
		}
	case OpBind:
		cmd.Unit = p.unit()
		cmd.Width = p.uint32()
		cmd.Height = p.uint32()
		p.flags(&cmd)
	case OpQuery:
		cmd.Unit = p.unit()
	}

	if p.err == nil && p.remaining() > 0 {
		p.err = fmt.Errorf("unexpected argument %q", p.args[0])
	}

	if p.err != nil {
		return Command{}, false,
			fmt.Errorf("line %d: %s: %w", lineNo, op, p.err)
	}

	return cmd, true, nil
}

type argParser struct {
	args []string
	err  error
}

func (p *argParser) remaining() int {
	return len(p.args)
}

func (p *argParser) next() (string, bool) {
	if p.err != nil {
		return "", false
	}

	if len(p.args) == 0 {
		p.err = fmt.Errorf("missing argument")
		return "", false
	}

	arg := p.args[0]
	p.args = p.args[1:]

	return arg, true
}

func (p *argParser) number(bitSize int) uint64 {
	arg, ok := p.next()
	if !ok {
		return 0
	}

	v, err := strconv.ParseUint(arg, 0, bitSize)
	if err != nil {
		p.err = fmt.Errorf("bad number %q: %w", arg, err)
		return 0
	}

	return v
}

func (p *argParser) uint32() uint32 {
	return uint32(p.number(32))
}

func (p *argParser) unit() int {
	v := p.number(32)
	if p.err == nil && v >= tmem.NumUnits {
		p.err = fmt.Errorf("%w: %d", ErrUnitOutOfRange, v)
	}

	return int(v)
}

func (p *argParser) register() texreg.Register {
	arg, ok := p.next()
	if !ok {
		return texreg.Unknown
	}

	reg, err := texreg.ParseRegister(arg)
	if err != nil {
		p.err = err
	}

	return reg
}

func (p *argParser) flags(cmd *Command) {
	for p.err == nil && len(p.args) > 0 {
		switch strings.ToLower(p.args[0]) {
		case "mip":
			cmd.Mipmapped = true
		case "32bit":
			cmd.Is32Bit = true
		default:
			return
		}

		p.args = p.args[1:]
	}
}
