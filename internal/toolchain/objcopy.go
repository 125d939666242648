package toolchain

import (
	"context"
	"fmt"
)

// Objcopy builds objcopy invocations for an Xtensa MCU.
//
// With an empty Path the binary is resolved through PlatformIO:
//
//	pio pkg exec -p toolchain-xtensa-<mcu> -- xtensa-<mcu>-elf-objcopy ...
type Objcopy struct {
	Runner Runner
	MCU    string
	// Path overrides the PlatformIO lookup with a direct objcopy binary.
	Path string
	// PIO is the PlatformIO executable, "pio" if empty.
	PIO string
}

// ToolchainPackage returns the PlatformIO package that ships objcopy.
func (o *Objcopy) ToolchainPackage() string {
	return "toolchain-xtensa-" + o.MCU
}

// Binary returns the objcopy executable name inside the toolchain package.
func (o *Objcopy) Binary() string {
	return fmt.Sprintf("xtensa-%s-elf-objcopy", o.MCU)
}

// Command returns the command and arguments that weaken symbol in input.
// An empty output modifies input in place.
func (o *Objcopy) Command(symbol, input, output string) (string, []string) {
	args := []string{"--weaken-symbol=" + symbol, input}
	if output != "" {
		args = append(args, output)
	}

	if o.Path != "" {
		return o.Path, args
	}

	pio := o.PIO
	if pio == "" {
		pio = "pio"
	}
	full := append([]string{"pkg", "exec", "-p", o.ToolchainPackage(), "--", o.Binary()}, args...)
	return pio, full
}

// WeakenSymbol marks symbol as weak in input, writing to output.
func (o *Objcopy) WeakenSymbol(ctx context.Context, symbol, input, output string) error {
	if o.MCU == "" && o.Path == "" {
		return fmt.Errorf("objcopy: mcu is not set")
	}
	name, args := o.Command(symbol, input, output)
	if err := o.Runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("failed to weaken symbol %s: %w", symbol, err)
	}
	return nil
}
