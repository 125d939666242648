package embedded

import (
	_ "embed"
)

//go:embed pioarduino-build.py
var buildHelper []byte

//go:embed prebuild.py
var prebuildShim []byte

// BuildHelperName is the file PlatformIO imports from the framework tools dir.
const BuildHelperName = "pioarduino-build.py"

// BuildHelper returns the embedded stub of the vendor build helper.
func BuildHelper() []byte {
	return buildHelper
}

// PrebuildShim returns the PlatformIO extra_scripts shim that calls this tool.
func PrebuildShim() []byte {
	return prebuildShim
}
