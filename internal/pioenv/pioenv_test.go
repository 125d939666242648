package pioenv

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func baseOptions(vars map[string]string) Options {
	return Options{
		Getenv:  fakeEnv(vars),
		HomeDir: func() (string, error) { return "/home/dev", nil },
		WorkDir: func() (string, error) { return "/work/ghost", nil },
	}
}

func TestResolve_Defaults(t *testing.T) {
	env, err := Resolve(baseOptions(nil))
	require.NoError(t, err)

	assert.Equal(t, "/work/ghost", env.ProjectDir)
	assert.Equal(t, "/home/dev/.platformio", env.CoreDir)
	assert.Equal(t, "/home/dev/.platformio/packages", env.PackagesDir)
	assert.Equal(t, "/home/dev/.platformio/packages/framework-arduinoespressif32", env.FrameworkDir)
	assert.Equal(t, DefaultMCU, env.MCU)
}

func TestResolve_EnvironmentVariables(t *testing.T) {
	env, err := Resolve(baseOptions(map[string]string{
		EnvProjectDir:  "/src/fw",
		EnvCoreDir:     "/pio",
		EnvPackagesDir: "/pkgs",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/src/fw", env.ProjectDir)
	assert.Equal(t, "/pio", env.CoreDir)
	assert.Equal(t, "/pkgs", env.PackagesDir)
	assert.Equal(t, "/pkgs/framework-arduinoespressif32", env.FrameworkDir)
}

func TestResolve_FlagsWin(t *testing.T) {
	opts := baseOptions(map[string]string{EnvProjectDir: "/src/fw"})
	opts.ProjectDir = "/flag/fw"
	opts.FrameworkDir = "/fw/arduino"
	opts.MCU = "esp32s3"

	env, err := Resolve(opts)
	require.NoError(t, err)
	assert.Equal(t, "/flag/fw", env.ProjectDir)
	assert.Equal(t, "/fw/arduino", env.FrameworkDir)
	assert.Equal(t, "esp32s3", env.MCU)
}

func TestResolve_UnexpandedValuesIgnored(t *testing.T) {
	env, err := Resolve(baseOptions(map[string]string{
		EnvCoreDir:     "$PROJECT_CORE_DIR",
		EnvPackagesDir: "${PROJECT_PACKAGES_DIR}",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/.platformio", env.CoreDir)
	assert.Equal(t, "/home/dev/.platformio/packages", env.PackagesDir)
}

func TestResolve_ProjectDirUndefined(t *testing.T) {
	opts := baseOptions(nil)
	opts.WorkDir = func() (string, error) { return "", errors.New("gone") }

	_, err := Resolve(opts)
	assert.ErrorIs(t, err, ErrProjectDirUndefined)
}

func TestToolDirs_Deduplicated(t *testing.T) {
	env := Env{
		CoreDir:      "/pio",
		PackagesDir:  "/pio/packages",
		FrameworkDir: "/pio/packages/framework-arduinoespressif32",
	}
	assert.Equal(t, []string{"/pio/packages/framework-arduinoespressif32/tools"}, env.ToolDirs())
}

func TestToolDirs_Distinct(t *testing.T) {
	env := Env{
		CoreDir:      "/core",
		PackagesDir:  "/pkgs",
		FrameworkDir: "/custom/fw",
	}
	assert.Equal(t, []string{
		"/custom/fw/tools",
		"/core/packages/framework-arduinoespressif32/tools",
		"/pkgs/framework-arduinoespressif32/tools",
	}, env.ToolDirs())
}

func TestToolDirs_Empty(t *testing.T) {
	assert.Empty(t, Env{}.ToolDirs())
}

func TestSDKLibDir(t *testing.T) {
	env := Env{FrameworkDir: "/fw", MCU: "esp32"}
	assert.Equal(t, filepath.Join("/fw", "tools", "sdk", "esp32", "lib"), env.SDKLibDir())
}

func TestProjectPath(t *testing.T) {
	env := Env{ProjectDir: "/src/fw"}
	assert.Equal(t, "/src/fw/include/webFiles.h", env.ProjectPath("include/webFiles.h"))
	assert.Equal(t, "/abs/x.h", env.ProjectPath("/abs/x.h"))
}
