package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProcessFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := processCmdFlagSet()
	require.NoError(t, flags.Parse(args))
	return flags
}

func validArgs() []string {
	return []string{
		"--aapt-path=/sdk/aapt",
		"--android-sdk-jar=/sdk/android.jar",
		"--android-manifest=AndroidManifest.xml",
		"--resource-dirs=res",
		"--resource-zip-out=out/resources.zip",
		"--srcjar-out=out/R.srcjar",
		"--v14-skip",
	}
}

func TestGetConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		conf, err := getConfig(parseProcessFlags(t, validArgs()...))
		require.NoError(t, err)

		assert.Equal(t, "/sdk/aapt", conf.AAPTPath)
		assert.Equal(t, []string{"res"}, conf.ResourceDirs)
		assert.True(t, conf.SrcjarOut.Valid)
		assert.False(t, conf.RDir.Valid)
		assert.False(t, conf.SharedResources.Valid)
		assert.True(t, conf.V14Skip.Bool)
	})

	t.Run("ToolPathsFromEnvironment", func(t *testing.T) {
		t.Setenv("RESPROC_AAPT_PATH", "/env/aapt")
		t.Setenv("RESPROC_V14_TOOL_PATH", "/env/v14gen")

		args := append([]string{}, validArgs()[1:]...) // drop --aapt-path
		conf, err := getConfig(parseProcessFlags(t, args...))
		require.NoError(t, err)
		assert.Equal(t, "/env/aapt", conf.AAPTPath)
		assert.Equal(t, "/env/v14gen", conf.V14ToolPath)
	})

	t.Run("FlagBeatsEnvironment", func(t *testing.T) {
		t.Setenv("RESPROC_AAPT_PATH", "/env/aapt")
		conf, err := getConfig(parseProcessFlags(t, validArgs()...))
		require.NoError(t, err)
		assert.Equal(t, "/sdk/aapt", conf.AAPTPath)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func(t *testing.T) Config {
		t.Helper()
		conf, err := getConfig(parseProcessFlags(t, validArgs()...))
		require.NoError(t, err)
		return conf
	}

	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, valid(t).Validate())
	})

	t.Run("MissingRequired", func(t *testing.T) {
		conf := valid(t)
		conf.AndroidManifest = ""
		err := conf.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--android-manifest")
	})

	t.Run("MissingResourceDirs", func(t *testing.T) {
		conf := valid(t)
		conf.ResourceDirs = nil
		require.Error(t, conf.Validate())
	})

	t.Run("BothOutputTargets", func(t *testing.T) {
		conf, err := getConfig(parseProcessFlags(t,
			append(validArgs(), "--R-dir=out/rjava")...))
		require.NoError(t, err)
		err = conf.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of --R-dir or --srcjar-out")
	})

	t.Run("NeitherOutputTarget", func(t *testing.T) {
		args := validArgs()
		conf, err := getConfig(parseProcessFlags(t, args[:len(args)-2]...))
		require.NoError(t, err)
		require.Error(t, conf.Validate())
	})

	t.Run("ExtraPackagesWithoutTables", func(t *testing.T) {
		conf := valid(t)
		conf.ExtraResPackages = []string{"org.chromium.extra"}
		err := conf.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one R.txt file per extra package")
	})

	t.Run("V14ToolRequiredUnlessSkipped", func(t *testing.T) {
		args := validArgs()
		conf, err := getConfig(parseProcessFlags(t, args[:len(args)-1]...))
		require.NoError(t, err)
		err = conf.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--v14-tool-path")
	})
}

func TestPipelineOptions(t *testing.T) {
	conf, err := getConfig(parseProcessFlags(t, append(validArgs(),
		"--dependencies-res-zips=a.zip,b.zip",
		"--custom-package=org.example",
		"--shared-resources",
		"--all-resources-zip-out=out/all.zip",
	)...))
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	opts := conf.pipelineOptions()
	assert.Equal(t, []string{"a.zip", "b.zip"}, opts.DependencyZips)
	assert.Equal(t, "org.example", opts.CustomPackage)
	assert.True(t, opts.SharedResources)
	assert.False(t, opts.AppAsSharedLib)
	assert.Equal(t, "out/all.zip", opts.AllResourcesZipOut)
	assert.Equal(t, "out/R.srcjar", opts.SrcjarOut)
	assert.Empty(t, opts.RDir)
	assert.True(t, opts.SkipV14)
}
