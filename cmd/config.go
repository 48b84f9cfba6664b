package cmd

import (
	"errors"
	"fmt"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/pflag"
	null "gopkg.in/guregu/null.v3"

	"go.resproc.io/resproc/lib/pipeline"
)

// Config collects every knob of the process command in one place, so that a
// single Validate call can enforce the mutual-exclusivity and requirement
// rules. Optional values use null types to keep "unset" distinguishable
// from zero values.
type Config struct {
	AAPTPath    string
	V14ToolPath string

	AndroidSDKJar   string
	AndroidManifest string

	ResourceDirs        []string
	DependenciesResZips []string

	ResourceZipOut     string
	AllResourcesZipOut null.String
	RDir               null.String
	SrcjarOut          null.String
	RTextOut           null.String
	ProguardFile       null.String

	CustomPackage    null.String
	ExtraResPackages []string
	ExtraRTextFiles  []string

	NonConstantID       null.Bool
	SharedResources     null.Bool
	AppAsSharedLib      null.Bool
	V14Skip             null.Bool
	IncludeAllResources null.Bool
}

// toolPaths hold the external collaborators' binaries; they normally come
// from the environment (RESPROC_AAPT_PATH, RESPROC_V14_TOOL_PATH) and can be
// overridden per invocation with flags.
type toolPaths struct {
	AAPT string `envconfig:"AAPT_PATH"`
	V14  string `envconfig:"V14_TOOL_PATH"`
}

func processCmdFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false

	flags.String("aapt-path", "", "path to the Android aapt tool")
	flags.String("v14-tool-path", "", "path to the v14 compatible resource generator")
	flags.String("android-sdk-jar", "", "the path to the android jar file")
	flags.String("android-manifest", "", "AndroidManifest.xml path")
	flags.StringSlice("resource-dirs", nil, "directories containing resources of this target")
	flags.StringSlice("dependencies-res-zips", nil, "resource zips from dependents")
	flags.String("resource-zip-out", "", "path for output zipped resources")
	flags.String("all-resources-zip-out", "",
		"path for output of all resources, including resources in dependencies")
	flags.String("R-dir", "", "directory to hold generated R.java")
	flags.String("srcjar-out", "", "path to srcjar to contain generated R.java")
	flags.String("r-text-out", "", "path to store the R.txt file generated by aapt")
	flags.String("proguard-file", "", "path to proguard.txt generated file")
	flags.String("custom-package", "", "Java package for R.java")
	flags.StringSlice("extra-res-packages", nil,
		"additional package names to generate R.java files for")
	flags.StringSlice("extra-r-text-files", nil,
		"R.txt file for each additional package, in the format generated by aapt")
	flags.Bool("non-constant-id", false, "generate non-constant resource IDs")
	flags.Bool("shared-resources", false,
		"make a resource package that can be loaded by a different application at runtime "+
			"to access the package's resources")
	flags.Bool("app-as-shared-lib", false,
		"make a resource package that can be loaded as shared library")
	flags.Bool("v14-skip", false, "do not generate v14 resources")
	flags.Bool("include-all-resources", false,
		"include every resource ID in every generated R.java file, ignoring R.txt")

	return flags
}

// getConfig assembles the configuration from CLI flags and the environment;
// a changed flag wins over an environment variable.
func getConfig(flags *pflag.FlagSet) (Config, error) {
	var tools toolPaths
	if err := envconfig.Process("resproc", &tools); err != nil {
		return Config{}, err
	}

	conf := Config{
		AAPTPath:            mustGetString(flags, "aapt-path"),
		V14ToolPath:         mustGetString(flags, "v14-tool-path"),
		AndroidSDKJar:       mustGetString(flags, "android-sdk-jar"),
		AndroidManifest:     mustGetString(flags, "android-manifest"),
		ResourceDirs:        mustGetStringSlice(flags, "resource-dirs"),
		DependenciesResZips: mustGetStringSlice(flags, "dependencies-res-zips"),
		ResourceZipOut:      mustGetString(flags, "resource-zip-out"),
		AllResourcesZipOut:  getNullString(flags, "all-resources-zip-out"),
		RDir:                getNullString(flags, "R-dir"),
		SrcjarOut:           getNullString(flags, "srcjar-out"),
		RTextOut:            getNullString(flags, "r-text-out"),
		ProguardFile:        getNullString(flags, "proguard-file"),
		CustomPackage:       getNullString(flags, "custom-package"),
		ExtraResPackages:    mustGetStringSlice(flags, "extra-res-packages"),
		ExtraRTextFiles:     mustGetStringSlice(flags, "extra-r-text-files"),
		NonConstantID:       getNullBool(flags, "non-constant-id"),
		SharedResources:     getNullBool(flags, "shared-resources"),
		AppAsSharedLib:      getNullBool(flags, "app-as-shared-lib"),
		V14Skip:             getNullBool(flags, "v14-skip"),
		IncludeAllResources: getNullBool(flags, "include-all-resources"),
	}
	if conf.AAPTPath == "" {
		conf.AAPTPath = tools.AAPT
	}
	if conf.V14ToolPath == "" {
		conf.V14ToolPath = tools.V14
	}
	return conf, nil
}

// Validate enforces the requirement and mutual-exclusivity rules before any
// stage runs.
func (c Config) Validate() error {
	required := []struct {
		flag  string
		value string
	}{
		{"aapt-path", c.AAPTPath},
		{"android-sdk-jar", c.AndroidSDKJar},
		{"android-manifest", c.AndroidManifest},
		{"resource-zip-out", c.ResourceZipOut},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required flag --%s", r.flag)
		}
	}
	if len(c.ResourceDirs) == 0 {
		return errors.New("missing required flag --resource-dirs")
	}
	if c.RDir.Valid == c.SrcjarOut.Valid {
		return errors.New("exactly one of --R-dir or --srcjar-out must be specified")
	}
	if len(c.ExtraResPackages) != len(c.ExtraRTextFiles) {
		return fmt.Errorf("need one R.txt file per extra package, got %d packages and %d files",
			len(c.ExtraResPackages), len(c.ExtraRTextFiles))
	}
	if !c.V14Skip.Bool && c.V14ToolPath == "" {
		return errors.New("--v14-tool-path is required unless --v14-skip is given")
	}
	return nil
}

func (c Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		ManifestPath:        c.AndroidManifest,
		SDKJarPath:          c.AndroidSDKJar,
		ResourceDirs:        c.ResourceDirs,
		DependencyZips:      c.DependenciesResZips,
		ResourceZipOut:      c.ResourceZipOut,
		AllResourcesZipOut:  c.AllResourcesZipOut.String,
		RDir:                c.RDir.String,
		SrcjarOut:           c.SrcjarOut.String,
		RTextOut:            c.RTextOut.String,
		ProguardFile:        c.ProguardFile.String,
		CustomPackage:       c.CustomPackage.String,
		ExtraResPackages:    c.ExtraResPackages,
		ExtraRTextFiles:     c.ExtraRTextFiles,
		NonConstantID:       c.NonConstantID.Bool,
		SharedResources:     c.SharedResources.Bool,
		AppAsSharedLib:      c.AppAsSharedLib.Bool,
		IncludeAllResources: c.IncludeAllResources.Bool,
		SkipV14:             c.V14Skip.Bool,
	}
}

func mustGetString(flags *pflag.FlagSet, key string) string {
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return v
}

func mustGetStringSlice(flags *pflag.FlagSet, key string) []string {
	v, err := flags.GetStringSlice(key)
	if err != nil {
		panic(err)
	}
	return v
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	return null.NewString(mustGetString(flags, key), flags.Changed(key))
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	v, err := flags.GetBool(key)
	if err != nil {
		panic(err)
	}
	return null.NewBool(v, flags.Changed(key))
}
