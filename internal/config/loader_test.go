package config_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/okian/bioage/internal/config"
	"github.com/okian/bioage/internal/domain/baa"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.BAAIncludeSexTerm, convey.ShouldBeFalse)
				convey.So(cfg.BAATable(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BIOAGE_ADDR", ":8080")
			_ = os.Setenv("BIOAGE_LOG_LEVEL", "debug")
			_ = os.Setenv("BIOAGE_LOG_FORMAT", "json")
			_ = os.Setenv("BIOAGE_BAA_INCLUDE_SEX_TERM", "true")
			_ = os.Setenv("BIOAGE_METRICS_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.BAAIncludeSexTerm, convey.ShouldBeTrue)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
log_level: warn
baa_include_sex_term: true
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIOAGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.BAAIncludeSexTerm, convey.ShouldBeTrue)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
baa_include_sex_term: true
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIOAGE_CONFIG", tmpFile)
			_ = os.Setenv("BIOAGE_BAA_INCLUDE_SEX_TERM", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")       // From file
				convey.So(cfg.BAAIncludeSexTerm, convey.ShouldBeFalse) // Overridden by env
			})
		})

		convey.Convey("When loading a full coefficient override", func() {
			tmpFile := createTempConfigFile(coefficientsYAML(baa.DefaultTable()))
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIOAGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the table is decoded entry by entry", func() {
				convey.So(err, convey.ShouldBeNil)
				table := cfg.BAATable()
				convey.So(table.Validate(), convey.ShouldBeNil)
				convey.So(table["age"], convey.ShouldResemble, baa.DefaultTable()["age"])
				convey.So(table[baa.SexFeature].Baseline, convey.ShouldEqual, 0.51779499)
			})
		})

		convey.Convey("When the coefficient override misses a feature", func() {
			table := baa.DefaultTable()
			delete(table, "glucose")
			tmpFile := createTempConfigFile(coefficientsYAML(table))
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIOAGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, baa.ErrUnknownFeature), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIOAGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BIOAGE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("BIOAGE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown log format", func() {
			_ = os.Setenv("BIOAGE_LOG_FORMAT", "xml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log_format")
			})
		})

		convey.Convey("When loading config with a dotenv file", func() {
			path := writeEnvFile(t, "BIOAGE_ADDR=:7070\nBIOAGE_BAA_INCLUDE_SEX_TERM=true\nOTHER_VALUE=ignored\n")
			_ = os.Setenv("BIOAGE_ENV_FILE", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file values should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BAAIncludeSexTerm, convey.ShouldBeTrue)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with a dotenv file and env vars", func() {
			path := writeEnvFile(t, "BIOAGE_ADDR=:7070\nBIOAGE_LOG_LEVEL=warn\n")
			_ = os.Setenv("BIOAGE_ENV_FILE", path)
			_ = os.Setenv("BIOAGE_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should override the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When loading config with a missing dotenv file", func() {
			_ = os.Setenv("BIOAGE_ENV_FILE", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an invalid boolean", func() {
			_ = os.Setenv("BIOAGE_BAA_INCLUDE_SEX_TERM", "maybe")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BIOAGE_CONFIG",
		"BIOAGE_ADDR",
		"BIOAGE_LOG_LEVEL",
		"BIOAGE_LOG_FORMAT",
		"BIOAGE_METRICS_ENABLED",
		"BIOAGE_BAA_INCLUDE_SEX_TERM",
		"BIOAGE_ENV_FILE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func coefficientsYAML(table baa.Table) string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("baa_coefficients:\n")
	for _, name := range names {
		c := table[name]
		fmt.Fprintf(&b, "  %s:\n    baseline: %v\n    enet: %v\n    mean: %v\n", name, c.Baseline, c.ENet, c.Mean)
	}
	return b.String()
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "bioage-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}
