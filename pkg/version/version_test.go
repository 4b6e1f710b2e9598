package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestGetVersionInfo(t *testing.T) {
	is := is.New(t)

	info := GetVersionInfo()
	is.True(strings.HasPrefix(info, "musickly version dev"))
	is.True(strings.Contains(info, "commit: unknown"))
	is.True(strings.Contains(info, runtime.Version()))
}

func TestGet_CustomValues(t *testing.T) {
	is := is.New(t)

	originalVersion, originalCommit, originalBuildTime := Version, GitCommit, BuildTime
	defer func() {
		Version, GitCommit, BuildTime = originalVersion, originalCommit, originalBuildTime
	}()

	Version = "v1.0.0"
	GitCommit = "abc123"
	BuildTime = "2024-01-01T00:00:00Z"

	got := Get()
	is.Equal(got.Version, "v1.0.0")
	is.Equal(got.GitCommit, "abc123")
	is.Equal(got.BuildTime, "2024-01-01T00:00:00Z")
	is.Equal(got.GoVersion, runtime.Version())
	is.Equal(got.String(), GetVersionInfo())
}
