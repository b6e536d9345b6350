package platform

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

const (
	DARWIN  = "darwin"
	WINDOWS = "windows"
	LINUX   = "linux"
	FREEBSD = "freebsd"
	OPENBSD = "openbsd"
	NETBSD  = "netbsd"

	AMD64 = "amd64"
	ARM64 = "arm64"
	ARM   = "arm"
)

// Distro is the Linux family that decides which engine build runs.
type Distro string

const (
	DistroDebian Distro = "debian"
	DistroRhel   Distro = "rhel"
	DistroMusl   Distro = "musl"
	DistroArch   Distro = "arch"
	DistroNixOS  Distro = "nixos"
	DistroArm    Distro = "arm"
)

// DefaultLibSSLVersion is used when no libssl could be found.
const DefaultLibSSLVersion = "1.1.x"

var ErrUnsupported = errors.New("unsupported platform")

// OSInfo is what binary target selection depends on.
type OSInfo struct {
	Platform string
	Arch     string
	Distro   Distro
	// FreeBSDVersion is the major release on FreeBSD, e.g. "13".
	FreeBSDVersion string
	// LibSSLVersion is one of "1.0.x", "1.1.x", "3.0.x".
	LibSSLVersion string
}

// KnownBinaryTargets lists the targets engines are published for.
var KnownBinaryTargets = []string{
	"darwin",
	"darwin-arm64",
	"windows",
	"debian-openssl-1.0.x",
	"debian-openssl-1.1.x",
	"debian-openssl-3.0.x",
	"rhel-openssl-1.0.x",
	"rhel-openssl-1.1.x",
	"rhel-openssl-3.0.x",
	"linux-arm64-openssl-1.0.x",
	"linux-arm64-openssl-1.1.x",
	"linux-arm64-openssl-3.0.x",
	"linux-arm-openssl-1.0.x",
	"linux-arm-openssl-1.1.x",
	"linux-arm-openssl-3.0.x",
	"linux-musl",
	"linux-musl-openssl-3.0.x",
	"linux-musl-arm64-openssl-1.1.x",
	"linux-musl-arm64-openssl-3.0.x",
	"linux-nixos",
	"freebsd11",
	"freebsd12",
	"freebsd13",
	"freebsd14",
	"openbsd",
	"netbsd",
}

func IsKnown(target string) bool {
	for _, t := range KnownBinaryTargets {
		if t == target {
			return true
		}
	}
	return false
}

// BinaryTarget maps detected OS information to an engine binary target.
func BinaryTarget(info OSInfo) string {
	ssl := info.LibSSLVersion
	if ssl == "" {
		ssl = DefaultLibSSLVersion
	}

	switch info.Platform {
	case DARWIN:
		if info.Arch == ARM64 {
			return "darwin-arm64"
		}
		return "darwin"
	case WINDOWS:
		return "windows"
	case FREEBSD:
		if info.FreeBSDVersion != "" {
			return "freebsd" + info.FreeBSDVersion
		}
		return "freebsd13"
	case OPENBSD:
		return "openbsd"
	case NETBSD:
		return "netbsd"
	}

	if info.Distro == DistroNixOS {
		return "linux-nixos"
	}

	switch info.Arch {
	case ARM64:
		if info.Distro == DistroMusl {
			return "linux-musl-arm64-openssl-" + ssl
		}
		return "linux-arm64-openssl-" + ssl
	case ARM:
		return "linux-arm-openssl-" + ssl
	}

	switch info.Distro {
	case DistroMusl:
		if ssl == "1.1.x" {
			return "linux-musl"
		}
		return "linux-musl-openssl-" + ssl
	case DistroRhel:
		return "rhel-openssl-" + ssl
	default:
		return "debian-openssl-" + ssl
	}
}

var (
	detected    string
	detectedErr error
	detectOnce  sync.Once
)

// GetPlatform returns the binary target of the running machine. The result
// is computed once per process.
func GetPlatform(ctx context.Context) (string, error) {
	detectOnce.Do(func() {
		info, err := NewDetector().Detect(ctx)
		if err != nil {
			detectedErr = err
			return
		}
		detected = BinaryTarget(info)
	})
	return detected, detectedErr
}

// GetOSInfo detects the running machine without memoization.
func GetOSInfo(ctx context.Context) (OSInfo, error) {
	return NewDetector().Detect(ctx)
}
