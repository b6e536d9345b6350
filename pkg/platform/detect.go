package platform

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/logger"
)

var debug = logger.Debug("prisma:getos")

// CommandFunc runs a command and returns its stdout.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Detector inspects a filesystem rooted at Root. Zero fields fall back to the
// running machine.
type Detector struct {
	Root    string
	GOOS    string
	GOARCH  string
	Command CommandFunc
}

func NewDetector() *Detector {
	return &Detector{
		Root:    "/",
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		Command: runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() // #nosec
}

var libSSLDirs = []string{
	"lib",
	"lib64",
	"usr/lib",
	"usr/lib64",
	"lib/x86_64-linux-gnu",
	"usr/lib/x86_64-linux-gnu",
	"lib/aarch64-linux-gnu",
	"usr/lib/aarch64-linux-gnu",
	"lib/arm-linux-gnueabihf",
	"usr/lib/arm-linux-gnueabihf",
}

var (
	libSSLRe     = regexp.MustCompile(`^libssl\.so\.(\d+)(?:\.(\d+))?`)
	opensslVerRe = regexp.MustCompile(`^OpenSSL\s+(\d+)\.(\d+)`)
	freebsdVerRe = regexp.MustCompile(`^(\d+)\.`)
)

// Detect gathers the OSInfo of the target machine.
func (d *Detector) Detect(ctx context.Context) (OSInfo, error) {
	info := OSInfo{Platform: d.GOOS, Arch: d.GOARCH}
	if info.Platform == "" {
		info.Platform = runtime.GOOS
	}
	if info.Arch == "" {
		info.Arch = runtime.GOARCH
	}

	switch info.Platform {
	case LINUX:
	case FREEBSD:
		info.FreeBSDVersion = d.freebsdVersion(ctx)
		return info, nil
	case DARWIN, WINDOWS, OPENBSD, NETBSD:
		return info, nil
	default:
		return info, errors.Wrapf(ErrUnsupported, "%s/%s", info.Platform, info.Arch)
	}

	distro, err := d.distro()
	if err != nil {
		debug.Printf("failed to read os-release: %v", err)
	}
	info.Distro = distro

	info.LibSSLVersion = d.libSSLFromFiles()
	if info.LibSSLVersion == "" {
		info.LibSSLVersion = d.libSSLFromCommand(ctx)
	}
	if info.LibSSLVersion == "" {
		logger.WarnOnce("libssl", "Prisma failed to detect the libssl/openssl version to use, and may not work as expected. Defaulting to \"openssl-"+DefaultLibSSLVersion+"\".")
		info.LibSSLVersion = DefaultLibSSLVersion
	}
	debug.Printf("detected %+v", info)
	return info, nil
}

func (d *Detector) path(rel string) string {
	root := d.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(root, rel)
}

func (d *Detector) distro() (Distro, error) {
	data, err := os.ReadFile(d.path("etc/os-release"))
	if err != nil {
		return "", err
	}
	return ParseOSRelease(string(data))
}

// ParseOSRelease maps the content of /etc/os-release to a Distro.
func ParseOSRelease(content string) (Distro, error) {
	vals, err := godotenv.Unmarshal(content)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse os-release")
	}
	id := strings.ToLower(vals["ID"])
	like := strings.Fields(strings.ToLower(vals["ID_LIKE"]))
	has := func(names ...string) bool {
		for _, n := range names {
			if id == n {
				return true
			}
			for _, l := range like {
				if l == n {
					return true
				}
			}
		}
		return false
	}

	switch {
	case id == "alpine":
		return DistroMusl, nil
	case id == "raspbian":
		return DistroArm, nil
	case id == "nixos":
		return DistroNixOS, nil
	case has("debian", "ubuntu"):
		return DistroDebian, nil
	case has("rhel", "centos", "fedora", "amzn"):
		return DistroRhel, nil
	case has("arch"):
		return DistroArch, nil
	}
	return "", nil
}

func (d *Detector) libSSLFromFiles() string {
	best := ""
	for _, dir := range libSSLDirs {
		entries, err := os.ReadDir(d.path(dir))
		if err != nil {
			continue
		}
		for _, e := range entries {
			m := libSSLRe.FindStringSubmatch(e.Name())
			if m == nil {
				continue
			}
			if v := normalizeSSL(m[1], m[2]); v > best {
				best = v
			}
		}
	}
	return best
}

func (d *Detector) libSSLFromCommand(ctx context.Context) string {
	if d.Command == nil {
		return ""
	}
	out, err := d.Command(ctx, "openssl", "version", "-v")
	if err != nil {
		debug.Printf("openssl version failed: %v", err)
		return ""
	}
	m := opensslVerRe.FindStringSubmatch(strings.TrimSpace(string(out)))
	if m == nil {
		return ""
	}
	return normalizeSSL(m[1], m[2])
}

func (d *Detector) freebsdVersion(ctx context.Context) string {
	if d.Command == nil {
		return ""
	}
	out, err := d.Command(ctx, "freebsd-version")
	if err != nil {
		return ""
	}
	m := freebsdVerRe.FindStringSubmatch(strings.TrimSpace(string(out)))
	if m == nil {
		return ""
	}
	return m[1]
}

// normalizeSSL turns a major/minor pair into the engine's libssl label.
// Every 3.x release shares the 3.0.x build.
func normalizeSSL(major, minor string) string {
	switch major {
	case "0", "":
		return ""
	case "10":
		// RHEL 7 ships OpenSSL 1.0.2 as libssl.so.10
		return "1.0.x"
	case "1":
		if minor == "0" {
			return "1.0.x"
		}
		return "1.1.x"
	default:
		return "3.0.x"
	}
}
