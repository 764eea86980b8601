package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound reports that a tool could not be located.
var ErrNotFound = errors.New("executable not found")

// Requirement defines an external tool hlsmaker relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Resolved    string
	Detail      string
}

// Resolver locates executables. Bare names are searched in SearchDirs first
// and then on PATH; names containing a path separator are used as given.
type Resolver struct {
	SearchDirs []string
	// WorkDir replaces "." in SearchDirs and anchors relative paths. Empty
	// means the process working directory.
	WorkDir string
}

// Resolve returns the absolute path of an executable file for command.
func (r Resolver) Resolve(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("%w: command not configured", ErrNotFound)
	}

	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		candidate := r.anchor(command)
		if err := checkExecutable(candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}

	searched := make([]string, 0, len(r.SearchDirs)+1)
	for _, dir := range r.SearchDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		candidate := filepath.Join(r.anchor(dir), executableName(command))
		searched = append(searched, filepath.Dir(candidate))
		if checkExecutable(candidate) == nil {
			return candidate, nil
		}
	}

	if found, err := exec.LookPath(command); err == nil {
		abs, absErr := filepath.Abs(found)
		if absErr != nil {
			return found, nil
		}
		return abs, nil
	}
	searched = append(searched, "$PATH")

	return "", fmt.Errorf("%w: %q (searched %s)", ErrNotFound, command, strings.Join(searched, ", "))
}

// Check evaluates the provided requirements and reports availability.
func (r Resolver) Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		resolved, err := r.Resolve(req.Command)
		if err != nil {
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Resolved = resolved
		results = append(results, status)
	}
	return results
}

func (r Resolver) anchor(path string) string {
	base := r.WorkDir
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			base = wd
		}
	}
	if path == "." {
		return base
	}
	if filepath.IsAbs(path) || base == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !isExecutable(info) {
		return fmt.Errorf("%s is not an executable file", path)
	}
	return nil
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && filepath.Ext(base) == "" {
		return base + ".exe"
	}
	return base
}
