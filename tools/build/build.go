package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const (
	executableName = "kmm"

	posthogEnvVar = "POSTHOG_API_KEY"
	posthogLdflag = "github.com/meza/koikatsu-mod-manager/internal/environment.posthogAPIKeyDefault"
)

// Koikatsu only ships for Windows; the other targets serve Proton and Wine installs.
var buildTargets = []buildTarget{
	{goos: "windows", goarch: "amd64"},
	{goos: "windows", goarch: "arm64"},
	{goos: "linux", goarch: "amd64"},
	{goos: "linux", goarch: "arm64"},
	{goos: "darwin", goarch: "arm64"},
}

type buildTarget struct {
	goos   string
	goarch string
}

type commandRunner interface {
	Run(*exec.Cmd) error
}

type logger interface {
	Printf(format string, args ...any)
}

type execRunner struct{}

func (execRunner) Run(command *exec.Cmd) error {
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

type buildTool struct {
	repoRoot      string
	baseEnv       []string
	goBinary      string
	commandRunner commandRunner
	envFileReader func(string) (map[string]string, error)
	logger        logger
}

var exit = os.Exit

func main() {
	exit(runMain())
}

func runMain() int {
	workingDirectory, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	repoRoot, err := findRepoRoot(workingDirectory)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tool := &buildTool{
		repoRoot:      repoRoot,
		baseEnv:       os.Environ(),
		goBinary:      "go",
		commandRunner: execRunner{},
		envFileReader: readEnvFile,
		logger:        log.New(os.Stdout, "build: ", 0),
	}
	if err := tool.run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func (tool *buildTool) run() error {
	envFileValues, err := tool.envFileReader(filepath.Join(tool.repoRoot, ".env"))
	if err != nil {
		return fmt.Errorf("error: failed to read .env: %w", err)
	}

	envMap := envSliceToMap(tool.baseEnv)
	if _, exists := envMap[posthogEnvVar]; !exists {
		if value, ok := envFileValues[posthogEnvVar]; ok {
			envMap[posthogEnvVar] = value
		}
	}
	if envMap[posthogEnvVar] == "" {
		return fmt.Errorf("error: missing build token %s\nhint: export it or add it to ./.env before running make", posthogEnvVar)
	}

	ldflags := fmt.Sprintf("-s -w -X %s=%s", posthogLdflag, envMap[posthogEnvVar])
	for _, target := range buildTargets {
		tool.logger.Printf("building %s/%s", target.goos, target.goarch)
		if err := tool.buildTarget(target, envMap, ldflags); err != nil {
			return err
		}
	}

	tool.logger.Printf("build complete")
	return nil
}

func (tool *buildTool) buildTarget(target buildTarget, envMap map[string]string, ldflags string) error {
	outputDir := filepath.Join(tool.repoRoot, "build", target.goos, target.goarch)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("error: create build directory: %w", err)
	}

	outputName := executableName
	if target.goos == "windows" {
		outputName += ".exe"
	}
	outputPath := filepath.Join(outputDir, outputName)

	environment := make(map[string]string, len(envMap)+3)
	for key, value := range envMap {
		environment[key] = value
	}
	environment["GOOS"] = target.goos
	environment["GOARCH"] = target.goarch
	environment["CGO_ENABLED"] = "0"

	command := exec.Command(tool.goBinary, "build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, "main.go")
	command.Dir = tool.repoRoot
	command.Env = envMapToSlice(environment)

	if err := tool.commandRunner.Run(command); err != nil {
		return fmt.Errorf("build %s/%s: %w", target.goos, target.goarch, err)
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return godotenv.Parse(bytes.NewReader(data))
}

func findRepoRoot(startDir string) (string, error) {
	current := startDir
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New("error: failed to locate repo root (missing go.mod); run from repo root")
		}
		current = parent
	}
}

func envSliceToMap(baseEnv []string) map[string]string {
	envMap := make(map[string]string, len(baseEnv))
	for _, entry := range baseEnv {
		if key, value, ok := strings.Cut(entry, "="); ok {
			envMap[key] = value
		}
	}
	return envMap
}

func envMapToSlice(envMap map[string]string) []string {
	keys := make([]string, 0, len(envMap))
	for key := range envMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, key+"="+envMap[key])
	}
	return entries
}
