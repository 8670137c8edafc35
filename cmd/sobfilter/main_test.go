package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/sobfilter/internal/log"
	"gitlab.com/gitlab-org/sobfilter/internal/testhelper"
)

type runSetup struct {
	args        []string
	environment map[string]string
	logFile     string
}

func TestRun(t *testing.T) {
	withIdentity := func(t *testing.T) runSetup {
		return runSetup{
			environment: map[string]string{"SOB": "Jane Doe <jane@example.com>"},
		}
	}

	for _, tc := range []struct {
		desc              string
		setup             func(t *testing.T) runSetup
		stdin             io.Reader
		expectedCode      int
		expectedStdout    string
		expectedStderr    string
		expectedLogRegexp string
	}{
		{
			desc:           "success",
			setup:          withIdentity,
			stdin:          strings.NewReader("Fix bug\n\nThe bug was nasty.\n"),
			expectedStdout: "Fix bug\n\nThe bug was nasty.\nSigned-off-by: Jane Doe <jane@example.com>",
		},
		{
			desc:           "existing trailer is replaced",
			setup:          withIdentity,
			stdin:          strings.NewReader("Fix bug\n\nSigned-off-by: old@example.com\n"),
			expectedStdout: "Fix bug\n\nSigned-off-by: Jane Doe <jane@example.com>",
		},
		{
			desc:           "surrounding whitespace is stripped",
			setup:          withIdentity,
			stdin:          strings.NewReader("\n\n   Fix bug  \r\n\n\n"),
			expectedStdout: "Fix bug\nSigned-off-by: Jane Doe <jane@example.com>",
		},
		{
			desc:           "empty message",
			setup:          withIdentity,
			stdin:          strings.NewReader(""),
			expectedCode:   1,
			expectedStderr: "ERROR: rework commit message: expected a non-empty commit message\n",
		},
		{
			desc:           "whitespace-only message",
			setup:          withIdentity,
			stdin:          strings.NewReader(" \n\t\r\n\n"),
			expectedCode:   1,
			expectedStderr: "ERROR: rework commit message: expected a non-empty commit message\n",
		},
		{
			desc: "missing identity",
			setup: func(t *testing.T) runSetup {
				testhelper.Unsetenv(t, "SOB")
				return runSetup{}
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedCode:   1,
			expectedStderr: "ERROR: invalid configuration: identity: not set\n",
		},
		{
			desc: "empty identity",
			setup: func(t *testing.T) runSetup {
				return runSetup{environment: map[string]string{"SOB": ""}}
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedStdout: "Fix bug\nSigned-off-by: ",
		},
		{
			desc: "identity flag overrides environment",
			setup: func(t *testing.T) runSetup {
				return runSetup{
					args:        []string{"--identity", "flag@example.com"},
					environment: map[string]string{"SOB": "env@example.com"},
				}
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedStdout: "Fix bug\nSigned-off-by: flag@example.com",
		},
		{
			desc: "identity from config file",
			setup: func(t *testing.T) runSetup {
				configDir := testhelper.TempDir(t)
				testhelper.WriteFiles(t, configDir, map[string]any{
					"sobfilter.toml": "identity = \"file@example.com\"\n",
				})

				return runSetup{
					args: []string{"-c", filepath.Join(configDir, "sobfilter.toml")},
				}
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedStdout: "Fix bug\nSigned-off-by: file@example.com",
		},
		{
			desc: "config file from environment",
			setup: func(t *testing.T) runSetup {
				configDir := testhelper.TempDir(t)
				testhelper.WriteFiles(t, configDir, map[string]any{
					"sobfilter.toml": "identity = \"file@example.com\"\ndeduplicate_trailers = true\n",
				})

				return runSetup{
					environment: map[string]string{
						"SOBFILTER_CONFIG": filepath.Join(configDir, "sobfilter.toml"),
					},
				}
			},
			stdin:          strings.NewReader("Fix bug\nSigned-off-by: a@example.com\nSigned-off-by: a@example.com\nAcked-by: b@example.com"),
			expectedStdout: "Fix bug\nSigned-off-by: a@example.com\nAcked-by: b@example.com\nSigned-off-by: file@example.com",
		},
		{
			desc: "invalid config file",
			setup: func(t *testing.T) runSetup {
				configDir := testhelper.TempDir(t)
				testhelper.WriteFiles(t, configDir, map[string]any{
					"sobfilter.toml": "identitee = \"file@example.com\"\n",
				})

				return runSetup{
					args: []string{"--config", filepath.Join(configDir, "sobfilter.toml")},
				}
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedCode:   1,
			expectedStderr: "ERROR: load configuration: load toml: strict mode: fields in the document are missing in the target struct\n",
		},
		{
			desc: "deduplication flag",
			setup: func(t *testing.T) runSetup {
				setup := withIdentity(t)
				setup.args = []string{"--deduplicate-trailers"}
				return setup
			},
			stdin:          strings.NewReader("Fix bug\n\nSigned-off-by: a@example.com\nSigned-off-by: a@example.com\nSigned-off-by: old@example.com"),
			expectedStdout: "Fix bug\n\nSigned-off-by: a@example.com\nSigned-off-by: Jane Doe <jane@example.com>",
		},
		{
			desc: "deduplication from environment",
			setup: func(t *testing.T) runSetup {
				setup := withIdentity(t)
				setup.environment["SOBFILTER_DEDUPLICATE_TRAILERS"] = "true"
				return setup
			},
			stdin:          strings.NewReader("Fix bug\n\nSigned-off-by: a@example.com\nSigned-off-by: a@example.com\nSigned-off-by: old@example.com"),
			expectedStdout: "Fix bug\n\nSigned-off-by: a@example.com\nSigned-off-by: Jane Doe <jane@example.com>",
		},
		{
			desc: "deduplication flag overrides environment",
			setup: func(t *testing.T) runSetup {
				setup := withIdentity(t)
				setup.environment["SOBFILTER_DEDUPLICATE_TRAILERS"] = "true"
				setup.args = []string{"--deduplicate-trailers=false"}
				return setup
			},
			stdin:          strings.NewReader("Fix bug\n\nSigned-off-by: a@example.com\nSigned-off-by: a@example.com\nSigned-off-by: old@example.com"),
			expectedStdout: "Fix bug\n\nSigned-off-by: a@example.com\nSigned-off-by: a@example.com\nSigned-off-by: Jane Doe <jane@example.com>",
		},
		{
			desc: "invalid log format",
			setup: func(t *testing.T) runSetup {
				setup := withIdentity(t)
				setup.args = []string{"--log-format", "yaml"}
				return setup
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedCode:   1,
			expectedStderr: "ERROR: invalid configuration: log_format: not supported: yaml\n",
		},
		{
			desc: "unexpected arguments",
			setup: func(t *testing.T) runSetup {
				setup := withIdentity(t)
				setup.args = []string{"HEAD"}
				return setup
			},
			stdin:          strings.NewReader("Fix bug"),
			expectedCode:   1,
			expectedStderr: "ERROR: unexpected arguments: [\"HEAD\"]\n",
		},
		{
			desc:           "unreadable stdin",
			setup:          withIdentity,
			stdin:          iotest.ErrReader(errors.New("broken pipe")),
			expectedCode:   1,
			expectedStderr: "ERROR: reading commit message from stdin: broken pipe\n",
		},
		{
			desc: "log file",
			setup: func(t *testing.T) runSetup {
				logDir := testhelper.TempDir(t)

				setup := withIdentity(t)
				setup.environment["SOBFILTER_LOG_DIR"] = logDir
				setup.environment["CORRELATION_ID"] = "correlation-id-1"
				setup.logFile = filepath.Join(logDir, log.FilterLogName)
				return setup
			},
			stdin:             strings.NewReader("Fix bug"),
			expectedStdout:    "Fix bug\nSigned-off-by: Jane Doe <jane@example.com>",
			expectedLogRegexp: `level=info msg="rewrote commit message" correlation_id=correlation-id-1 .*identity="Jane Doe <jane@example.com>"`,
		},
		{
			desc: "log file with empty message",
			setup: func(t *testing.T) runSetup {
				logDir := testhelper.TempDir(t)

				setup := withIdentity(t)
				setup.args = []string{"--log-dir", logDir, "--log-format", "json"}
				setup.logFile = filepath.Join(logDir, log.FilterLogName)
				return setup
			},
			stdin:             strings.NewReader("\n\n"),
			expectedCode:      1,
			expectedStderr:    "ERROR: rework commit message: expected a non-empty commit message\n",
			expectedLogRegexp: `"error":"expected a non-empty commit message".*"level":"error","msg":"rework commit message"`,
		},
		{
			desc: "log level filters messages",
			setup: func(t *testing.T) runSetup {
				logDir := testhelper.TempDir(t)

				setup := withIdentity(t)
				setup.args = []string{"--log-dir", logDir, "--log-level", "error"}
				setup.logFile = filepath.Join(logDir, log.FilterLogName)
				return setup
			},
			stdin:             strings.NewReader("Fix bug"),
			expectedStdout:    "Fix bug\nSigned-off-by: Jane Doe <jane@example.com>",
			expectedLogRegexp: "^$",
		},
		{
			desc:           "version",
			setup:          func(t *testing.T) runSetup { return runSetup{args: []string{"--version"}} },
			stdin:          strings.NewReader(""),
			expectedStdout: "sobfilter, version unknown\n",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			setup := tc.setup(t)
			for key, value := range setup.environment {
				t.Setenv(key, value)
			}

			var stdout, stderr bytes.Buffer
			code := run(append([]string{binaryName}, setup.args...), tc.stdin, &stdout, &stderr)

			require.Equal(t, tc.expectedCode, code)
			require.Equal(t, tc.expectedStdout, stdout.String())
			require.Equal(t, tc.expectedStderr, stderr.String())

			if tc.expectedLogRegexp != "" {
				logData := testhelper.MustReadFile(t, setup.logFile)
				require.Regexp(t, tc.expectedLogRegexp, string(logData))
			}
		})
	}
}

func TestRun_unknownFlag(t *testing.T) {
	t.Setenv("SOB", "jane@example.com")

	var stdout, stderr bytes.Buffer
	code := run([]string{binaryName, "--bogus"}, strings.NewReader("Fix bug"), &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Empty(t, stdout.String())
	require.Equal(t, "ERROR: flag provided but not defined: -bogus\n", stderr.String())
}

func TestRun_unwritableLogDirectory(t *testing.T) {
	t.Setenv("SOB", "jane@example.com")

	logDir := filepath.Join(testhelper.TempDir(t), "does-not-exist")

	var stdout, stderr bytes.Buffer
	code := run([]string{binaryName, "--log-dir", logDir}, strings.NewReader("Fix bug"), &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Equal(t, "Fix bug\nSigned-off-by: jane@example.com", stdout.String())
	require.Equal(t, fmt.Sprintf(
		"WARNING: initializing log file for sobfilter: opening log file: open %s: no such file or directory\n",
		filepath.Join(logDir, log.FilterLogName),
	), stderr.String())
}

func TestRun_idempotent(t *testing.T) {
	t.Setenv("SOB", "Jane Doe <jane@example.com>")

	message := "Fix bug\n\nSome details.\n\nSigned-off-by: old@example.com\n\n"

	var once, twice bytes.Buffer
	require.Equal(t, 0, run([]string{binaryName}, strings.NewReader(message), &once, io.Discard))
	require.Equal(t, 0, run([]string{binaryName}, bytes.NewReader(once.Bytes()), &twice, io.Discard))

	require.Equal(t, "Fix bug\n\nSome details.\n\nSigned-off-by: Jane Doe <jane@example.com>", once.String())
	require.Equal(t, once.String(), twice.String())
}

func TestRequireStdin(t *testing.T) {
	t.Parallel()

	t.Run("pipe", func(t *testing.T) {
		t.Parallel()

		reader, writer, err := os.Pipe()
		require.NoError(t, err)
		defer testhelper.MustClose(t, reader)
		defer testhelper.MustClose(t, writer)

		require.NoError(t, requireStdin(reader))
	})

	t.Run("regular file", func(t *testing.T) {
		t.Parallel()

		dir := testhelper.TempDir(t)
		testhelper.WriteFiles(t, dir, map[string]any{"message": "Fix bug"})

		file, err := os.Open(filepath.Join(dir, "message"))
		require.NoError(t, err)
		defer testhelper.MustClose(t, file)

		require.NoError(t, requireStdin(file))
	})

	t.Run("character device", func(t *testing.T) {
		t.Parallel()

		file, err := os.Open(os.DevNull)
		require.NoError(t, err)
		defer testhelper.MustClose(t, file)

		require.Equal(t, errStdinIsTerminal, requireStdin(file))
	})

	t.Run("closed file", func(t *testing.T) {
		t.Parallel()

		reader, writer, err := os.Pipe()
		require.NoError(t, err)
		testhelper.MustClose(t, writer)
		testhelper.MustClose(t, reader)

		require.ErrorIs(t, requireStdin(reader), errStdinIsTerminal)
	})
}
