package testhelper

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/goleak"
)

var testDirectory string

// Run sets up required testing state and executes the given test suite. The suite fails if any
// Goroutines are left running after all tests have finished.
func Run(m *testing.M) {
	// Run tests in a separate function such that we can use deferred statements and still
	// (indirectly) call `os.Exit()` in case the test setup failed.
	if err := func() error {
		defer mustHaveNoGoroutines()

		cleanup, err := configure()
		if err != nil {
			return fmt.Errorf("test configuration: %w", err)
		}
		defer cleanup()

		if code := m.Run(); code != 0 {
			return fmt.Errorf("tests failed with exit code %d", code)
		}

		return nil
	}(); err != nil {
		fmt.Printf("%s", err)
		os.Exit(1)
	}
}

// configure sets up the global test configuration. On failure, it returns an error and leaves no
// state behind.
func configure() (_ func(), returnedErr error) {
	var err error
	testDirectory, err = os.MkdirTemp("", "sobfilter-")
	if err != nil {
		return nil, err
	}

	cleanup := func() {
		if err := os.RemoveAll(testDirectory); err != nil {
			fmt.Printf("removing test directory: %v\n", err)
		}
		testDirectory = ""
	}

	defer func() {
		if returnedErr != nil {
			cleanup()
		}
	}()

	// The filters must never pick up the environment of the user running the tests.
	for _, key := range []string{
		"SOB",
		"SOBFILTER_CONFIG",
		"SOBFILTER_DEDUPLICATE_TRAILERS",
		"SOBFILTER_LOG_DIR",
		"SOBFILTER_LOG_FORMAT",
		"SOBFILTER_LOG_LEVEL",
		"CORRELATION_ID",
		"GITLAB_TRACING",
	} {
		if err := os.Unsetenv(key); err != nil {
			return nil, fmt.Errorf("unsetting %q: %w", key, err)
		}
	}

	return cleanup, nil
}

func mustHaveNoGoroutines() {
	if err := goleak.Find(); err != nil {
		panic(fmt.Errorf("goroutines running: %w", err))
	}
}
