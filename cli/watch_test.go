package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/flightning/quadviz/logging"
)

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "traj.json")
	other := filepath.Join(dir, "notes.txt")
	test.That(t, os.WriteFile(input, []byte("{}"), 0o600), test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := make(chan int, 10)
	count := 0
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{input}, 100*time.Millisecond, logging.NewTestLogger(t), func(context.Context) error {
			count++
			calls <- count
			if count == 2 {
				return errors.New("bad edit")
			}
			return nil
		})
	}()

	wait := func() int {
		select {
		case n := <-calls:
			return n
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a render")
		}
		return 0
	}
	test.That(t, wait(), test.ShouldEqual, 1)

	// unrelated files in the same directory are ignored
	test.That(t, os.WriteFile(other, []byte("x"), 0o600), test.ShouldBeNil)
	// several quick writes render once
	for i := 0; i < 3; i++ {
		test.That(t, os.WriteFile(input, []byte("{ }"), 0o600), test.ShouldBeNil)
	}
	test.That(t, wait(), test.ShouldEqual, 2)

	// a failed render keeps watching
	test.That(t, os.WriteFile(input, []byte("{}"), 0o600), test.ShouldBeNil)
	test.That(t, wait(), test.ShouldEqual, 3)

	cancel()
	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	test.That(t, calls, test.ShouldHaveLength, 0)
}
