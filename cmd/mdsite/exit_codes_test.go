package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "generic error", err: errors.New("boom"), want: ExitGeneral},
		{name: "failed documents", err: fmt.Errorf("3 document(s) failed"), want: ExitGeneral},
		{name: "file not found", err: os.ErrNotExist, want: ExitIO},
		{name: "permission denied", err: os.ErrPermission, want: ExitIO},
		{name: "no source", err: fmt.Errorf("%w: /tmp/nope", ErrNoSource), want: ExitIO},
		{name: "read failure", err: fmt.Errorf("%w: disk", ErrReadDocument), want: ExitIO},
		{name: "write failure", err: fmt.Errorf("%w: disk", ErrWritePage), want: ExitIO},
		{name: "copy failure", err: fmt.Errorf("%w: disk", ErrCopyStatic), want: ExitIO},
		{name: "config not found", err: fmt.Errorf("loading config: %w", config.ErrConfigNotFound), want: ExitUsage},
		{name: "config parse", err: fmt.Errorf("loading config: %w", config.ErrConfigParse), want: ExitUsage},
		{name: "field too long", err: config.ErrFieldTooLong, want: ExitUsage},
		{name: "bad exclude", err: config.ErrInvalidExclude, want: ExitUsage},
		{name: "bad permalink", err: fmt.Errorf("%w: typo", mdsite.ErrInvalidPermalink), want: ExitUsage},
		{name: "bad worker count", err: fmt.Errorf("%w: -1", ErrInvalidWorkerCount), want: ExitUsage},
		{name: "unsafe clean", err: fmt.Errorf("%w: /", ErrUnsafeClean), want: ExitUsage},
		{name: "unsupported shell", err: fmt.Errorf("%w: fish", ErrUnsupportedShell), want: ExitUsage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
