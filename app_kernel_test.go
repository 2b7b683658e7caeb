//go:build !manifold

package main

import (
	"strings"
	"testing"
)

func TestE2EManifoldKernelUnavailable(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))
	before := app.Config()

	errs := app.ApplyScene(`(geometry :kernel :manifold)`)
	if len(errs) == 0 {
		t.Fatal("expected an error selecting the manifold kernel")
	}
	if !strings.Contains(errs[0].Message, "build with -tags=manifold") {
		t.Errorf("message %q", errs[0].Message)
	}
	if app.Config() != before {
		t.Error("a failed kernel switch replaced the configuration")
	}
}
