package onvifevents

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

type failingFormatter struct{}

func (failingFormatter) Format(string) (string, error) {
	return "", errors.New("boom")
}

func TestEtreeFormatter(t *testing.T) {
	t.Run("pretty prints", func(t *testing.T) {
		out, err := (&EtreeFormatter{}).Format("<a><b>text</b></a>")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "\n")
		test.That(t, out, test.ShouldContainSubstring, "<b>text</b>")
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := (&EtreeFormatter{}).Format("<a><b></a>")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestCommandFormatter(t *testing.T) {
	missing := &CommandFormatter{Name: "no-such-pretty-printer"}
	test.That(t, missing.Available(), test.ShouldBeFalse)
	_, err := missing.Format("<a/>")
	test.That(t, err, test.ShouldNotBeNil)

	cat := &CommandFormatter{Name: "cat"}
	if !cat.Available() {
		t.Skip("cat not on PATH")
	}
	out, err := cat.Format("<a/>")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "<a/>")
}

func TestSink(t *testing.T) {
	logger := logging.NewTestLogger(t)

	t.Run("writes formatted output", func(t *testing.T) {
		dir := t.TempDir()
		sink := NewSink(dir, &EtreeFormatter{}, logger)
		err := sink.WriteDeclared("<a><b/></a>")
		test.That(t, err, test.ShouldBeNil)
		written, err := os.ReadFile(filepath.Join(dir, DeclaredEventsFile))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, strings.Count(string(written), "\n"), test.ShouldBeGreaterThan, 0)
	})

	t.Run("degrades to the raw body when formatting fails", func(t *testing.T) {
		dir := t.TempDir()
		sink := NewSink(dir, failingFormatter{}, logger)
		err := sink.WriteSent("not even xml")
		test.That(t, err, test.ShouldBeNil)
		written, err := os.ReadFile(filepath.Join(dir, SentEventsFile))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(written), test.ShouldEqual, "not even xml")
	})

	t.Run("overwrites on rerun", func(t *testing.T) {
		dir := t.TempDir()
		sink := NewSink(dir, nil, logger)
		test.That(t, sink.WriteDeclared("<first/>"), test.ShouldBeNil)
		test.That(t, sink.WriteDeclared("<second/>"), test.ShouldBeNil)
		written, err := os.ReadFile(filepath.Join(dir, DeclaredEventsFile))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(written), test.ShouldEqual, "<second/>")
	})

	t.Run("fails when the directory does not exist", func(t *testing.T) {
		sink := NewSink("/no/such/dir", nil, logger)
		err := sink.WriteDeclared("<a/>")
		test.That(t, err, test.ShouldNotBeNil)
	})
}
