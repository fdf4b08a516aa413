package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/qrship/pkg/fountain"
	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/scan"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	err := root.Execute()
	return out.String(), err
}

func writePayloadFile(t *testing.T, payload []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFramesThenReceive(t *testing.T) {
	payload := bytes.Repeat([]byte("animated qr transfer "), 12)
	src := writePayloadFile(t, payload)

	frames, err := execute(t, "", "frames", src, "--fragment-len", "16")
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(frames), "\n")
	if want := (len(payload) + 15) / 16; len(lines) != want {
		t.Fatalf("frames printed %d lines, want %d", len(lines), want)
	}

	// Reverse the order and repeat a frame: the receiver does not care.
	var shuffled []string
	for i := len(lines) - 1; i >= 0; i-- {
		shuffled = append(shuffled, lines[i])
	}
	shuffled = append([]string{lines[3], "garbage"}, shuffled...)

	dst := filepath.Join(t.TempDir(), "out.bin")
	if _, err := execute(t, strings.Join(shuffled, "\n"), "receive", "--out", dst); err != nil {
		t.Fatalf("receive: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("received payload differs from the original")
	}
}

func TestReceiveFromMixedFrames(t *testing.T) {
	payload := []byte("decoded from mixed frames only, no plain fragment seen")
	src := writePayloadFile(t, payload)

	frames, err := execute(t, "", "frames", src, "--fragment-len", "8", "--start", "100", "--count", "400")
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	out, err := execute(t, frames, "receive")
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if out != string(payload) {
		t.Errorf("stdout = %q, want %q", out, payload)
	}
}

func TestReceiveIncomplete(t *testing.T) {
	src := writePayloadFile(t, bytes.Repeat([]byte{7}, 100))
	frames, err := execute(t, "", "frames", src, "--fragment-len", "10", "--count", "5")
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	if _, err := execute(t, frames, "receive"); !errors.Is(err, errIncomplete) {
		t.Errorf("receive error = %v, want errIncomplete", err)
	}
}

func TestInspect(t *testing.T) {
	src := writePayloadFile(t, []byte("inspect me please"))
	frames, err := execute(t, "", "frames", src, "--fragment-len", "5", "--count", "6")
	if err != nil {
		t.Fatalf("frames: %v", err)
	}

	out, err := execute(t, frames+"not-a-frame\n", "inspect")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"pure", "mixed", "malformed"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	src := writePayloadFile(t, []byte("x"))
	if _, err := execute(t, "", "frames", src, "--fragment-len", "0"); err == nil {
		t.Error("frames with zero fragment length succeeded")
	}
	if _, err := execute(t, "", "frames", src, "--log-level", "loud"); err == nil {
		t.Error("unknown log level accepted")
	}
}

func TestWritePayload(t *testing.T) {
	var buf bytes.Buffer
	binary := []byte{0xff, 0xfe, 0x00}
	if err := writePayload(&buf, "", binary, false); err != nil {
		t.Fatalf("writePayload to a buffer: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), binary) {
		t.Error("payload not written")
	}

	path := filepath.Join(t.TempDir(), "p")
	if err := writePayload(&buf, path, binary, false); err != nil {
		t.Fatalf("writePayload to a file: %v", err)
	}
	if got, _ := os.ReadFile(path); !bytes.Equal(got, binary) {
		t.Error("file content differs")
	}
}

func TestReceiveFromDirAfterReplug(t *testing.T) {
	payload := []byte("scan directory keeps working across a camera replug")
	enc, err := fountain.Split(payload, 8, fountain.DefaultMaxDegree)
	if err != nil {
		t.Fatal(err)
	}
	var lines []string
	for i := 0; i < enc.Total(); i++ {
		lines = append(lines, enc.NextPart())
	}

	dir := t.TempDir()
	r := newReceiver(log.NewNoopLogger())
	lifecycle := r.scanner.Lifecycle()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.fromDir(ctx, dir, false) }()

	deadline := time.Now().Add(5 * time.Second)
	for !lifecycle.Ready() {
		if time.Now().After(deadline) {
			t.Fatalf("status = %v, want Ready", lifecycle.Status())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// What the udev monitor applies on a remove and add of /dev/video1.
	if err := lifecycle.Apply(scan.EventNoDevice, "video1 removed"); err != nil {
		t.Fatal(err)
	}
	if err := lifecycle.Apply(scan.EventDeviceFound, "video1 added"); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "scan.txt"), []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("fromDir: %v", err)
	}
	if got, ok := r.scanner.Assembler().Payload(); !ok || !bytes.Equal(got, payload) {
		t.Errorf("Payload() = %q, %v", got, ok)
	}
	if n := r.scanner.Gated(); n != 0 {
		t.Errorf("Gated() = %d, want 0", n)
	}
}
