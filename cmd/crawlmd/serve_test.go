package main

import (
	"strings"
	"testing"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("has transport flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("transport")
		if flag == nil {
			t.Fatal("expected transport flag")
		}
		if flag.DefValue != "stdio" {
			t.Errorf("expected default 'stdio', got %q", flag.DefValue)
		}
	})

	t.Run("has port flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("port")
		if flag == nil {
			t.Fatal("expected port flag")
		}
		if flag.DefValue != "8000" {
			t.Errorf("expected default '8000', got %q", flag.DefValue)
		}
	})
}

// TestRunServeCmdValidation tests that invalid serve settings are rejected
// before any server starts.
func TestRunServeCmdValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown transport", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		cmd.SetArgs([]string{"--transport", "websocket"})
		err := cmd.Execute()
		if err == nil {
			t.Fatal("Execute() = nil, want configuration error")
		}
		if !strings.Contains(err.Error(), "configuration error") {
			t.Errorf("error = %v, want configuration error", err)
		}
	})

	t.Run("rejects out-of-range port", func(t *testing.T) {
		t.Parallel()

		cmd := NewServeCmd()
		cmd.SetArgs([]string{"--transport", "sse", "--port", "70000"})
		err := cmd.Execute()
		if err == nil {
			t.Fatal("Execute() = nil, want configuration error")
		}
		if !strings.Contains(err.Error(), "configuration error") {
			t.Errorf("error = %v, want configuration error", err)
		}
	})
}
