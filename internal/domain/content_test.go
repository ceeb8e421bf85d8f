package domain

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestClassifyContent(t *testing.T) {
	t.Run("valid UTF-8 is text", func(t *testing.T) {
		data := []byte("This is a demo file content for testing purposes.")
		view := ClassifyContent(data)

		if !view.IsText {
			t.Fatal("expected text classification")
		}
		if view.Content != string(data) {
			t.Errorf("expected decoded content, got %q", view.Content)
		}
		if view.FileSize != len(data) {
			t.Errorf("expected size %d, got %d", len(data), view.FileSize)
		}
	})

	t.Run("multibyte UTF-8 is text", func(t *testing.T) {
		view := ClassifyContent([]byte("Ünïcödé ✓"))
		if !view.IsText {
			t.Error("expected multibyte UTF-8 to be text")
		}
	})

	t.Run("empty content is text", func(t *testing.T) {
		view := ClassifyContent(nil)
		if !view.IsText || view.Content != "" {
			t.Errorf("expected empty text, got %+v", view)
		}
	})

	t.Run("short binary is fully hex encoded", func(t *testing.T) {
		data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
		view := ClassifyContent(data)

		if view.IsText {
			t.Fatal("expected binary classification")
		}
		if view.Content != "ffd8ffe000" {
			t.Errorf("expected full hex, got %q", view.Content)
		}
	})

	t.Run("long binary shows first 1000 bytes", func(t *testing.T) {
		data := bytes.Repeat([]byte{0xfe, 0x01}, 1500)
		view := ClassifyContent(data)

		if view.IsText {
			t.Fatal("expected binary classification")
		}
		if view.Content != hex.EncodeToString(data[:1000]) {
			t.Error("expected hex of exactly the first 1000 bytes")
		}
		if len(view.Content) != 2000 {
			t.Errorf("expected 2000 hex chars, got %d", len(view.Content))
		}
		if view.FileSize != 3000 {
			t.Errorf("expected file size 3000, got %d", view.FileSize)
		}
	})

	t.Run("invalid sequence late in text makes it binary", func(t *testing.T) {
		data := append(bytes.Repeat([]byte("a"), 2000), 0xc3, 0x28)
		view := ClassifyContent(data)

		if view.IsText {
			t.Fatal("expected binary classification")
		}
		if view.Content != hex.EncodeToString(data[:1000]) {
			t.Error("expected hex of the first 1000 bytes")
		}
	})

	t.Run("encoded surrogate is rejected", func(t *testing.T) {
		view := ClassifyContent([]byte{0xed, 0xa0, 0x80})
		if view.IsText {
			t.Error("expected surrogate encoding to be binary")
		}
	})
}
