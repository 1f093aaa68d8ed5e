package config

import (
	"io"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOLIO_ROOT", "")
	t.Setenv("FOLIO_OUT", "")
	cfg, err := Load([]string{"-manifest", filepath.Join("books", "archive.folio")}, io.Discard)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Root != "books" {
		t.Fatalf("root should default to the manifest directory, got %q", cfg.Root)
	}
	if cfg.Out != filepath.Join("output", "book.pdf") && cfg.Out != "output/book.pdf" {
		t.Fatalf("unexpected default out %q", cfg.Out)
	}
	if cfg.Verbose || cfg.Preview != "" || cfg.Debug != "" {
		t.Fatalf("unexpected optional settings: %+v", cfg)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("FOLIO_ROOT", "/srv/content")
	t.Setenv("FOLIO_OUT", "/srv/out/archive.pdf")
	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Root != "/srv/content" || cfg.Out != "/srv/out/archive.pdf" {
		t.Fatalf("environment not applied: %+v", cfg)
	}

	cfg, err = Load([]string{"-out", "local.pdf", "-v"}, io.Discard)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Out != "local.pdf" || !cfg.Verbose {
		t.Fatalf("flags should win over environment: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("FOLIO_ROOT", "")
	t.Setenv("FOLIO_OUT", "")
	cases := map[string][]string{
		"unknown flag":   {"-nope"},
		"extra argument": {"stray.folio"},
		"empty manifest": {"-manifest", ""},
		"same preview":   {"-out", "a.pdf", "-preview", "a.pdf"},
	}
	for name, args := range cases {
		if _, err := Load(args, io.Discard); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
