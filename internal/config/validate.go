// This file adds a lightweight linter/validator for Ingestion values. It
// performs static checks over a decoded Ingestion and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for an Ingestion.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "source.file.path"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the slice carries SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateIngestion performs static validation / linting of an Ingestion.
//
// It does not mutate the ingestion. Instead it returns a slice of Issue
// values. Callers may decide whether to treat warnings as fatal or not.
func ValidateIngestion(in Ingestion) []Issue {
	var issues []Issue

	issues = append(issues, validateSource(in.Source)...)
	issues = append(issues, validateParser(in.Parser)...)
	issues = append(issues, validateContract(in)...)
	issues = append(issues, validateStorage(in.Storage)...)

	if in.ChunkSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chunk_size",
			Message:  fmt.Sprintf("chunk_size must not be negative, got %d", in.ChunkSize),
		})
	}
	if in.ReadAhead < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "read_ahead",
			Message:  fmt.Sprintf("read_ahead must not be negative, got %d", in.ReadAhead),
		})
	}

	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a path",
			})
		}
	case "http":
		if strings.TrimSpace(s.HTTP.URL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  "http source requires a url",
			})
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.max_retries",
				Message:  "max_retries must not be negative",
			})
		}
	default:
		// Unknown kinds are warnings for forward compatibility.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q (known: file, http)", s.Kind),
		})
	}

	return issues
}

// validateParser validates Parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	if n := len([]rune(p.Comma)); n > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", p.Comma),
		})
	}

	return issues
}

// validateContract checks that the ingestion resolves to a usable contract.
func validateContract(in Ingestion) []Issue {
	var issues []Issue

	c, err := in.ResolveContract()
	if err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema",
			Message:  err.Error(),
		})
		return issues
	}
	if err := c.Validate(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "contract",
			Message:  err.Error(),
		})
	}

	return issues
}

// validateStorage validates Storage configuration against the registered
// backend kinds.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	known := false
	for _, kind := range storage.ListKinds() {
		if kind == s.Kind {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q (registered: %v)", s.Kind, storage.ListKinds()),
		})
	}

	if s.Kind != "memory" && strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  fmt.Sprintf("storage kind %q requires a dsn", s.Kind),
		})
	}
	if strings.TrimSpace(s.Table) == "" && s.Kind != "memory" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.table",
			Message:  "storage.table is empty; the contract table name will be used",
		})
	}

	return issues
}
