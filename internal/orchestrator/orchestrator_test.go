package orchestrator

import (
	"errors"
	"strings"
	"testing"

	"vuetifyconf-cli/internal/ast"
	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/merge"
	"vuetifyconf-cli/internal/parser"
	"vuetifyconf-cli/pkg/models"
)

func TestOrchestrator_validateRequest(t *testing.T) {
	orch := New()

	tests := []struct {
		name    string
		request *models.GenerateRequest
		wantErr bool
		errType error
	}{
		{
			name:    "nil request",
			request: nil,
			wantErr: true,
			errType: ErrValidationFailed,
		},
		{
			name:    "empty request",
			request: models.NewGenerateRequest(),
			wantErr: false,
		},
		{
			name: "interactive and yes",
			request: &models.GenerateRequest{
				ForceInteractive:    true,
				ForceNonInteractive: true,
			},
			wantErr: true,
			errType: ErrValidationFailed,
		},
		{
			name:    "invalid target",
			request: &models.GenerateRequest{Target: "file:/tmp/out.mjs"},
			wantErr: true,
			errType: ErrValidationFailed,
		},
		{
			name:    "stdout target",
			request: &models.GenerateRequest{Target: "stdout"},
			wantErr: false,
		},
		{
			name:    "blank layer",
			request: &models.GenerateRequest{Layers: []string{"layers/base", " "}},
			wantErr: true,
			errType: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := orch.validateRequest(tt.request)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got nil")
					return
				}

				var structured *Error
				if errors.As(err, &structured) {
					if !errors.Is(structured.Type, tt.errType) {
						t.Errorf("Expected error type %v, got %v", tt.errType, structured.Type)
					}
					if structured.Guidance == "" {
						t.Errorf("Expected error to have guidance, got empty string")
					}
				} else {
					t.Errorf("Expected *Error, got %T", err)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantText string
	}{
		{
			name: "error with guidance",
			err: &Error{
				Type:     ErrValidationFailed,
				Message:  "test message",
				Guidance: "test guidance",
			},
			wantText: "validation error: test message\n\nSuggestion: test guidance",
		},
		{
			name: "error without guidance",
			err: &Error{
				Type:    ErrConfigurationInvalid,
				Message: "config error",
			},
			wantText: "configuration error: config error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.wantText {
				t.Errorf("Error.Error() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestNewConfigurationError(t *testing.T) {
	cause := errors.New("root_dir does not exist: /missing")
	err := NewConfigurationError("invalid configuration", cause)

	if !errors.Is(err, ErrConfigurationInvalid) {
		t.Errorf("Expected error type %v, got %v", ErrConfigurationInvalid, err.Type)
	}
	if !strings.Contains(err.Guidance, "--root") {
		t.Errorf("Expected guidance to mention --root, got: %s", err.Guidance)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected error to wrap cause")
	}

	recovered := RecoverFromError(err)
	if !strings.Contains(recovered.(*Error).Guidance, "vuetifyconf init") {
		t.Errorf("Expected recovery to suggest init, got: %s", recovered.(*Error).Guidance)
	}
}

func TestNewLoadError(t *testing.T) {
	tests := []struct {
		name     string
		cause    error
		wantType error
		mentions string
	}{
		{
			name:     "syntax error",
			cause:    &parser.SyntaxError{Pos: ast.Pos{File: "/app/vuetify.config.ts", Line: 3}},
			wantType: ErrMalformedSource,
			mentions: "/app/vuetify.config.ts",
		},
		{
			name:     "unresolved import",
			cause:    &imports.UnresolvedError{Local: "md3", Pos: ast.Pos{File: "/app/nuxt.config.ts"}},
			wantType: ErrUnresolvedImport,
			mentions: "'md3'",
		},
		{
			name: "import conflict",
			cause: &imports.ConflictError{
				Local:    "theme",
				Existing: ast.Import{From: "/a/theme", Imported: "theme", Local: "theme"},
				Incoming: ast.Import{From: "/b/theme", Imported: "theme", Local: "theme"},
			},
			wantType: ErrImportConflict,
			mentions: "'theme'",
		},
		{
			name:     "unsupported value",
			cause:    &merge.UnsupportedError{Path: "theme.spread", Value: &ast.Unsupported{NodeKind: "spread_element"}},
			wantType: ErrUnsupportedValue,
			mentions: "theme.spread",
		},
		{
			name:     "other failure",
			cause:    errors.New("permission denied"),
			wantType: ErrLoadFailed,
			mentions: "readable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLoadError(tt.cause)
			if !errors.Is(err, tt.wantType) {
				t.Errorf("Expected type %v, got %v", tt.wantType, err.Type)
			}
			if !strings.Contains(err.Guidance, tt.mentions) {
				t.Errorf("Expected guidance to mention %q, got: %s", tt.mentions, err.Guidance)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("Expected error to wrap cause")
			}
		})
	}
}

func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
	}{
		{
			name:        "clipboard output error",
			err:         NewOutputError("clipboard", errors.New("no display")),
			recoverable: true,
		},
		{
			name:        "file output error",
			err:         NewOutputError("file", errors.New("read-only file system")),
			recoverable: false,
		},
		{
			name: "configuration error",
			err: &Error{
				Type:    ErrConfigurationInvalid,
				Message: "config invalid",
			},
			recoverable: false,
		},
		{
			name:        "plain error",
			err:         errors.New("regular error"),
			recoverable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRecoverableError(tt.err)
			if got != tt.recoverable {
				t.Errorf("IsRecoverableError() = %v, want %v", got, tt.recoverable)
			}
		})
	}
}

func TestRecoverFromError(t *testing.T) {
	if RecoverFromError(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	wrapped := RecoverFromError(errors.New("boom"))
	var structured *Error
	if !errors.As(wrapped, &structured) {
		t.Fatalf("Expected *Error, got %T", wrapped)
	}
	if structured.Message != "boom" {
		t.Errorf("Expected message 'boom', got %q", structured.Message)
	}

	clip := RecoverFromError(NewOutputError("clipboard", errors.New("no display")))
	if !strings.Contains(clip.(*Error).Guidance, "--target stdout as a fallback") {
		t.Errorf("Expected stdout fallback hint, got: %s", clip.(*Error).Guidance)
	}
}
