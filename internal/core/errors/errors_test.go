package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorRendering(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "code and message",
			err:  New(CodeNotFound, "module graph has no node for demo.billing"),
			want: "[NOT_FOUND] module graph has no node for demo.billing",
		},
		{
			name: "formatted message",
			err:  Newf(CodeValidationError, "unknown rule %q", "cyclic-improt"),
			want: `[VALIDATION_ERROR] unknown rule "cyclic-improt"`,
		},
		{
			name: "wrapped cause",
			err:  Wrap(errors.New("no such file"), CodeParseError, "read source"),
			want: "[PARSE_ERROR] read source: no such file",
		},
		{
			name: "context map",
			err:  New(CodeInternal, "cache rebuild failed").(*DomainError).WithContext(CtxModule, "a.b"),
			want: "[INTERNAL_ERROR] cache rebuild failed map[module:a.b]",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(cause, CodeInternal, "record run")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeValidationError, "exclude pattern is empty")

	if !IsCode(err, CodeValidationError) {
		t.Error("IsCode(err, CodeValidationError) = false, want true")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("IsCode(err, CodeNotFound) = true, want false")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Error("IsCode on a plain error = true, want false")
	}

	nested := fmt.Errorf("run checks: %w", New(CodeParseError, "tree missing"))
	if !IsCode(nested, CodeParseError) {
		t.Error("IsCode should unwrap through fmt.Errorf chains")
	}
}

func TestAddContext(t *testing.T) {
	t.Run("typed error keeps its code", func(t *testing.T) {
		err := AddContext(New(CodeNotFound, "module missing"), CtxModule, "demo.util")
		if !IsCode(err, CodeNotFound) {
			t.Fatalf("code changed: %v", err)
		}
		if got, want := err.Error(), "[NOT_FOUND] module missing map[module:demo.util]"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("plain error is promoted", func(t *testing.T) {
		cause := errors.New("boom")
		err := AddContext(cause, CtxPath, "src/app.py")
		if !IsCode(err, CodeInternal) {
			t.Fatalf("promoted code = %v, want INTERNAL_ERROR", err)
		}
		if !errors.Is(err, cause) {
			t.Error("promotion should keep the original cause reachable")
		}
		if got, want := err.Error(), "[INTERNAL_ERROR] untyped error: boom map[path:src/app.py]"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("chained keys all render", func(t *testing.T) {
		err := AddContext(New(CodeParseError, "bad syntax"), CtxPath, "src/app.py")
		err = AddContext(err, CtxRule, "PC003")
		want := "[PARSE_ERROR] bad syntax map[path:src/app.py rule:PC003]"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}
