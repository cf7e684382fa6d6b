package compare

import (
	"testing"

	"entiq/packages/core/meta"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		name   string
		fd     *meta.FieldDescriptor
		field  string
		sample any
		want   Kind
	}{
		{"declared type wins", &meta.FieldDescriptor{Type: meta.TypeNumber}, "createdDate", "2024-01-01", KindNumber},
		{"declared boolean", &meta.FieldDescriptor{Type: meta.TypeBoolean}, "x", "y", KindBoolean},
		{"name hint date", nil, "birthDate", "anything", KindDate},
		{"name hint dob", nil, "dob", "anything", KindDate},
		{"name hint number", nil, "netWorth", "abc", KindNumber},
		{"name hint balance", nil, "accountBalance", "abc", KindNumber},
		{"name hint is-prefix", nil, "isAdmin", "abc", KindBoolean},
		{"name hint active", nil, "activeFlag", "abc", KindBoolean},
		{"shape float", nil, "misc", "42.5", KindNumber},
		{"shape bare date", nil, "misc", "2024-03-01", KindDate},
		{"shape rfc3339", nil, "misc", "2024-03-01T10:00:00Z", KindDate},
		{"shape bool literal", nil, "misc", "true", KindBoolean},
		{"fallback string", nil, "misc", "hello", KindString},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveKind(tc.fd, tc.field, tc.sample); got != tc.want {
				t.Errorf("ResolveKind() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValuesNumbers(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"less", "10", "20", -1},
		{"greater", 30.5, 20, 1},
		{"equal across types", "50000", 50000, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Values(KindNumber, tc.a, tc.b, false)
			if sign(got) != tc.want {
				t.Errorf("Values(%v, %v) = %d, want sign %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestValuesNil(t *testing.T) {
	if got := Values(KindString, nil, nil, false); got != 0 {
		t.Errorf("nil == nil, got %d", got)
	}
	if got := Values(KindNumber, nil, 5, false); got >= 0 {
		t.Errorf("nil < any, got %d", got)
	}
	if got := Values(KindDate, "2024-01-01", nil, false); got <= 0 {
		t.Errorf("any > nil, got %d", got)
	}
}

func TestValuesStrings(t *testing.T) {
	t.Run("case-insensitive by default", func(t *testing.T) {
		if got := Values(KindString, "Mark", "mark", false); got != 0 {
			t.Errorf("expected equality, got %d", got)
		}
	})

	t.Run("case-sensitive override", func(t *testing.T) {
		if got := Values(KindString, "Mark", "mark", true); got == 0 {
			t.Error("expected inequality under case-sensitive collation")
		}
	})
}

func TestValuesDates(t *testing.T) {
	t.Run("midnight datetime equals bare date", func(t *testing.T) {
		if got := Values(KindDate, "2024-03-01T00:00:00Z", "2024-03-01", false); got != 0 {
			t.Errorf("expected date-component equality, got %d", got)
		}
	})

	t.Run("non-midnight datetime is after bare date", func(t *testing.T) {
		if got := Values(KindDate, "2024-03-01T10:30:00Z", "2024-03-01", false); got <= 0 {
			t.Errorf("expected later, got %d", got)
		}
	})

	t.Run("ordering", func(t *testing.T) {
		if got := Values(KindDate, "2023-12-31", "2024-01-01", false); got >= 0 {
			t.Errorf("expected earlier, got %d", got)
		}
	})
}

func TestValuesGracefulFallback(t *testing.T) {
	// Both values fail to parse as numbers: silently degrades to
	// case-sensitive string comparison instead of erroring.
	if got := Values(KindNumber, "abc", "abd", false); got >= 0 {
		t.Errorf("fallback string comparison expected, got %d", got)
	}
	if got := Values(KindNumber, "ABC", "abc", false); got == 0 {
		t.Error("fallback must be case-sensitive")
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
