package handlers

import (
	"net/url"
	"testing"

	"github.com/aniscentsapp/aniscents/internal/config"
)

func TestSecureCookiesFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *config.Config
		want bool
	}{
		{
			name: "nil config",
			cfg:  nil,
			want: false,
		},
		{
			name: "https base url",
			cfg:  &config.Config{BaseURL: "https://shop.aniscents.com"},
			want: true,
		},
		{
			name: "http base url",
			cfg:  &config.Config{BaseURL: "http://localhost:8080"},
			want: false,
		},
		{
			name: "no base url with tls port",
			cfg:  &config.Config{Port: "443"},
			want: true,
		},
		{
			name: "no base url with alt tls port",
			cfg:  &config.Config{Port: "8443"},
			want: true,
		},
		{
			name: "no base url with plain port",
			cfg:  &config.Config{Port: "8080"},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SecureCookiesFromConfig(tt.cfg); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBrowseInputFromQuery(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		input := browseInputFromQuery(url.Values{})
		if input.Limit != defaultPageSize {
			t.Fatalf("expected default limit %d, got %d", defaultPageSize, input.Limit)
		}
		if input.Offset != 0 {
			t.Fatalf("expected zero offset, got %d", input.Offset)
		}
		if input.Featured {
			t.Fatal("expected featured to default to false")
		}
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()

		input := browseInputFromQuery(url.Values{
			"category": {" oud "},
			"brand":    {"tom-ford"},
			"q":        {"amber"},
			"featured": {"true"},
			"limit":    {"12"},
			"offset":   {"24"},
		})
		if input.CategorySlug != "oud" {
			t.Fatalf("expected trimmed category slug, got %q", input.CategorySlug)
		}
		if input.BrandSlug != "tom-ford" {
			t.Fatalf("expected brand slug, got %q", input.BrandSlug)
		}
		if input.Search != "amber" {
			t.Fatalf("expected search term, got %q", input.Search)
		}
		if !input.Featured {
			t.Fatal("expected featured filter")
		}
		if input.Limit != 12 || input.Offset != 24 {
			t.Fatalf("expected limit 12 offset 24, got %d/%d", input.Limit, input.Offset)
		}
	})

	t.Run("rejects out of range paging", func(t *testing.T) {
		t.Parallel()

		input := browseInputFromQuery(url.Values{
			"limit":  {"500"},
			"offset": {"-3"},
		})
		if input.Limit != defaultPageSize {
			t.Fatalf("expected oversized limit to fall back to %d, got %d", defaultPageSize, input.Limit)
		}
		if input.Offset != 0 {
			t.Fatalf("expected negative offset to be ignored, got %d", input.Offset)
		}
	})
}
