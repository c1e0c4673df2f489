package imagegen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateRejectsEmptyInputBeforeNetwork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("vendor must not be called for empty input")
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "sk-test", BaseURL: ts.URL})
	for _, input := range [][]byte{nil, {}} {
		_, err := client.Generate(context.Background(), input, "")
		if err == nil {
			t.Fatal("expected error for empty image input")
		}
		if domain.KindOf(err) != domain.KindAIGenerationFailed {
			t.Fatalf("unexpected error kind: %v", domain.KindOf(err))
		}
	}
}

func TestGenerateHappyPath(t *testing.T) {
	want := testPNG(t, 512, 512)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/edit/inpaint") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("output_format"); got != "png" {
			t.Fatalf("unexpected output_format: %s", got)
		}
		if prompt := r.FormValue("prompt"); !strings.Contains(prompt, "GNB") {
			t.Fatalf("prompt missing brand text: %s", prompt)
		}
		for _, field := range []string{"image", "mask"} {
			f, _, err := r.FormFile(field)
			if err != nil {
				t.Fatalf("missing %s part: %v", field, err)
			}
			f.Close()
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(want)
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "sk-test-key", BaseURL: ts.URL})
	got, err := client.Generate(context.Background(), testPNG(t, 64, 64), "brown labrador")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("generated bytes mismatch: got %d bytes, want %d", len(got), len(want))
	}
}

func TestGenerateVendorErrorIncludesStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "something broke", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "sk-test", BaseURL: ts.URL})
	_, err := client.Generate(context.Background(), testPNG(t, 16, 16), "")
	if err == nil {
		t.Fatal("expected vendor error")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "something broke") {
		t.Fatalf("error missing status or body: %v", err)
	}
}

func TestGenerateClassifiesKnownFailures(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"name":"rate_limit_exceeded"}`, "quota or rate limit"},
		{`{"errors":["unauthorized"]}`, "authentication failed"},
		{`{"name":"content_policy_violation"}`, "content policy"},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(tc.body))
		}))
		client := NewClient(Options{APIKey: "sk-test", BaseURL: ts.URL})
		_, err := client.Generate(context.Background(), testPNG(t, 16, 16), "")
		ts.Close()
		if err == nil {
			t.Fatalf("expected error for body %s", tc.body)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("body %s: error %q does not mention %q", tc.body, err.Error(), tc.want)
		}
		if domain.KindOf(err) != domain.KindAIGenerationFailed {
			t.Fatalf("unexpected error kind: %v", domain.KindOf(err))
		}
	}
}

func TestGenerateEmptyAndInvalidResponses(t *testing.T) {
	for name, payload := range map[string][]byte{"empty": {}, "garbage": []byte("not an image")} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(payload)
		}))
		client := NewClient(Options{APIKey: "sk-test", BaseURL: ts.URL})
		_, err := client.Generate(context.Background(), testPNG(t, 16, 16), "")
		ts.Close()
		if err == nil {
			t.Fatalf("%s payload: expected error", name)
		}
	}
}

func TestGenerateNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refused connection

	client := NewClient(Options{APIKey: "sk-test", BaseURL: ts.URL})
	_, err := client.Generate(context.Background(), testPNG(t, 16, 16), "")
	if err == nil {
		t.Fatal("expected network failure")
	}
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindAIGenerationFailed {
		t.Fatalf("network failure not mapped to AIGenerationFailed: %v", err)
	}
}

func TestHealthy(t *testing.T) {
	if !NewClient(Options{APIKey: "sk-abcdefghijk"}).Healthy() {
		t.Fatal("well-formed key should be healthy")
	}
	if NewClient(Options{APIKey: "sk-x"}).Healthy() {
		t.Fatal("short key should not be healthy")
	}
	if NewClient(Options{APIKey: "bad-key-format"}).Healthy() {
		t.Fatal("key without sk- prefix should not be healthy")
	}
}

func TestClothingMaskMatchesInputDimensions(t *testing.T) {
	mask := ClothingMask(testPNG(t, 200, 100))
	img, err := png.Decode(bytes.NewReader(mask))
	if err != nil {
		t.Fatalf("mask does not decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("mask size %v, want 200x100", img.Bounds())
	}
	// Ellipse center (w/2, 0.3h + 0.2h) must be editable (white),
	// corners untouched (black).
	if !isWhite(img.At(100, 50)) {
		t.Fatalf("ellipse center should be white: %v", img.At(100, 50))
	}
	if isWhite(img.At(0, 0)) || isWhite(img.At(199, 0)) {
		t.Fatal("corners should stay black")
	}
}

func TestClothingMaskFallsBackToFixedCanvas(t *testing.T) {
	mask := ClothingMask([]byte("undecodable"))
	img, err := png.Decode(bytes.NewReader(mask))
	if err != nil {
		t.Fatalf("fallback mask does not decode: %v", err)
	}
	if img.Bounds().Dx() != 512 || img.Bounds().Dy() != 512 {
		t.Fatalf("fallback mask size %v, want 512x512", img.Bounds())
	}
	if !isWhite(img.At(256, 300)) {
		t.Fatal("fallback editable region should be white")
	}
	if isWhite(img.At(10, 10)) {
		t.Fatal("fallback border should stay black")
	}
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xf000 && g > 0xf000 && b > 0xf000
}
