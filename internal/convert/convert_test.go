package convert

import (
	"strings"
	"testing"
)

func TestResolveGoogleDriveURL_FilePath(t *testing.T) {
	url := "https://drive.google.com/file/d/abc123XYZ/view?usp=sharing"
	resolved := ResolveGoogleDriveURL(url)
	expected := "https://drive.google.com/uc?export=download&id=abc123XYZ"
	if resolved != expected {
		t.Errorf("Expected %q, got %q", expected, resolved)
	}
}

func TestResolveGoogleDriveURL_QueryID(t *testing.T) {
	url := "https://drive.google.com/open?id=abc123XYZ&foo=bar"
	resolved := ResolveGoogleDriveURL(url)
	expected := "https://drive.google.com/uc?export=download&id=abc123XYZ"
	if resolved != expected {
		t.Errorf("Expected %q, got %q", expected, resolved)
	}
}

func TestResolveGoogleDriveURL_PassThrough(t *testing.T) {
	url := "https://example.com/docs/page.html"
	if resolved := ResolveGoogleDriveURL(url); resolved != url {
		t.Errorf("Expected unchanged URL, got %q", resolved)
	}
}

func TestResolveGoogleDriveURL_DriveWithoutID(t *testing.T) {
	url := "https://drive.google.com/drive/folders"
	if resolved := ResolveGoogleDriveURL(url); resolved != url {
		t.Errorf("Expected unchanged URL, got %q", resolved)
	}
}

func TestCleanHTML_RemovesBoilerplate(t *testing.T) {
	raw := `<html><head><title>Ignore</title><style>p{color:red}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<script>alert("hi")</script>
<article><h1>Release Notes</h1><p>Version 2.0 adds exports.</p></article>
<footer>Copyright</footer>
</body></html>`

	text := cleanHTML(raw)

	if strings.Contains(text, "Ignore") || strings.Contains(text, "alert") ||
		strings.Contains(text, "Home") || strings.Contains(text, "Copyright") {
		t.Errorf("Boilerplate survived cleaning: %q", text)
	}
	if !strings.Contains(text, "Release Notes") || !strings.Contains(text, "Version 2.0 adds exports.") {
		t.Errorf("Expected article text to survive, got %q", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("Tags survived cleaning: %q", text)
	}
}

func TestCleanHTML_DecodesEntitiesAndCollapsesWhitespace(t *testing.T) {
	raw := "<p>Fish   &amp;    chips</p>\n\n\n\n<p>Second</p>"
	text := cleanHTML(raw)

	if !strings.Contains(text, "Fish & chips") {
		t.Errorf("Expected decoded entity and collapsed spaces, got %q", text)
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			t.Errorf("Empty line survived cleaning: %q", text)
		}
	}
}

func TestContentTypeMapping(t *testing.T) {
	cases := map[string]ContentType{
		"application/pdf":          TypePDF,
		"application/octet-stream": TypePDF,
		"application/json":         TypeJSON,
		"application/vnd.api+json": TypeJSON,
		"text/html":                TypeHTML,
	}
	for header, expected := range cases {
		if got := contentTypes[header]; got != expected {
			t.Errorf("Header %q: expected %q, got %q", header, expected, got)
		}
	}
	if _, ok := contentTypes["text/plain"]; ok {
		t.Error("text/plain should fall back to html, not map directly")
	}
}
