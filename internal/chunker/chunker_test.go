package chunker

import (
	"strings"
	"testing"

	"github.com/forge-indexer/forge-indexer/pkg/config"
)

func testLimits() config.ChunkingConfig {
	return config.DefaultConfig().Chunking
}

func TestChunkFile_NonEmptyProducesAtLeastOneChunk(t *testing.T) {
	c := New(testLimits())
	chunks, err := c.ChunkFile("notes.txt", []byte("just some prose, nothing special here.\n"), "text", "rev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
}

func TestChunkFile_ByteSizeMatchesCodeLength(t *testing.T) {
	c := New(testLimits())
	chunks, err := c.ChunkFile("src/lib.rs", []byte("fn a() {}\nfn b() {}\n"), "rust", "rev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, chunk := range chunks {
		if chunk.ByteSize != len(chunk.Code) {
			t.Fatalf("byte_size %d != len(code) %d for chunk %q", chunk.ByteSize, len(chunk.Code), chunk.Code)
		}
	}
}

func TestChunkFile_RevisionConsistentAcrossChunks(t *testing.T) {
	c := New(testLimits())
	chunks, err := c.ChunkFile("src/lib.rs", []byte("fn a() {}\nfn b() {}\nfn c() { if true {} }\n"), "rust", "revX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, chunk := range chunks {
		if chunk.Revision != "revX" {
			t.Fatalf("expected revision revX, got %q", chunk.Revision)
		}
	}
}

func TestChunkFile_SingleLineFileSingleChunkNoSymbol(t *testing.T) {
	c := New(testLimits())
	chunks, err := c.ChunkFile("notes.txt", []byte("a single line of text"), "text", "rev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d", len(chunks))
	}
	if chunks[0].Symbol != "" {
		t.Fatalf("expected no symbol, got %q", chunks[0].Symbol)
	}
}

func TestChunkFile_RustTwoFunctionsMergeUp(t *testing.T) {
	c := New(testLimits())
	chunks, err := c.ChunkFile("src/lib.rs", []byte("fn a() {}\nfn b() {}\n"), "rust", "R")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Both functions are under MIN_CHUNK on their own; merge-up should
	// combine them into a single chunk inheriting the first symbol.
	if len(chunks) != 1 {
		t.Fatalf("expected one merged chunk, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Symbol != "a" {
		t.Fatalf("expected inherited symbol %q, got %q", "a", chunks[0].Symbol)
	}
	if !strings.Contains(chunks[0].Code, "fn a") || !strings.Contains(chunks[0].Code, "fn b") {
		t.Fatalf("expected merged code to contain both functions, got %q", chunks[0].Code)
	}
}

func TestChunkFile_UnknownLanguageFallbackReproducesContent(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("this is a line of prose text for the fallback chunker to window over\n")
	}
	content := b.String()

	c := New(testLimits())
	chunks, err := c.ChunkFile("notes.xyz", []byte(content), DetectLanguage("notes.xyz"), "rev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 1 {
		t.Fatal("expected at least one chunk from fallback path")
	}

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Code)
	}
	if rebuilt.String() != content {
		// Boundary-snap trimming of a trailing blank line is allowed;
		// anything else is a bug.
		if strings.TrimRight(rebuilt.String(), "\n") != strings.TrimRight(content, "\n") {
			t.Fatalf("reconstructed content diverges from original")
		}
	}
}

func TestDetectLanguage_KnownAndUnknownExtensions(t *testing.T) {
	if got := DetectLanguage("foo.rs"); got != "rust" {
		t.Fatalf("expected rust, got %q", got)
	}
	if got := DetectLanguage("foo.unknown"); got != "text" {
		t.Fatalf("expected text, got %q", got)
	}
}

func TestWalkTopLevel_ImplBlockProducesNestedMethodChunks(t *testing.T) {
	content := `struct Widget {
    value: i32,
}

impl Widget {
    fn method_one(&self) -> i32 {
        let x = self.value + 1;
        let y = x * 2;
        y
    }

    fn method_two(&self) -> i32 {
        let z = self.value - 1;
        let w = z * 3;
        w
    }
}
`
	parsers := newASTParsers()
	chunks := parsers.parse("rust", content)
	if chunks == nil {
		t.Fatal("expected chunks for impl block with methods, got nil")
	}

	var implChunk, methodOne, methodTwo *rawChunk
	for i := range chunks {
		c := chunks[i]
		switch c.symbol {
		case "Widget":
			implChunk = &chunks[i]
		case "method_one":
			methodOne = &chunks[i]
		case "method_two":
			methodTwo = &chunks[i]
		}
	}

	if implChunk == nil {
		t.Fatalf("expected a chunk for the impl block itself, got %+v", chunks)
	}
	if methodOne == nil || methodTwo == nil {
		t.Fatalf("expected nested chunks for both methods, got %+v", chunks)
	}

	// The methods' chunks must fall strictly inside the impl block's span,
	// confirming walkTopLevel recursed into the matched impl_item instead
	// of stopping at it.
	if methodOne.startByte < implChunk.startByte || methodOne.endByte > implChunk.endByte {
		t.Fatalf("method_one span %d-%d not nested inside impl span %d-%d", methodOne.startByte, methodOne.endByte, implChunk.startByte, implChunk.endByte)
	}
	if methodTwo.startByte < implChunk.startByte || methodTwo.endByte > implChunk.endByte {
		t.Fatalf("method_two span %d-%d not nested inside impl span %d-%d", methodTwo.startByte, methodTwo.endByte, implChunk.startByte, implChunk.endByte)
	}
	if methodOne.startByte == methodTwo.startByte {
		t.Fatal("expected distinct spans for method_one and method_two")
	}
}

func TestChunkFile_InvariantMinMaxUnlessSoleChunk(t *testing.T) {
	cfg := testLimits()
	c := New(cfg)
	chunks, err := c.ChunkFile("src/lib.rs", []byte("fn a() {}\nfn b() {}\nfn c() {}\nfn d() {}\n"), "rust", "R")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, chunk := range chunks {
		if len(chunks) == 1 {
			break
		}
		if chunk.ByteSize < cfg.MinChunkBytes || chunk.ByteSize > cfg.MaxChunkBytes {
			t.Fatalf("chunk out of bounds: %d bytes", chunk.ByteSize)
		}
	}
}
