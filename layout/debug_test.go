package layout

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeDebugJSONOmitsImageBytes(t *testing.T) {
	ref := ImageRef{Key: "img/logo.png", Data: []byte("PNGDATA"), PixelWidth: 4, PixelHeight: 2}
	res := &Result{
		Pages: []Page{{
			Number: 1, Template: "body", Width: 200, Height: 300,
			Content: []Op{{Kind: OpImage, X: 10, Y: 20, W: 40, H: 20, Image: &ref}},
		}},
		Images: map[string][]byte{ref.Key: ref.Data},
	}
	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if strings.Contains(buf.String(), "PNGDATA") || strings.Contains(buf.String(), "UE5HREFUQQ") {
		t.Fatalf("image bytes should not be serialized: %s", buf.String())
	}
	var back Result
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(back.Pages) != 1 || back.Pages[0].Content[0].Image.Key != ref.Key {
		t.Fatalf("unexpected round trip: %+v", back.Pages)
	}
	if err := EncodeDebugJSON(&buf, nil); err == nil {
		t.Fatalf("nil result should be rejected")
	}
}

func TestWriteDebugJSONCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug", "layout.json")
	if err := WriteDebugJSON(&Result{Pages: []Page{{Number: 1}}}, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("debug file missing: %v", err)
	}
}
