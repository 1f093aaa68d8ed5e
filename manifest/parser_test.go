package manifest_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/folio/manifest"
)

const sampleAST = `
book "Archive" {
  /* 元数据 */
  meta {
    title: "Archive"
    keywords: [
      "finance", "internal"
    ]
  }

  page letter margin 0.7in 0.75in
  part "I" "ORIENTATION" { desc: "Start here." }

  worksheet "LOG" {
    field "Trigger" "_____"; area "Notes" 4
  }
  quotes {
    "First quote."
    "Second quote."
  }
}
`

func TestParseAST(t *testing.T) {
	f, err := manifest.ParseASTString("archive.book", sampleAST)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if string(f.Title) != "Archive" {
		t.Fatalf("expected title Archive, got %s", f.Title)
	}
	stmts := f.Block.Statements
	if len(stmts) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(stmts))
	}

	meta := stmts[0].Command
	if meta == nil || meta.Name != "meta" || meta.Block == nil {
		t.Fatalf("expected meta command, got %+v", stmts[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected keywords array with 2 values, got %+v", meta.Block.Statements[1])
	}

	page := stmts[1].Command
	if page == nil || page.Name != "page" {
		t.Fatalf("expected page command, got %+v", stmts[1])
	}
	if got := lexemes(page.Args); got != "letter margin 0.7in 0.75in" {
		t.Fatalf("unexpected page args: %s", got)
	}
	if page.Args[2].Type != "Number" {
		t.Fatalf("expected Number token, got %s", page.Args[2].Type)
	}

	part := stmts[2].Command
	if part == nil || len(part.Args) != 2 || part.Args[1].Value != "ORIENTATION" || part.Args[1].Raw != `"ORIENTATION"` {
		t.Fatalf("unexpected part command: %+v", part)
	}
	if part.Block == nil || part.Block.Statements[0].Assignment.Key != "desc" {
		t.Fatalf("part block missing desc")
	}

	ws := stmts[3].Command
	if ws == nil || len(ws.Block.Statements) != 2 {
		t.Fatalf("expected worksheet with 2 statements, got %+v", ws)
	}
	area := ws.Block.Statements[1].Command
	if area == nil || area.Name != "area" || lexemes(area.Args) != "Notes 4" {
		t.Fatalf("unexpected area command: %+v", area)
	}

	quotes := stmts[4].Command
	if quotes == nil || len(quotes.Block.Statements) != 2 || quotes.Block.Statements[0].Text == nil {
		t.Fatalf("quotes block should hold text literals, got %+v", quotes)
	}
	if got := string(quotes.Block.Statements[1].Text.Value); got != "Second quote." {
		t.Fatalf("unexpected quote text: %s", got)
	}
}

func TestParseASTPositions(t *testing.T) {
	f, err := manifest.ParseASTString("pos.book", "book \"P\" {\n\n  toc\n  quote \"x\"\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := f.Block.Statements[1].Command.Pos.Line; got != 4 {
		t.Fatalf("expected quote on line 4, got %d", got)
	}
}

func lexemes(parts []*manifest.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
