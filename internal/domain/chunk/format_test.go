package chunk

import "testing"

func TestFormat_EmptyMetadataKeepsLeadingSpace(t *testing.T) {
	if got := Format(Metadata{}, "hello"); got != " hello" {
		t.Errorf("expected %q, got %q", " hello", got)
	}
}

func TestFormat_TagOrder(t *testing.T) {
	m := Metadata{
		VideoTitle:  "새해 첫 예배",
		ServiceType: "주일예배",
		ServiceDate: "2024-01-07",
		Preacher:    "김목사",
		SermonTopic: "믿음",
		BibleVerse:  "히브리서 11:1",
		Keywords:    []string{"믿음", "소망"},
	}
	want := "[설교자: 김목사] [주제: 믿음] [성경말씀: 히브리서 11:1] [날짜: 2024-01-07] " +
		"[주일예배] [새해 첫 예배] [키워드: 믿음, 소망] 본문"
	if got := Format(m, "본문"); got != want {
		t.Errorf("unexpected format:\n got %q\nwant %q", got, want)
	}
}

func TestFormat_OmitsEmptyFields(t *testing.T) {
	m := Metadata{SermonTopic: "사랑", Keywords: []string{}}
	if got := Format(m, "text"); got != "[주제: 사랑] text" {
		t.Errorf("unexpected format %q", got)
	}
}

func TestChunk_ApplySemanticRefreshes(t *testing.T) {
	c := Chunk{ChunkText: "본문", Embedding: []float32{1}}
	c.Refresh()
	if c.FullText != " 본문" {
		t.Fatalf("unexpected full text %q", c.FullText)
	}
	c.Embedding = []float32{1}

	c.ApplySemantic(Semantic{
		Preacher: " 김목사 ",
		Keywords: []string{"은혜", "", "은혜", "믿음, 소망"},
	})
	if c.FullText != "[설교자: 김목사] [키워드: 은혜, 믿음  소망] 본문" {
		t.Errorf("unexpected full text %q", c.FullText)
	}
	if c.Embedding != nil {
		t.Error("expected stale embedding to be cleared")
	}
}

func TestChunk_ApplySemanticNilKeywords(t *testing.T) {
	var c Chunk
	c.ApplySemantic(Semantic{})
	if c.Metadata.Keywords == nil || len(c.Metadata.Keywords) != 0 {
		t.Errorf("expected empty non-nil keywords, got %#v", c.Metadata.Keywords)
	}
}
