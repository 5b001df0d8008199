package chunk

import (
	"reflect"
	"testing"
)

func TestFields_RoundTrip(t *testing.T) {
	c := Chunk{
		ID:        "vid_3",
		ChunkText: "본문",
		FullText:  "[주제: 믿음] 본문",
		Metadata: Metadata{
			VideoID:     "vid",
			VideoTitle:  "주일예배",
			ServiceType: "주일예배",
			ServiceDate: "2024-01-07",
			SermonTopic: "믿음",
			Keywords:    []string{"믿음", "소망"},
			ChunkIndex:  3,
			StartChar:   1200,
			EndChar:     1710,
			StartTime:   360000,
			EndTime:     420500,
		},
	}
	f := c.Fields()
	if f[FieldServiceDateNum] != "20240107" {
		t.Errorf("expected numeric date, got %q", f[FieldServiceDateNum])
	}
	if f[FieldKeywords] != "믿음,소망" {
		t.Errorf("unexpected keywords field %q", f[FieldKeywords])
	}

	got := FromFields("vid_3", f)
	if !reflect.DeepEqual(got, c) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, c)
	}
}

func TestFields_NoDateNumForUnknownDate(t *testing.T) {
	c := Chunk{Metadata: Metadata{ServiceDate: ""}}
	if _, ok := c.Fields()[FieldServiceDateNum]; ok {
		t.Error("expected no numeric date for empty service date")
	}
	if kw := MetadataFromFields(map[string]string{}).Keywords; kw == nil || len(kw) != 0 {
		t.Errorf("expected empty keywords, got %#v", kw)
	}
}
