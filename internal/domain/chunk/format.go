package chunk

import "strings"

// Format renders the embedding-ready text: bracketed tags for every populated
// field, a space, then the raw text. With no tags the result still starts with
// the space.
func Format(m Metadata, text string) string {
	tags := make([]string, 0, 7)
	if m.Preacher != "" {
		tags = append(tags, "[설교자: "+m.Preacher+"]")
	}
	if m.SermonTopic != "" {
		tags = append(tags, "[주제: "+m.SermonTopic+"]")
	}
	if m.BibleVerse != "" {
		tags = append(tags, "[성경말씀: "+m.BibleVerse+"]")
	}
	if m.ServiceDate != "" {
		tags = append(tags, "[날짜: "+m.ServiceDate+"]")
	}
	if m.ServiceType != "" {
		tags = append(tags, "["+m.ServiceType+"]")
	}
	if m.VideoTitle != "" {
		tags = append(tags, "["+m.VideoTitle+"]")
	}
	if len(m.Keywords) > 0 {
		tags = append(tags, "[키워드: "+strings.Join(m.Keywords, ", ")+"]")
	}
	return strings.Join(tags, " ") + " " + text
}
