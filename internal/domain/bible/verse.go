// Package bible models the Bible verse corpus.
package bible

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

// Testament values.
const (
	OldTestament = "구약"
	NewTestament = "신약"
)

// Stored hash field names.
const (
	FieldBook      = "book"
	FieldChapter   = "chapter"
	FieldVerse     = "verse"
	FieldText      = "text"
	FieldTestament = "testament"
)

// MaxTextSize caps a single verse text in bytes.
const MaxTextSize = 8192

// Verse is one Bible verse. Book, chapter and verse form its natural key.
type Verse struct {
	Book      string `json:"book"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Text      string `json:"text"`
	Testament string `json:"testament"`
}

// ValidTestament reports whether s names a testament.
func ValidTestament(s string) bool { return s == OldTestament || s == NewTestament }

// Validate checks the verse before it is embedded and stored.
func (v Verse) Validate() error {
	switch {
	case strings.TrimSpace(v.Book) == "":
		return fmt.Errorf("%w: book is required", domain.ErrInvalidInput)
	case strings.ContainsAny(v.Book, "-:"):
		return fmt.Errorf("%w: book %q must not contain '-' or ':'", domain.ErrInvalidInput, v.Book)
	case v.Chapter < 1:
		return fmt.Errorf("%w: chapter must be >= 1", domain.ErrInvalidInput)
	case v.Verse < 1:
		return fmt.Errorf("%w: verse must be >= 1", domain.ErrInvalidInput)
	case strings.TrimSpace(v.Text) == "":
		return fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	case len(v.Text) > MaxTextSize:
		return fmt.Errorf("%w: text too large (max %d bytes)", domain.ErrInvalidInput, MaxTextSize)
	case !ValidTestament(v.Testament):
		return fmt.Errorf("%w: testament must be %q or %q", domain.ErrInvalidInput, OldTestament, NewTestament)
	}
	return nil
}

// Key returns the natural identifier "book-chapter-verse".
func (v Verse) Key() string {
	return v.Book + "-" + strconv.Itoa(v.Chapter) + "-" + strconv.Itoa(v.Verse)
}

// Reference renders the citation form "요한복음 3:16".
func (v Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.Book, v.Chapter, v.Verse)
}

// Fields renders the verse as flat hash fields.
func (v Verse) Fields() map[string]string {
	return map[string]string{
		FieldBook:      v.Book,
		FieldChapter:   strconv.Itoa(v.Chapter),
		FieldVerse:     strconv.Itoa(v.Verse),
		FieldText:      v.Text,
		FieldTestament: v.Testament,
	}
}

// FromFields rebuilds a verse from stored hash fields.
func FromFields(f map[string]string) Verse {
	chapter, _ := strconv.Atoi(f[FieldChapter])
	verse, _ := strconv.Atoi(f[FieldVerse])
	return Verse{
		Book:      f[FieldBook],
		Chapter:   chapter,
		Verse:     verse,
		Text:      f[FieldText],
		Testament: f[FieldTestament],
	}
}
