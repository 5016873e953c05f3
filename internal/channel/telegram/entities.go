package telegram

import (
	"strings"
	"unicode/utf16"

	"github.com/go-telegram/bot/models"

	"github.com/tgifai/thursday/internal/channel"
)

var entityTypes = map[channel.Style]models.MessageEntityType{
	channel.StyleBold:   models.MessageEntityTypeBold,
	channel.StyleItalic: models.MessageEntityTypeItalic,
	channel.StyleStrike: models.MessageEntityTypeStrikethrough,
	channel.StyleCode:   models.MessageEntityTypeCode,
}

// convertMarkdownEntities renders markdown as plain text plus message
// entities. Offsets and lengths are in UTF-16 code units.
func convertMarkdownEntities(md string) (string, []models.MessageEntity) {
	doc := channel.ParseMarkdown(md)

	var (
		text     strings.Builder
		offset16 int
		entities []models.MessageEntity
	)
	for i, p := range doc.Paragraphs {
		if i > 0 {
			text.WriteByte('\n')
			offset16++
		}
		for _, seg := range p {
			length := utf16Length(seg.Text)
			if length == 0 {
				continue
			}
			for _, style := range seg.Styles {
				if typ, ok := entityTypes[style]; ok {
					entities = appendEntity(entities, models.MessageEntity{Type: typ, Offset: offset16, Length: length})
				}
			}
			if seg.Href != "" {
				entities = append(entities, models.MessageEntity{
					Type:   models.MessageEntityTypeTextLink,
					Offset: offset16,
					Length: length,
					URL:    seg.Href,
				})
			}
			text.WriteString(seg.Text)
			offset16 += length
		}
	}
	return text.String(), entities
}

// appendEntity extends the last entity of the same type when e starts
// where it ends, so one bold run split across segments stays one entity.
func appendEntity(entities []models.MessageEntity, e models.MessageEntity) []models.MessageEntity {
	for i := len(entities) - 1; i >= 0; i-- {
		last := &entities[i]
		if last.Type == e.Type && last.URL == "" && last.Offset+last.Length == e.Offset {
			last.Length += e.Length
			return entities
		}
	}
	return append(entities, e)
}

func utf16Length(input string) int {
	return len(utf16.Encode([]rune(input)))
}
