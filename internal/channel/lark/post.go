package lark

import (
	"github.com/bytedance/sonic"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/tgifai/thursday/internal/channel"
)

// maxPostContentSize is the upper bound for a Lark post message content (30 KB).
const maxPostContentSize = 30 * 1024

// postElement represents a single inline element in a Lark post paragraph.
type postElement = map[string]interface{}

var postStyles = map[channel.Style]string{
	channel.StyleBold:   "bold",
	channel.StyleItalic: "italic",
	channel.StyleStrike: "lineThrough",
}

// markdownToPost converts markdown text into Lark post content paragraphs.
// The returned structure is suitable for the "content" field under "zh_cn".
func markdownToPost(md string) [][]postElement {
	doc := channel.ParseMarkdown(md)
	if len(doc.Paragraphs) == 0 {
		return nil
	}

	paragraphs := make([][]postElement, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		line := make([]postElement, 0, len(p))
		for _, seg := range p {
			if seg.Href != "" {
				line = append(line, postElement{"tag": "a", "text": seg.Text, "href": seg.Href})
				continue
			}
			el := postElement{"tag": "text", "text": seg.Text}
			var styles []string
			for _, s := range seg.Styles {
				if name, ok := postStyles[s]; ok {
					styles = append(styles, name)
				}
			}
			if len(styles) > 0 {
				el["style"] = styles
			}
			line = append(line, el)
		}
		if len(line) == 0 {
			line = append(line, postElement{"tag": "text", "text": ""})
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}

// buildPostContent converts markdown to a Lark post message. If the rendered
// post exceeds maxPostContentSize it falls back to plain text (truncated).
func buildPostContent(md string) (msgType string, body string, err error) {
	paragraphs := markdownToPost(md)

	post := map[string]interface{}{
		"zh_cn": map[string]interface{}{
			"content": paragraphs,
		},
	}
	serialized, err := sonic.MarshalString(post)
	if err != nil {
		return "", "", err
	}

	if len(serialized) <= maxPostContentSize {
		return larkim.MsgTypePost, serialized, nil
	}

	for len(paragraphs) > 1 {
		paragraphs = paragraphs[:len(paragraphs)-1]
		post["zh_cn"] = map[string]interface{}{
			"content": append(paragraphs, []postElement{
				{"tag": "text", "text": "… [truncated]"},
			}),
		}
		serialized, err = sonic.MarshalString(post)
		if err != nil {
			return "", "", err
		}
		if len(serialized) <= maxPostContentSize {
			return larkim.MsgTypePost, serialized, nil
		}
	}

	text := md
	if len(text) > maxPostContentSize-20 {
		text = text[:maxPostContentSize-20] + "… [truncated]"
	}
	plain, err := sonic.MarshalString(map[string]string{"text": text})
	if err != nil {
		return "", "", err
	}
	return larkim.MsgTypeText, plain, nil
}

func buildImageContent(imageKey string) (string, error) {
	return sonic.MarshalString(map[string]string{"image_key": imageKey})
}
