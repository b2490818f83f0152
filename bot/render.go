package bot

import (
	"regexp"
	"strings"

	"knucklebone/commands"
)

var (
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	strikePattern = regexp.MustCompile(`~~(.+?)~~`)
)

// Telegram has no embed colors, so the color becomes a leading emoji.
var colorEmoji = map[commands.Color]string{
	commands.ColorGold:      "🌟",
	commands.ColorDarkRed:   "💀",
	commands.ColorRed:       "🔴",
	commands.ColorOrange:    "🟠",
	commands.ColorGreen:     "🟢",
	commands.ColorBlue:      "🔵",
	commands.ColorLightGrey: "⚪",
}

// renderHTML turns a reply into a Telegram HTML message body.
func renderHTML(reply commands.Reply) string {
	if !reply.Structured() {
		return markupToHTML(reply.Text)
	}

	var lines []string
	if reply.Title != "" {
		title := "<b>" + htmlEscaper.Replace(reply.Title) + "</b>"
		if emoji, ok := colorEmoji[reply.Color]; ok {
			title = emoji + " " + title
		}
		lines = append(lines, title)
	}
	if reply.Text != "" {
		lines = append(lines, markupToHTML(reply.Text))
	}

	// consecutive inline fields share a line
	var row []string
	flush := func() {
		if len(row) > 0 {
			lines = append(lines, strings.Join(row, "  ·  "))
			row = nil
		}
	}
	for _, f := range reply.Fields {
		line := "<b>" + htmlEscaper.Replace(f.Name) + ":</b> " + markupToHTML(f.Value)
		if !f.Inline {
			flush()
			lines = append(lines, line)
			continue
		}
		row = append(row, line)
	}
	flush()

	return strings.Join(lines, "\n")
}

// markupToHTML converts **bold**, `code` and ~~strike~~ to Telegram HTML.
// Code spans are left untouched inside.
func markupToHTML(text string) string {
	parts := strings.Split(text, "`")
	var sb strings.Builder
	for i, part := range parts {
		escaped := htmlEscaper.Replace(part)
		switch {
		case i%2 == 1 && i < len(parts)-1:
			sb.WriteString("<code>" + escaped + "</code>")
		case i%2 == 1:
			// unmatched backtick
			sb.WriteString("`" + inlineMarkup(escaped))
		default:
			sb.WriteString(inlineMarkup(escaped))
		}
	}
	return sb.String()
}

func inlineMarkup(s string) string {
	s = boldPattern.ReplaceAllString(s, "<b>$1</b>")
	return strikePattern.ReplaceAllString(s, "<s>$1</s>")
}
