package appointment

import (
	"regexp"
	"strings"
)

const separator = "________________________________________________________________________________"

// User-facing strings of the meeting block.
const (
	LocationLabel    = "Nextcloud Talk (online)"
	bodyPrefix       = "Join the meeting via Nextcloud Talk:"
	bodyInstructions = "Click the link above to join the video meeting."
)

// teamsPatterns match the meeting blocks a competing product leaves in
// appointment bodies: signature blocks, join links, and dial-in lines.
var teamsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Microsoft Teams Meeting[\s\S]*?` + separator),
	regexp.MustCompile(`(?i)Join Microsoft Teams Meeting[\s\S]*?Learn more \| Meeting options`),
	regexp.MustCompile(`(?i)Click here to join the meeting[\s\S]*?Learn More \| Meeting options`),
	regexp.MustCompile(separator),
	regexp.MustCompile(`<https://teams\.microsoft\.com/l/meetup-join/[^>]+>`),
	regexp.MustCompile(`https://teams\.microsoft\.com/l/meetup-join/[^\s]+`),
	regexp.MustCompile(`Conference ID:.*?\n`),
	regexp.MustCompile(`Dial-in Numbers.*?\n`),
}

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// RemoveTeamsMeetingInfo strips competing-product meeting blocks from an
// appointment body. Idempotent: running it on an already-cleaned body is a
// no-op.
func RemoveTeamsMeetingInfo(body string) string {
	if body == "" {
		return ""
	}

	cleaned := body
	for _, p := range teamsPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}

	cleaned = excessBlankLines.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// HasTeamsMeeting reports whether the body carries a competing meeting block.
func HasTeamsMeeting(body string) bool {
	return strings.Contains(body, "teams.microsoft.com") ||
		strings.Contains(body, "Microsoft Teams Meeting") ||
		strings.Contains(body, "Join Microsoft Teams Meeting")
}

// BuildMeetingText renders the Talk meeting block appended to the
// appointment body: separators, the room name, the join URL, and join
// instructions.
func BuildMeetingText(talkURL, roomName string) string {
	var b strings.Builder
	b.WriteString(separator + "\n\n")
	b.WriteString(roomName + "\n\n")
	b.WriteString(bodyPrefix + "\n")
	b.WriteString(talkURL + "\n\n")
	b.WriteString(bodyInstructions + "\n")
	b.WriteString(separator)
	return b.String()
}

// ApplyMeetingBlock cleans competing blocks out of body and appends the Talk
// meeting block.
func ApplyMeetingBlock(body, talkURL, roomName string) string {
	cleaned := RemoveTeamsMeetingInfo(body)
	text := BuildMeetingText(talkURL, roomName)
	if cleaned == "" {
		return text
	}
	return cleaned + "\n\n" + text
}
