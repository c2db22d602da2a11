package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"instascraper/pkg/instagram"
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(magenta).
	Padding(0, 1)

// Counts summarizes what a scrape collected
type Counts struct {
	MainStories      int
	HighlightStories int
	Posts            int
	Comments         int
}

// ProfileSummary renders a bordered panel describing user and counts
func ProfileSummary(user instagram.User, counts Counts) string {
	rows := [][2]string{
		{"Username", user.Username},
		{"Name", user.FullName},
		{"ID", user.ID},
		{"Followers", strconv.Itoa(user.Followers())},
		{"Following", strconv.Itoa(user.Following())},
		{"Private", yesNo(user.IsPrivate)},
		{"Verified", yesNo(user.IsVerified)},
		{"Stories", fmt.Sprintf("%d main, %d highlight", counts.MainStories, counts.HighlightStories)},
		{"Posts", strconv.Itoa(counts.Posts)},
		{"Comments", strconv.Itoa(counts.Comments)},
	}
	if user.Biography != nil && *user.Biography != "" {
		rows = append(rows, [2]string{"Bio", *user.Biography})
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := labelStyle.Render(r[0] + strings.Repeat(" ", width-len(r[0])))
		lines = append(lines, label+"  "+valueStyle.Render(r[1]))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Summary prints ProfileSummary
func (p *Printer) Summary(user instagram.User, counts Counts) {
	p.println(ProfileSummary(user, counts))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
