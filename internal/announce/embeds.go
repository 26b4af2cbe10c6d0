package announce

import (
	"fmt"
	"strings"
	"time"

	"fragportal/internal/model"
	"fragportal/internal/stats"

	"github.com/bwmarrin/discordgo"
)

const (
	colorWin  = 0x2ecc71
	colorDraw = 0x95a5a6
	colorNews = 0x3498db

	newsPreviewRunes = 280
)

func teamName(names map[string]string, id string) string {
	if n := names[id]; n != "" {
		return n
	}
	return id
}

// MatchEmbed renders a finished series: the score line, one field per map
// and the player with the best K/D across the series.
func MatchEmbed(m model.Match, names map[string]string) *discordgo.MessageEmbed {
	score := stats.ComputeSeriesScore(m.Result)
	first, second := teamName(names, m.Teams[0]), teamName(names, m.Teams[1])

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s %d:%d %s", first, score.WinsFirstTeam, score.WinsSecondTeam, second),
		Color:     colorDraw,
		Timestamp: m.Date.UTC().Format(time.RFC3339),
	}
	if winner, ok := stats.SeriesWinner(m.Teams, score); ok {
		embed.Description = teamName(names, winner) + " wins the series"
		embed.Color = colorWin
	} else {
		embed.Description = "Series drawn"
	}

	for i, r := range m.Result {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Map %d: %s", i+1, r.Map),
			Value:  fmt.Sprintf("%d:%d", r.TotalScoreFirstTeam, r.TotalScoreSecondTeam),
			Inline: true,
		})
	}
	if top, ok := TopFragger(m); ok {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Top fragger",
			Value: fmt.Sprintf("%s (%s K/D, %d kills)", top.Nickname, stats.FormatKD(top.KD), top.Kills),
		})
	}
	return embed
}

// TopFragger picks the best series K/D; ties keep nickname order.
func TopFragger(m model.Match) (stats.PlayerCareer, bool) {
	board := stats.SortCareers(stats.Leaderboard([]model.Match{m}), stats.SortKD, stats.Descending)
	if len(board) == 0 {
		return stats.PlayerCareer{}, false
	}
	return board[0], true
}

func NewsEmbed(n model.News) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: preview(n.Body, newsPreviewRunes),
		Color:       colorNews,
		Timestamp:   n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.Author != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "by " + n.Author}
	}
	if n.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: n.ImageURL}
	}
	return embed
}

func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}
