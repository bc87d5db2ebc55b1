package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"plimport/internal/models"
	"plimport/internal/output"
	"plimport/internal/validator"
	"plimport/pkg/metadata"
)

// Report is the input of a run report.
type Report struct {
	Document    *models.Document
	Version     string
	GeneratedAt time.Time
}

type aggregate struct {
	players     int
	rating      int
	development int
}

func (a *aggregate) add(p models.Player) {
	a.players++
	a.rating += p.Rating
	a.development += p.Development
}

func (a aggregate) avg(total int) string {
	if a.players == 0 {
		return "-"
	}

	return strconv.FormatFloat(float64(total)/float64(a.players), 'f', 1, 64)
}

// RenderReport builds the markdown report for a finished import and signs
// it. The body depends on the document only, so identical imports give
// identical hashes.
func RenderReport(r Report) string {
	doc := r.Document

	byTeam := make(map[string]*aggregate)
	byPos := make(map[models.Position]*aggregate)
	missingBirth := 0

	var unknown []string

	for _, p := range doc.Players {
		key := p.Source.TeamKey

		if byTeam[key] == nil {
			byTeam[key] = &aggregate{}

			if _, ok := doc.Teams.Get(key); !ok {
				unknown = append(unknown, key)
			}
		}

		byTeam[key].add(p)

		if byPos[p.Position] == nil {
			byPos[p.Position] = &aggregate{}
		}

		byPos[p.Position].add(p)

		if p.BirthYear == nil {
			missingBirth++
		}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "# Squad import %s\n\n", doc.Meta.Season)
	fmt.Fprintf(&sb, "- Source: %s (%s)\n", doc.Meta.SourceRepo, doc.Meta.SourceSeasonFolder)

	commit := "none"
	if doc.Meta.PinnedCommit != nil {
		commit = *doc.Meta.PinnedCommit
	}

	fmt.Fprintf(&sb, "- Pinned commit: %s\n", commit)
	fmt.Fprintf(&sb, "- Players: %d\n", len(doc.Players))
	fmt.Fprintf(&sb, "- Teams: %d\n", doc.Teams.Len())
	fmt.Fprintf(&sb, "- Birth year missing: %d\n", missingBirth)

	sb.WriteString("\n## Teams\n\n")
	sb.WriteString("| Key | Name | Short | Strength | Players | Avg rating |\n")
	sb.WriteString("| --- | --- | --- | ---: | ---: | ---: |\n")

	for _, key := range doc.Teams.Keys() {
		team, _ := doc.Teams.Get(key)

		short := "-"
		if team.Short != nil {
			short = escapeCell(*team.Short)
		}

		agg := aggregate{}
		if a := byTeam[key]; a != nil {
			agg = *a
		}

		fmt.Fprintf(&sb, "| %s | %s | %s | %d | %d | %s |\n",
			escapeCell(key), escapeCell(team.Name), short, doc.Teams.Strength(key), agg.players, agg.avg(agg.rating))
	}

	sb.WriteString("\n## Positions\n\n")
	sb.WriteString("| Position | Players | Avg rating | Avg development |\n")
	sb.WriteString("| --- | ---: | ---: | ---: |\n")

	for _, pos := range models.Positions {
		agg := aggregate{}
		if a := byPos[pos]; a != nil {
			agg = *a
		}

		fmt.Fprintf(&sb, "| %s | %d | %s | %s |\n", pos, agg.players, agg.avg(agg.rating), agg.avg(agg.development))
	}

	if len(unknown) > 0 {
		sb.WriteString("\n## Unknown team keys\n\n")
		sb.WriteString("| Key | Players |\n")
		sb.WriteString("| --- | ---: |\n")

		for _, key := range unknown {
			fmt.Fprintf(&sb, "| %s | %d |\n", escapeCell(key), byTeam[key].players)
		}
	}

	if len(doc.Meta.Notes) > 0 {
		sb.WriteString("\n## Notes\n\n")

		for _, n := range doc.Meta.Notes {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
	}

	body := AlignTables(sb.String())

	return metadata.Sign(body, metadata.SignOptions{
		Validated: validator.ValidateTables(body).IsValid,
		Version:   r.Version,
		Now:       r.GeneratedAt,
	})
}

// WriteReport renders r and writes it to path.
func WriteReport(path string, r Report) error {
	_, err := output.WriteFile(path, []byte(RenderReport(r)))
	return err
}

func escapeCell(s string) string {
	if s == "" {
		return "-"
	}

	return strings.ReplaceAll(s, "|", `\|`)
}
