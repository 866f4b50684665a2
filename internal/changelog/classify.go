package changelog

import (
	"regexp"
	"strings"

	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

// SystemActor is attributed when no actor can be extracted from a note.
const SystemActor = "System"

// The keyword and verb lists below are configuration data, not code:
// historical notes are free text and the vocabularies grow as new
// phrasings show up in production logs.
var (
	// approvalKeywords file a note as an approval change.
	approvalKeywords = []string{
		"freigegeben",
		"genehmigt",
		"Freigabe",
		"approved",
		"approval",
	}

	// statusMarkerTokens identify notes that duplicate a status event
	// through a second table.
	statusMarkerTokens = []string{
		"→",
		"->",
		"Status:",
	}

	// actorVerbs follow a capitalized name in actor-attributed notes.
	actorVerbs = []string{
		"geändert",
		"erstellt",
		"angelegt",
		"changed",
		"created",
	}
)

var actorPattern = buildActorPattern(actorVerbs)

func buildActorPattern(verbs []string) *regexp.Regexp {
	quoted := make([]string, len(verbs))
	for i, verb := range verbs {
		quoted[i] = regexp.QuoteMeta(verb)
	}
	// one or more capitalized words, immediately followed by a known verb
	return regexp.MustCompile(`(\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)*)\s+(?:` + strings.Join(quoted, "|") + `)`)
}

// ClassifyNote files a free-text note. The second return is false when
// the note is a duplicate of a status event and must be excluded.
func ClassifyNote(note string) (enums.ChangeLogEntryType, bool) {
	for _, token := range statusMarkerTokens {
		if strings.Contains(note, token) {
			return enums.ChangeLogOther, false
		}
	}

	lowered := strings.ToLower(note)
	for _, keyword := range approvalKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return enums.ChangeLogApprovalChange, true
		}
	}
	return enums.ChangeLogOther, true
}

// ExtractActor pulls the acting person out of a free-text note, falling
// back to the system sentinel.
func ExtractActor(note string) string {
	match := actorPattern.FindStringSubmatch(note)
	if match == nil {
		return SystemActor
	}
	return strings.TrimSpace(match[1])
}
