package domain

import (
	"fmt"
	"iter"
	"strings"
)

// ValidateLesson runs the structural checks every content-affecting write
// must pass. Pure check, no side effects. A lesson that fails here is never
// persisted, so published content is always structurally valid by construction.
func ValidateLesson(l Lesson) error {
	if strings.TrimSpace(l.Title) == "" {
		return &ValidationError{Msg: "title required"}
	}
	if len(l.Blocks) == 0 {
		return &ValidationError{Msg: "blocks required"}
	}
	for _, b := range l.Blocks {
		if !b.Type.Known() {
			return &ValidationError{Msg: fmt.Sprintf("unknown block type: %s", b.Type)}
		}
		if b.Type == BlockScriptureReading && strings.TrimSpace(b.Reference) == "" {
			return &ValidationError{Msg: "scripture_reading block requires a reference"}
		}
	}
	if strings.TrimSpace(l.Scripture.Primary) == "" {
		return &ValidationError{Msg: "primary scripture reference required"}
	}
	return nil
}

// DiscussionQuestions yields the question strings pulled from every
// discussion block, in block order, with list markup flattened into
// discrete questions. Read-time projection over Blocks: recomputed on
// every iteration, so the sequence never drifts from the block data and
// is safe to restart.
func DiscussionQuestions(l Lesson) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, b := range l.Blocks {
			if b.Type != BlockDiscussion {
				continue
			}
			for _, line := range strings.Split(b.Content, "\n") {
				q := stripListMarker(line)
				if q == "" {
					continue
				}
				if !yield(q) {
					return
				}
			}
		}
	}
}

// ProjectableBlocks yields the blocks suitable for public/shared display,
// in block order. Same projection style as DiscussionQuestions.
func ProjectableBlocks(l Lesson) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, b := range l.Blocks {
			if !b.Projectable {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// stripListMarker trims a line and removes a leading bullet or ordinal
// marker ("- ", "* ", "1. ", "2)"). Blank lines collapse to "".
func stripListMarker(line string) string {
	s := strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(s, "- "); ok {
		return strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutPrefix(s, "* "); ok {
		return strings.TrimSpace(rest)
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
