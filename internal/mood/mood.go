// Package mood infers a discrete mood label from journal text by keyword scoring.
package mood

import (
	"errors"
	"fmt"
	"strings"

	errorvalues "github.com/limbo/zenjournal/internal/error_values"
)

type Label string

const (
	Happy     Label = "happy"
	Sad       Label = "sad"
	Grateful  Label = "grateful"
	Angry     Label = "angry"
	Anxious   Label = "anxious"
	Calm      Label = "calm"
	Energetic Label = "energetic"
	Tired     Label = "tired"
	Neutral   Label = "neutral"
)

var all = []Label{Happy, Sad, Grateful, Angry, Anxious, Calm, Energetic, Tired, Neutral}

// All returns every label in canonical order, neutral last.
func All() []Label {
	out := make([]Label, len(all))
	copy(out, all)
	return out
}

func Parse(s string) (Label, error) {
	v := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range all {
		if l == v {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errorvalues.ErrInvalidMood, s)
}

// Rule binds a label to the keywords that vote for it.
type Rule struct {
	Label    Label
	Keywords []string
}

// Table is an immutable ordered keyword table. Rule order is the tie-break order.
type Table struct {
	rules    []Rule
	keywords [][]keyword
}

// cover marks a longer keyword of another rule that contains this one at offset.
type cover struct {
	outer  string
	offset int
}

type keyword struct {
	text   string
	covers []cover
}

// matches reports whether kw occurs in text at least once outside every cover.
// "unhappy" in a text does not vote for the rule owning "happy".
func (kw keyword) matches(text string) bool {
	for from := 0; from <= len(text); {
		i := strings.Index(text[from:], kw.text)
		if i < 0 {
			return false
		}
		pos := from + i
		if !kw.coveredAt(text, pos) {
			return true
		}
		from = pos + 1
	}
	return false
}

func (kw keyword) coveredAt(text string, pos int) bool {
	for _, c := range kw.covers {
		start := pos - c.offset
		if start >= 0 && strings.HasPrefix(text[start:], c.outer) {
			return true
		}
	}
	return false
}

var (
	ErrNeutralRule  = errors.New("neutral can't have keywords")
	ErrEmptyRule    = errors.New("rule has no keywords")
	ErrDuplicate    = errors.New("label declared twice")
	ErrUnknownLabel = errors.New("unknown label")
)

func NewTable(rules ...Rule) (Table, error) {
	seen := make(map[Label]bool, len(rules))
	copied := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if _, err := Parse(string(r.Label)); err != nil {
			return Table{}, fmt.Errorf("%w: %q", ErrUnknownLabel, r.Label)
		}
		if r.Label == Neutral {
			return Table{}, ErrNeutralRule
		}
		if len(r.Keywords) == 0 {
			return Table{}, fmt.Errorf("%w: %s", ErrEmptyRule, r.Label)
		}
		if seen[r.Label] {
			return Table{}, fmt.Errorf("%w: %s", ErrDuplicate, r.Label)
		}
		seen[r.Label] = true
		kw := make([]string, len(r.Keywords))
		for i, k := range r.Keywords {
			kw[i] = strings.ToLower(k)
			if strings.TrimSpace(kw[i]) == "" {
				return Table{}, fmt.Errorf("%w: blank keyword in %s", ErrEmptyRule, r.Label)
			}
		}
		copied = append(copied, Rule{Label: r.Label, Keywords: kw})
	}
	return Table{rules: copied, keywords: buildCovers(copied)}, nil
}

func buildCovers(rules []Rule) [][]keyword {
	out := make([][]keyword, len(rules))
	for i, r := range rules {
		out[i] = make([]keyword, len(r.Keywords))
		for j, text := range r.Keywords {
			kw := keyword{text: text}
			for oi, other := range rules {
				if oi == i {
					continue
				}
				for _, outer := range other.Keywords {
					if len(outer) <= len(text) {
						continue
					}
					for off := 0; off+len(text) <= len(outer); off++ {
						if outer[off:off+len(text)] == text {
							kw.covers = append(kw.covers, cover{outer: outer, offset: off})
						}
					}
				}
			}
			out[i][j] = kw
		}
	}
	return out
}

func DefaultTable() Table {
	t, err := NewTable(
		Rule{Happy, []string{"happy", "joy", "joyful", "excited", "great", "wonderful", "amazing", "fantastic", "delighted", "cheerful", "pleased", "content"}},
		Rule{Sad, []string{"sad", "down", "upset", "depressed", "unhappy", "miserable", "gloomy", "melancholy", "blue", "disappointed"}},
		Rule{Grateful, []string{"grateful", "thankful", "blessed", "appreciate", "fortunate", "luck"}},
		Rule{Angry, []string{"angry", "frustrated", "mad", "annoyed", "irritated", "furious", "rage"}},
		Rule{Anxious, []string{"anxious", "worried", "nervous", "stressed", "tense", "uneasy", "concerned", "overwhelmed"}},
		Rule{Calm, []string{"calm", "peaceful", "relaxed", "serene", "tranquil", "composed"}},
		Rule{Energetic, []string{"energetic", "motivated", "productive", "active", "driven"}},
		Rule{Tired, []string{"tired", "exhausted", "fatigued", "drained", "weary", "sleepy"}},
	)
	if err != nil {
		panic("mood: invalid default table: " + err.Error())
	}
	return t
}

func (t Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Label: r.Label, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

type Classifier struct {
	table Table
}

func NewClassifier(table Table) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the label whose keywords appear most often as substrings of content.
// Each keyword counts once, and an occurrence lying inside a longer keyword of
// another rule votes only for that rule. Ties go to the rule declared first;
// no match yields Neutral.
func (c *Classifier) Classify(content string) Label {
	text := strings.ToLower(content)
	best, bestScore := Neutral, 0
	for i, r := range c.table.rules {
		score := 0
		for _, kw := range c.table.keywords[i] {
			if kw.matches(text) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = r.Label, score
		}
	}
	return best
}
