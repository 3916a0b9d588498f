package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"weapon-quiz-service/internal/domain"
)

// Mode selects which stat a quiz asks about.
type Mode string

const (
	// ModeScaling asks which attributes a weapon scales with.
	ModeScaling Mode = "scaling"
	// ModeAttack asks for the weapon's physical attack value.
	ModeAttack Mode = "attack"
)

const (
	DefaultName        = "Unknown Weapon"
	DefaultDescription = "No description available."
	DefaultImageRef    = "/static/img/weapon-placeholder.png"
)

// attributeNames maps abbreviated and full attribute codes (lower case) to canonical names.
var attributeNames = map[string]string{
	"str":          "Strength",
	"strength":     "Strength",
	"dex":          "Dexterity",
	"dexterity":    "Dexterity",
	"int":          "Intelligence",
	"intelligence": "Intelligence",
	"fai":          "Faith",
	"faith":        "Faith",
	"arc":          "Arcane",
	"arcane":       "Arcane",
}

// gradeRank orders scaling grades, highest first.
var gradeRank = map[string]int{
	"S": 6,
	"A": 5,
	"B": 4,
	"C": 3,
	"D": 2,
	"E": 1,
}

// Options controls record normalization.
type Options struct {
	Mode Mode
	// MinGrade drops scaling entries ranked below it. Empty accepts any recognized grade.
	MinGrade string
}

// Variant names the normalization settings, e.g. "scaling-D" or "attack".
// Catalogs normalized under different variants must not share a cache entry.
func (o Options) Variant() string {
	if o.Mode == ModeAttack {
		return string(ModeAttack)
	}
	grade := "any"
	if _, ok := GradeRank(o.MinGrade); ok {
		grade = strings.ToUpper(strings.TrimSpace(o.MinGrade))
	}
	return string(ModeScaling) + "-" + grade
}

// ParseMinGrade validates a configured minimum grade. Empty means any grade.
func ParseMinGrade(raw string) (string, error) {
	grade := strings.ToUpper(strings.TrimSpace(raw))
	if grade == "" {
		return "", nil
	}
	if _, ok := gradeRank[grade]; !ok {
		return "", fmt.Errorf("unknown scaling grade %q, want one of S A B C D E", raw)
	}
	return grade, nil
}

// ParseMode returns the mode for raw, defaulting to ModeScaling.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeAttack:
		return ModeAttack
	default:
		return ModeScaling
	}
}

// CanonicalAttribute maps an attribute code to its full name.
func CanonicalAttribute(code string) (string, bool) {
	name, ok := attributeNames[strings.ToLower(strings.TrimSpace(code))]
	return name, ok
}

// GradeRank returns the rank of a scaling grade; unknown grades report false.
func GradeRank(grade string) (int, bool) {
	rank, ok := gradeRank[strings.ToUpper(strings.TrimSpace(grade))]
	return rank, ok
}

// Normalize maps raw records to quiz items. Records without usable answers
// and records repeating an earlier id are dropped; nothing here fails.
func Normalize(records []Record, opts Options) []domain.Item {
	minRank := 0
	if r, ok := GradeRank(opts.MinGrade); ok {
		minRank = r
	}

	items := make([]domain.Item, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for idx, rec := range records {
		var answers []string
		switch opts.Mode {
		case ModeAttack:
			answers = attackAnswers(rec.Attack)
		default:
			answers = scalingAnswers(rec.ScalesWith, minRank)
		}
		if len(answers) == 0 {
			continue
		}

		item := domain.Item{
			ID:             strings.TrimSpace(rec.ID),
			Name:           orDefault(rec.Name, DefaultName),
			Description:    orDefault(rec.Description, DefaultDescription),
			ImageRef:       orDefault(rec.Image, DefaultImageRef),
			CorrectAnswers: answers,
		}
		if item.ID == "" {
			item.ID = strings.TrimSpace(rec.Name)
		}
		if item.ID == "" {
			item.ID = "weapon-" + strconv.Itoa(idx)
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}

type rankedAttribute struct {
	name string
	rank int
}

func scalingAnswers(scales []Scaling, minRank int) []string {
	ranked := make([]rankedAttribute, 0, len(scales))
	for _, s := range scales {
		name, ok := CanonicalAttribute(s.Name)
		if !ok {
			continue
		}
		rank, ok := GradeRank(s.Scaling)
		if !ok || rank < minRank {
			continue
		}
		ranked = append(ranked, rankedAttribute{name: name, rank: rank})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].rank > ranked[j].rank
	})

	answers := make([]string, 0, len(ranked))
	for _, r := range ranked {
		answers = appendUnique(answers, r.name)
	}
	return answers
}

func attackAnswers(stats []Stat) []string {
	for _, s := range stats {
		switch strings.ToLower(strings.TrimSpace(s.Name)) {
		case "phy", "physical":
			if s.Amount > 0 {
				return []string{strconv.FormatFloat(s.Amount, 'f', -1, 64)}
			}
			return nil
		}
	}
	return nil
}

func appendUnique(answers []string, token string) []string {
	key := domain.NormalizeAnswer(token)
	if key == "" {
		return answers
	}
	for _, a := range answers {
		if domain.NormalizeAnswer(a) == key {
			return answers
		}
	}
	return append(answers, strings.TrimSpace(token))
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
