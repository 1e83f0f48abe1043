package academic

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FallbackLevel is used when a session name cannot be parsed.
const FallbackLevel = 200

var (
	nowFunc     = time.Now // mockable
	nonDigitsRx = regexp.MustCompile(`\D`)
)

// LetterGrade maps a score to A..F.
func LetterGrade(score int) string {
	switch {
	case score >= 70:
		return "A"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	case score >= 45:
		return "D"
	case score >= 40:
		return "E"
	default:
		return "F"
	}
}

// GradePoints is 5-point scale at 100 level and 4-point scale above it.
func GradePoints(score, level int) float64 {
	if level == 100 {
		switch {
		case score >= 70:
			return 5
		case score >= 60:
			return 4
		case score >= 50:
			return 3
		case score >= 45:
			return 2
		case score >= 40:
			return 1
		default:
			return 0
		}
	}
	switch {
	case score >= 70:
		return 4
	case score >= 60:
		return 3
	case score >= 50:
		return 2
	case score >= 45:
		return 1
	default:
		return 0
	}
}

// EntryYear guesses the admission year from a matric number: a leading 4-digit year (2000..now),
// else 2000 + the first 2 digits. ok is false when neither is plausible.
func EntryYear(matric string) (year int, ok bool) {
	digits := nonDigitsRx.ReplaceAllString(strings.TrimSpace(matric), "")
	now := nowFunc().UTC().Year()
	if len(digits) >= 4 {
		if y, err := strconv.Atoi(digits[:4]); err == nil && y >= 2000 && y <= now {
			return y, true
		}
	}
	if len(digits) >= 2 {
		if y, err := strconv.Atoi(digits[:2]); err == nil && 2000+y <= now {
			return 2000 + y, true
		}
	}
	return 0, false
}

// LevelForSession infers a student's level in a session ("2024/2025") from the matric number,
// clamped to 100..500. Unknown entry years count as first year.
func LevelForSession(matric, sessionName string) int {
	start, err := strconv.Atoi(strings.TrimSpace(strings.SplitN(sessionName, "/", 2)[0]))
	if err != nil {
		return FallbackLevel
	}
	entry, ok := EntryYear(matric)
	if !ok {
		entry = start
	}
	level := 100 + (start-entry)*100
	if level < 100 {
		return 100
	}
	if level > 500 {
		return 500
	}
	return level
}

// GPA is Σ(points × units) / Σ units, rounded to 2 decimals. It is 0 without units.
func GPA(results []Result) (gpa float64, units int) {
	var points float64
	for _, r := range results {
		points += r.GradePoint * float64(r.CourseUnit)
		units += r.CourseUnit
	}
	if units == 0 {
		return 0, 0
	}
	return round2(points / float64(units)), units
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
