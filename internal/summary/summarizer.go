package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/store"
)

// Summarizer renders natural-language activity reports over the entry/exit
// log. It is pure reporting: it reads the store and keeps no state of its
// own.
type Summarizer struct {
	store *store.Store
	now   func() time.Time
}

func New(s *store.Store) *Summarizer {
	return &Summarizer{store: s, now: time.Now}
}

// timeBuckets is the fixed classification and tie-break order for times of
// day.
var timeBuckets = []string{"morning", "afternoon", "evening", "night"}

// weekdays is the fixed tie-break order for most-frequent-weekday reporting.
var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func timeBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func periodPhrase(days int) string {
	switch days {
	case 1:
		return "today"
	case 7:
		return "this week"
	case 30:
		return "this month"
	default:
		return fmt.Sprintf("in the last %d days", days)
	}
}

// cutoff returns midnight of the day `days` before now, matching the
// date-granular filtering the reports use.
func (s *Summarizer) cutoff(days int) time.Time {
	t := s.now().AddDate(0, 0, -days)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func withinWindow(entries []domain.LogEntry, cutoff time.Time) []domain.LogEntry {
	var out []domain.LogEntry
	for _, entry := range entries {
		if !entry.Timestamp.Before(cutoff) {
			out = append(out, entry)
		}
	}
	return out
}

func splitByAction(entries []domain.LogEntry) (enters, leaves []domain.LogEntry) {
	for _, entry := range entries {
		if entry.Action == domain.ActionEnter {
			enters = append(enters, entry)
		} else {
			leaves = append(leaves, entry)
		}
	}
	return enters, leaves
}

func countLateNight(entries []domain.LogEntry) int {
	var n int
	for _, entry := range entries {
		if entry.LateNight() {
			n++
		}
	}
	return n
}

// mostCommon picks the highest-count key, breaking ties by the fixed order
// given. Only a strictly greater count displaces an earlier key.
func mostCommon(counts map[string]int, order []string) (string, bool) {
	best := ""
	bestCount := 0
	for _, key := range order {
		if counts[key] > bestCount {
			best = key
			bestCount = counts[key]
		}
	}
	return best, bestCount > 0
}

func bucketCounts(entries []domain.LogEntry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[timeBucket(entry.Timestamp.Hour())]++
	}
	return counts
}

func weekdayCounts(entries []domain.LogEntry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Timestamp.Weekday().String()]++
	}
	return counts
}

// Identity renders the activity report for one resident. An unknown ID is a
// lookup failure, not an empty report.
func (s *Summarizer) Identity(id int64, days int) (string, error) {
	identity, ok := s.store.Get(id)
	if !ok {
		return "", domain.ErrIdentityNotFound
	}

	period := periodPhrase(days)
	recent := withinWindow(s.store.LogsFor(id, 0), s.cutoff(days))
	if len(recent) == 0 {
		return fmt.Sprintf("%s has no activity recorded %s.", identity.Name, period), nil
	}

	enters, leaves := splitByAction(recent)

	var sentences []string
	sentences = append(sentences, fmt.Sprintf(
		"%s from %s (Room %s) had %d entries and %d exits %s.",
		identity.Name, identity.Hostel, identity.Room, len(enters), len(leaves), period))

	if n := countLateNight(enters); n > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"%s entered the hostel %d times after 10 PM %s.", identity.Name, n, period))
	}
	if n := countLateNight(leaves); n > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"%s left the hostel %d times after 10 PM %s.", identity.Name, n, period))
	}

	if bucket, ok := mostCommon(bucketCounts(enters), timeBuckets); ok {
		sentences = append(sentences, fmt.Sprintf(
			"%s most frequently enters the hostel in the %s.", identity.Name, bucket))
	}
	if bucket, ok := mostCommon(bucketCounts(leaves), timeBuckets); ok {
		sentences = append(sentences, fmt.Sprintf(
			"%s most frequently leaves the hostel in the %s.", identity.Name, bucket))
	}
	if day, ok := mostCommon(weekdayCounts(enters), weekdays); ok {
		sentences = append(sentences, fmt.Sprintf(
			"%s enters the hostel most often on %ss.", identity.Name, day))
	}

	return strings.Join(sentences, " "), nil
}

// Group renders the aggregate report for one hostel, or for everyone when
// hostel is empty.
func (s *Summarizer) Group(hostel string, days int) (string, error) {
	identities := s.store.List()
	if hostel != "" {
		var filtered []domain.Identity
		for _, identity := range identities {
			if identity.Hostel == hostel {
				filtered = append(filtered, identity)
			}
		}
		if len(filtered) == 0 {
			return fmt.Sprintf("No residents found in hostel %s.", hostel), nil
		}
		identities = filtered
	} else if len(identities) == 0 {
		return "No residents registered.", nil
	}

	members := make(map[int64]bool, len(identities))
	for _, identity := range identities {
		members[identity.ID] = true
	}

	period := periodPhrase(days)
	var recent []domain.LogEntry
	for _, entry := range withinWindow(s.store.LogsAll(0), s.cutoff(days)) {
		if members[entry.IdentityID] {
			recent = append(recent, entry)
		}
	}
	if len(recent) == 0 {
		if hostel != "" {
			return fmt.Sprintf("No activity recorded for hostel %s %s.", hostel, period), nil
		}
		return fmt.Sprintf("No activity recorded %s.", period), nil
	}

	enters, leaves := splitByAction(recent)

	var sentences []string
	if hostel != "" {
		sentences = append(sentences, fmt.Sprintf(
			"Hostel %s had %d entries and %d exits %s.", hostel, len(enters), len(leaves), period))
	} else {
		sentences = append(sentences, fmt.Sprintf(
			"All hostels had %d entries and %d exits %s.", len(enters), len(leaves), period))
	}

	if n := countLateNight(enters); n > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"There were %d late-night entries (after 10 PM) %s.", n, period))
	}
	if n := countLateNight(leaves); n > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"There were %d late-night exits (after 10 PM) %s.", n, period))
	}

	if name, count, ok := mostActive(recent); ok {
		sentences = append(sentences, fmt.Sprintf(
			"%s was the most active resident with %d recorded activities.", name, count))
	}

	return strings.Join(sentences, " "), nil
}

// mostActive returns the resident with the most log entries in the window,
// ties broken by ascending identity ID.
func mostActive(entries []domain.LogEntry) (string, int, bool) {
	counts := make(map[int64]int)
	names := make(map[int64]string)
	for _, entry := range entries {
		counts[entry.IdentityID]++
		names[entry.IdentityID] = entry.Name
	}
	if len(counts) == 0 {
		return "", 0, false
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	best := ids[0]
	for _, id := range ids[1:] {
		if counts[id] > counts[best] {
			best = id
		}
	}
	return names[best], counts[best], true
}
