package entities

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	// ResponseAuthorAdmin is the only author that writes to a response log
	ResponseAuthorAdmin = "Admin"

	// ResponseTimestampLayout renders instants the way the legacy portal did
	// (en-US locale string), always in UTC.
	ResponseTimestampLayout = "1/2/2006, 3:04:05 PM"

	responseDelimiter = "\n\n"
	authorSeparator   = ": "
)

// ErrEmptyResponse is returned when a reply has no visible text
var ErrEmptyResponse = errors.New("response text is empty")

var (
	leadingStamp = regexp.MustCompile(`^\[(.*?)\]\s*`)
	blankLines   = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

// ResponseEntry is one administrator reply
type ResponseEntry struct {
	Author string
	Text   string
	At     time.Time

	// raw keeps a legacy chunk whose stamp could not be parsed so it
	// re-encodes byte for byte.
	raw string
}

// ResponseLog is an append-only, ordered list of replies stored as one string
type ResponseLog struct {
	entries []ResponseEntry
}

// Entries returns a copy of the log's entries, oldest first
func (l ResponseLog) Entries() []ResponseEntry {
	return append([]ResponseEntry(nil), l.entries...)
}

// Len returns the number of entries
func (l ResponseLog) Len() int {
	return len(l.entries)
}

// Append returns a new log with text added as the last entry.
// Blank text is rejected. The receiver is left untouched.
func (l ResponseLog) Append(text string, now time.Time) (ResponseLog, error) {
	normalized := normalizeResponseText(text)
	if normalized == "" {
		return l, ErrEmptyResponse
	}

	entries := make([]ResponseEntry, len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	entries = append(entries, ResponseEntry{
		Author: ResponseAuthorAdmin,
		Text:   normalized,
		At:     now.UTC().Truncate(time.Second),
	})
	return ResponseLog{entries: entries}, nil
}

// Serialize encodes the log as "[stamp] Author: text" chunks joined by a blank line
func (l ResponseLog) Serialize() string {
	chunks := make([]string, len(l.entries))
	for i, e := range l.entries {
		chunks[i] = e.encode()
	}
	return strings.Join(chunks, responseDelimiter)
}

// Messages returns each entry as displayed to users, without its timestamp
func (l ResponseLog) Messages() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		if e.raw != "" {
			out[i] = leadingStamp.ReplaceAllString(e.raw, "")
			continue
		}
		out[i] = e.Author + authorSeparator + e.Text
	}
	return out
}

// DeserializeResponseLog decodes a stored log. Empty input yields an empty log.
func DeserializeResponseLog(raw string) ResponseLog {
	if strings.TrimSpace(raw) == "" {
		return ResponseLog{}
	}

	chunks := strings.Split(raw, responseDelimiter)
	entries := make([]ResponseEntry, 0, len(chunks))
	for _, chunk := range chunks {
		entries = append(entries, decodeResponseEntry(chunk))
	}
	return ResponseLog{entries: entries}
}

func (e ResponseEntry) encode() string {
	if e.raw != "" {
		return e.raw
	}
	return "[" + e.At.UTC().Format(ResponseTimestampLayout) + "] " + e.Author + authorSeparator + e.Text
}

func decodeResponseEntry(chunk string) ResponseEntry {
	match := leadingStamp.FindStringSubmatch(chunk)
	if match == nil {
		return ResponseEntry{Text: chunk, raw: chunk}
	}

	at, err := time.ParseInLocation(ResponseTimestampLayout, match[1], time.UTC)
	message := chunk[len(match[0]):]
	author, text, found := strings.Cut(message, authorSeparator)
	if !found {
		author, text = "", message
	}

	entry := ResponseEntry{Author: author, Text: text}
	if err != nil || !found {
		entry.raw = chunk
		return entry
	}
	entry.At = at
	return entry
}

// normalizeResponseText trims the text and folds blank-line runs into a single
// line break, so the chunk delimiter can never appear inside an entry.
func normalizeResponseText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	return blankLines.ReplaceAllString(text, "\n")
}
