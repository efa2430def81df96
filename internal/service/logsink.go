package service

import (
	"sync"
	"time"
)

// LogLine is one diagnostic line with its position in the stream.
type LogLine struct {
	Seq  int64     `json:"seq"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// LogSink is the process-wide diagnostic buffer: the supervisor's relay
// appends encoder output, the API reads it back incrementally and fans
// it out to live subscribers. Bounded; old lines are trimmed.
type LogSink struct {
	mu       sync.RWMutex
	nextSeq  int64
	maxLines int
	lines    []LogLine
	subs     map[chan LogLine]struct{}
}

func NewLogSink(maxLines int) *LogSink {
	if maxLines <= 0 {
		maxLines = 2000
	}
	return &LogSink{
		maxLines: maxLines,
		lines:    make([]LogLine, 0, maxLines),
		subs:     make(map[chan LogLine]struct{}),
	}
}

// Append stores one line, assigns its sequence number and notifies
// subscribers. Slow subscribers miss lines rather than block the relay.
func (s *LogSink) Append(text string) LogLine {
	s.mu.Lock()
	s.nextSeq++
	line := LogLine{Seq: s.nextSeq, Text: text, At: time.Now().UTC()}
	s.lines = append(s.lines, line)
	if len(s.lines) > s.maxLines {
		trim := len(s.lines) - s.maxLines
		s.lines = append([]LogLine(nil), s.lines[trim:]...)
	}
	subs := make([]chan LogLine, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- line:
		default:
		}
	}
	return line
}

// Since returns buffered lines with sequence strictly greater than seq.
func (s *LogSink) Since(seq int64) []LogLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LogLine, 0, len(s.lines))
	for _, line := range s.lines {
		if line.Seq > seq {
			out = append(out, line)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest line, 0 when empty.
func (s *LogSink) LastSeq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSeq
}

func (s *LogSink) Subscribe() chan LogLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan LogLine, 64)
	s.subs[ch] = struct{}{}
	return ch
}

func (s *LogSink) Unsubscribe(ch chan LogLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}
