package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNetworkFormed BookmarkType = "network_formed"
	BookmarkCollapse      BookmarkType = "collapse"
	BookmarkAlignment     BookmarkType = "alignment"
	BookmarkStablePattern BookmarkType = "stable_pattern"
)

// Detection thresholds.
const (
	networkRatio    = 2.0  // structure vs rolling average
	minStructure    = 0.5  // structure below this is never a network
	collapseDrop    = 0.5  // fraction of peak mass lost
	alignmentJump   = 0.3  // heading order increase over previous window
	stableCV        = 0.05 // structure CV across stableWindows
	stableWindows   = 5
	minHistoryCheck = 3
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int          `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in trail pattern formation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentMassPeak     float64
	stableWindowsCount int
	networkActive      bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Network formed: structure > 2x rolling average
		if b := bd.checkNetworkFormed(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Collapse: total mass dropped >50% from recent peak
		if b := bd.checkCollapse(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Alignment: heading order jumped since last window
		if b := bd.checkAlignment(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	// Stable pattern looks at the window just added
	if b := bd.checkStablePattern(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if m := stats.TotalMass(); m > bd.recentMassPeak {
		bd.recentMassPeak = m
	}

	return bookmarks
}

// Reset clears history, e.g. after the engine is reinitialized.
func (bd *BookmarkDetector) Reset() {
	clear(bd.history)
	bd.historyIdx = 0
	bd.historyFull = false
	bd.recentMassPeak = 0
	bd.stableWindowsCount = 0
	bd.networkActive = false
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// ordered returns the history oldest first.
func (bd *BookmarkDetector) ordered() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkNetworkFormed(stats WindowStats) *Bookmark {
	history := bd.ordered()
	if len(history) < minHistoryCheck {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Structure
	}
	avg := total / float64(len(history))

	formed := avg > 0 && stats.Structure > avg*networkRatio && stats.Structure >= minStructure
	if !formed {
		bd.networkActive = false
		return nil
	}
	if bd.networkActive {
		return nil
	}
	bd.networkActive = true
	return &Bookmark{
		Type:        BookmarkNetworkFormed,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Structure %.2f is %.1fx average (%.2f)", stats.Structure, stats.Structure/avg, avg),
	}
}

func (bd *BookmarkDetector) checkCollapse(stats WindowStats) *Bookmark {
	if bd.recentMassPeak <= 0 {
		return nil
	}

	mass := stats.TotalMass()
	drop := 1 - mass/bd.recentMassPeak
	if drop <= collapseDrop {
		return nil
	}

	// Reset peak after collapse
	oldPeak := bd.recentMassPeak
	bd.recentMassPeak = mass

	return &Bookmark{
		Type:        BookmarkCollapse,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Trail mass fell %.0f%% from peak %.0f to %.0f", drop*100, oldPeak, mass),
	}
}

func (bd *BookmarkDetector) checkAlignment(stats WindowStats) *Bookmark {
	history := bd.ordered()
	prev := history[len(history)-1]
	jump := stats.HeadingOrder - prev.HeadingOrder
	if jump < alignmentJump {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkAlignment,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Heading order rose from %.2f to %.2f", prev.HeadingOrder, stats.HeadingOrder),
	}
}

func (bd *BookmarkDetector) checkStablePattern(stats WindowStats) *Bookmark {
	if stats.Structure < minStructure {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.ordered()
	if len(history) < stableWindows {
		return nil
	}

	recent := make([]float64, stableWindows)
	for i, h := range history[len(history)-stableWindows:] {
		recent[i] = h.Structure
	}
	mean, std := stat.MeanStdDev(recent, nil)
	if mean > 0 && std/mean < stableCV && !math.IsNaN(std) {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 1 { // trigger once per stable run
		return &Bookmark{
			Type:        BookmarkStablePattern,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Structure held at %.2f over %d windows", mean, stableWindows),
		}
	}

	return nil
}
