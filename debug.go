package arbor

import (
	"log/slog"
	"time"
)

// dispatchStats holds per-event metrics.
// Only populated when the Dispatcher is in debug mode.
type dispatchStats struct {
	event       EventType
	target      Node
	visited     int
	transitions int
	elapsed     time.Duration
}

// debugLog reports the stats of the last dispatch at debug level.
func (d *Dispatcher) debugLog() {
	if !d.debug {
		return
	}
	target := "<none>"
	if d.stats.target != nil {
		target = d.stats.target.base().Name
	}
	d.log().Debug("arbor: dispatch",
		slog.String("event", d.stats.event.String()),
		slog.String("target", target),
		slog.Int("visited", d.stats.visited),
		slog.Int("transitions", d.stats.transitions),
		slog.Duration("elapsed", d.stats.elapsed))
}

// debugMaxTreeDepth is the nesting depth above which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(l *Layer, n Node) {
	depth := 1
	for owner := l; owner != nil && owner.container != nil; owner = owner.container.base().owner {
		depth++
	}
	if depth > debugMaxTreeDepth {
		l.log().Warn("arbor: tree depth exceeds threshold",
			slog.Int("depth", depth),
			slog.Int("threshold", debugMaxTreeDepth),
			slog.String("node", n.base().Name))
	}
}

// debugMaxChildCount is the child count above which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(l *Layer) {
	if len(l.children) > debugMaxChildCount {
		name := "<root>"
		if l.container != nil {
			name = l.container.base().Name
		}
		l.log().Warn("arbor: layer has too many children",
			slog.String("node", name),
			slog.Int("children", len(l.children)),
			slog.Int("threshold", debugMaxChildCount))
	}
}
