package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// backend is one complete configuration of the logging subsystem. It is
// immutable once installed, except for the root threshold.
type backend struct {
	handler slog.Handler // sink chain, accepts every level
	root    *slog.LevelVar
	levels  map[string]slog.Level // per-category thresholds
}

// levelFor resolves the threshold of a category by longest dotted prefix.
func (b *backend) levelFor(name string) slog.Level {
	for name != "" {
		if level, ok := b.levels[name]; ok {
			return level
		}
		idx := strings.LastIndexByte(name, '.')
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	return b.root.Level()
}

// categoryHandler forwards to whichever backend is current, replaying the
// attrs and groups added through the logger onto it.
type categoryHandler struct {
	name  string
	ops   []func(slog.Handler) slog.Handler
	cache atomic.Pointer[resolvedHandler]
}

type resolvedHandler struct {
	owner   *backend
	handler slog.Handler
}

func newCategoryHandler(name string) *categoryHandler {
	h := &categoryHandler{name: name}
	if name != "" {
		attrs := []slog.Attr{loggerAttr(name)}
		h.ops = append(h.ops, func(next slog.Handler) slog.Handler {
			return next.WithAttrs(attrs)
		})
	}
	return h
}

func (h *categoryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	b := current.Load()
	return level >= b.levelFor(h.name) && b.handler.Enabled(ctx, level)
}

func (h *categoryHandler) Handle(ctx context.Context, record slog.Record) error {
	b := current.Load()
	if record.Level < b.levelFor(h.name) {
		return nil
	}
	return h.resolve(b).Handle(ctx, record)
}

func (h *categoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithAttrs(attrs)
	})
}

func (h *categoryHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithGroup(name)
	})
}

func (h *categoryHandler) with(op func(slog.Handler) slog.Handler) *categoryHandler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(h.ops)+1)
	ops = append(ops, h.ops...)
	ops = append(ops, op)
	return &categoryHandler{name: h.name, ops: ops}
}

// resolve builds the handler chain for b, reusing the last one while the
// backend is unchanged.
func (h *categoryHandler) resolve(b *backend) slog.Handler {
	if r := h.cache.Load(); r != nil && r.owner == b {
		return r.handler
	}
	next := b.handler
	for _, op := range h.ops {
		next = op(next)
	}
	h.cache.Store(&resolvedHandler{owner: b, handler: next})
	return next
}
