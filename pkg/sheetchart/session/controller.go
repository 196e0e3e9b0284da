// Package session holds the state of one interactive upload: the parsed
// table, the current axis selection and the series derived from them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tiendc/go-deepcopy"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/codec"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/parser"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/series"
)

// State is the lifecycle state of a Controller.
type State int

const (
	// StateEmpty means no table has been loaded yet.
	StateEmpty State = iota
	// StateParsed means a table is loaded and a selection is active.
	StateParsed
)

func (s State) String() string {
	if s == StateParsed {
		return "parsed"
	}
	return "empty"
}

// SourceFile is the file the current table was loaded from.
type SourceFile struct {
	Name    string `json:"name"`
	Payload string `json:"-"`
}

// Options configures a Controller.
type Options struct {
	Parse  sheetchart.Options
	Logger sheetchart.Logger
}

// Controller coordinates decode, parse, history and series building for a
// single session. Loads may overlap; the most recently started one wins.
type Controller struct {
	history *history.Store
	opts    Options

	gen uint64 // atomic, bumped when a load starts

	mu        sync.RWMutex
	state     State
	table     models.Table
	selection models.AxisSelection
	source    SourceFile
	result    series.Result
}

// New creates an empty Controller. store may be nil, in which case fresh
// uploads are not recorded.
func New(store *history.Store, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = sheetchart.NopLogger{}
	}
	return &Controller{history: store, opts: opts}
}

// SubmitNewFile parses a freshly uploaded file. On success the table replaces
// the current one, the default selection is applied and the upload is
// appended to history. On failure the previous state is kept.
func (c *Controller) SubmitNewFile(ctx context.Context, name string, raw []byte) (series.Result, error) {
	gen := atomic.AddUint64(&c.gen, 1)
	payload := codec.Encode(raw)

	table, err := parser.ParseFile(name, raw, c.opts.Parse)
	if err != nil {
		return series.Result{}, wrapStage("parse", name, err)
	}
	return c.commit(ctx, gen, table, SourceFile{Name: name, Payload: payload}, true)
}

// Replay reloads a history entry. History is not modified.
func (c *Controller) Replay(ctx context.Context, entry models.HistoryEntry) (series.Result, error) {
	gen := atomic.AddUint64(&c.gen, 1)

	table, err := history.Reconstitute(entry, c.opts.Parse)
	if err != nil {
		return series.Result{}, err
	}
	return c.commit(ctx, gen, table, SourceFile{Name: entry.Name, Payload: entry.Payload}, false)
}

// SubmitAsync runs SubmitNewFile in a goroutine. The channel receives the
// outcome once and is then closed.
func (c *Controller) SubmitAsync(ctx context.Context, name string, raw []byte) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := c.SubmitNewFile(ctx, name, raw)
		done <- err
	}()
	return done
}

// ReplayAsync runs Replay in a goroutine.
func (c *Controller) ReplayAsync(ctx context.Context, entry models.HistoryEntry) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := c.Replay(ctx, entry)
		done <- err
	}()
	return done
}

func (c *Controller) commit(ctx context.Context, gen uint64, table models.Table, src SourceFile, record bool) (series.Result, error) {
	if err := ctx.Err(); err != nil {
		return series.Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if atomic.LoadUint64(&c.gen) != gen {
		return series.Result{}, sheetchart.ErrSuperseded
	}

	if record && c.history != nil {
		if _, err := c.history.Append(src.Name, src.Payload); err != nil {
			c.opts.Logger.Printf("[WARN] session: upload %q not recorded: %v", src.Name, err)
		}
	}

	sel := models.DefaultSelection(table)
	c.state = StateParsed
	c.table = table
	c.selection = sel
	c.source = src
	c.result = series.Build(table, sel)
	c.logMissing()
	return c.result, nil
}

// ChangeSelection merges change into the current selection and rebuilds the
// series. The table and history are never touched. An unknown chart kind is
// rejected with ErrSelection and leaves the selection as it was.
func (c *Controller) ChangeSelection(change models.SelectionChange) (series.Result, error) {
	if change.ChartKind != nil {
		kind, err := models.ParseChartKind(string(*change.ChartKind))
		if err != nil {
			return series.Result{}, fmt.Errorf("%w: %v", sheetchart.ErrSelection, err)
		}
		change.ChartKind = &kind
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = change.Apply(c.selection)
	c.result = series.Build(c.table, c.selection)
	c.logMissing()
	return c.result, nil
}

// logMissing reports stale column names. Callers must hold c.mu.
func (c *Controller) logMissing() {
	if c.state == StateParsed && len(c.result.Missing) > 0 {
		c.opts.Logger.Printf("[DEBUG] session: no data for selection, unknown columns %v", c.result.Missing)
	}
}

// Result returns the series for the current selection.
func (c *Controller) Result() series.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// Table returns a deep copy of the current table.
func (c *Controller) Table() models.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out models.Table
	if err := deepcopy.Copy(&out, &c.table); err != nil {
		c.opts.Logger.Printf("[ERROR] session: copy table: %v", err)
		return models.Table{}
	}
	return out
}

// Selection returns the current axis selection.
func (c *Controller) Selection() models.AxisSelection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection
}

// SourceFile returns the file the current table came from.
func (c *Controller) SourceFile() (SourceFile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source, c.state == StateParsed
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsSuperseded reports whether err came from a load that lost to a newer one.
func IsSuperseded(err error) bool {
	return errors.Is(err, sheetchart.ErrSuperseded)
}

func wrapStage(stage, name string, err error) error {
	var pe *sheetchart.PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return sheetchart.NewPipelineError(stage, name, err)
}
