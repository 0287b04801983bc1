package shell

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anakievah/pdb/internal/engine"
	"github.com/anakievah/pdb/internal/table"
)

// Storage persists the registry and row documents.
type Storage interface {
	engine.RowLoader
	LoadRegistry() (table.Registry, error)
	SaveRegistry(reg table.Registry) error
	SaveRows(name string, rows []table.Record) error
	DeleteRows(name string) error
}

// Confirmer asks before a destructive operation is persisted.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Result is the outcome of one dispatched command.
type Result struct {
	Op        Op                `json:"op"`
	Table     string            `json:"table,omitempty"`
	Tables    []string          `json:"tables,omitempty"`
	Schema    table.Schema      `json:"columns,omitempty"`
	Record    table.Record      `json:"record,omitempty"`
	Rows      []table.Record    `json:"rows,omitempty"`
	Count     int               `json:"count"`
	Info      *engine.TableInfo `json:"info,omitempty"`
	Cancelled bool              `json:"cancelled,omitempty"`
}

// Dispatcher runs parsed commands: it loads the registry, calls the engine,
// persists whatever the engine returned and invalidates cached reads of the
// changed table. Nothing is written when an operation fails.
type Dispatcher struct {
	Storage Storage
	Engine  *engine.Engine
	Confirm Confirmer // nil approves every destructive operation
	Logger  *slog.Logger
	Timing  bool // log durations at info instead of debug
}

// NewDispatcher creates a dispatcher with its own engine and query cache.
func NewDispatcher(st Storage, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		Storage: st,
		Engine:  engine.New(st, nil, logger),
		Logger:  logger,
	}
}

// Execute runs cmd. Help and exit are front-end concerns and are returned
// unchanged.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Op == OpHelp || cmd.Op == OpExit {
		return &Result{Op: cmd.Op}, nil
	}

	start := time.Now()
	res, err := d.execute(cmd)

	level := slog.LevelDebug
	if d.Timing {
		level = slog.LevelInfo
	}
	attrs := []any{"op", string(cmd.Op), "duration", time.Since(start)}
	if cmd.Table != "" {
		attrs = append(attrs, "table", cmd.Table)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	d.Logger.Log(ctx, level, "command finished", attrs...)

	return res, err
}

func (d *Dispatcher) execute(cmd Command) (*Result, error) {
	reg, err := d.Storage.LoadRegistry()
	if err != nil {
		return nil, err
	}

	res := &Result{Op: cmd.Op, Table: cmd.Table}

	switch cmd.Op {
	case OpCreateTable:
		updated, schema, err := d.Engine.CreateTable(reg, cmd.Table, cmd.Columns)
		if err != nil {
			return nil, err
		}
		if err := d.Storage.SaveRegistry(updated); err != nil {
			return nil, err
		}
		res.Schema = schema

	case OpListTables:
		res.Tables = d.Engine.ListTables(reg)

	case OpDropTable:
		updated, err := d.Engine.DropTable(reg, cmd.Table)
		if err != nil {
			return nil, err
		}
		ok, err := d.confirm(fmt.Sprintf("Drop table %q and all its rows?", cmd.Table))
		if err != nil || !ok {
			return d.cancelled(res, err)
		}
		if err := d.Storage.SaveRegistry(updated); err != nil {
			return nil, err
		}
		if err := d.Storage.DeleteRows(cmd.Table); err != nil {
			return nil, err
		}
		d.Engine.Invalidate(cmd.Table)

	case OpInsert:
		out, err := d.Engine.Insert(reg, cmd.Table, cmd.Values)
		if err != nil {
			return nil, err
		}
		if err := d.Storage.SaveRows(cmd.Table, out.Rows); err != nil {
			return nil, err
		}
		d.Engine.Invalidate(cmd.Table)
		res.Record = out.Record
		res.Count = 1

	case OpSelect:
		rows, err := d.Engine.Select(reg, cmd.Table, cmd.Where)
		if err != nil {
			return nil, err
		}
		res.Schema = reg[cmd.Table]
		res.Rows = rows
		res.Count = len(rows)

	case OpUpdate:
		out, err := d.Engine.Update(reg, cmd.Table, cmd.Set, cmd.Where)
		if err != nil {
			return nil, err
		}
		if out.Count > 0 {
			if err := d.Storage.SaveRows(cmd.Table, out.Rows); err != nil {
				return nil, err
			}
			d.Engine.Invalidate(cmd.Table)
		}
		res.Count = out.Count

	case OpDelete:
		out, err := d.Engine.Delete(reg, cmd.Table, cmd.Where)
		if err != nil {
			return nil, err
		}
		if out.Count > 0 {
			ok, err := d.confirm(fmt.Sprintf("Delete %s from %q?", plural(out.Count, "row"), cmd.Table))
			if err != nil || !ok {
				return d.cancelled(res, err)
			}
			if err := d.Storage.SaveRows(cmd.Table, out.Rows); err != nil {
				return nil, err
			}
			d.Engine.Invalidate(cmd.Table)
		}
		res.Count = out.Count

	case OpInfo:
		info, err := d.Engine.Info(reg, cmd.Table)
		if err != nil {
			return nil, err
		}
		res.Info = info
		res.Count = info.Rows

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}

	return res, nil
}

func (d *Dispatcher) confirm(prompt string) (bool, error) {
	if d.Confirm == nil {
		return true, nil
	}
	return d.Confirm.Confirm(prompt)
}

func (d *Dispatcher) cancelled(res *Result, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	res.Cancelled = true
	return res, nil
}

// plural formats n with the noun, adding "s" unless n is 1.
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
