// Package testutil provides a stub database for postgres item store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// StubConn records statements issued by the postgres store and keeps the
// items table in memory.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	Queries    []string
	Items      map[string]string
	FailPing   bool
	FailExec   bool
	FailQuery  bool
	FailBegin  bool
	FailCommit bool
	Commits    int
	Rollbacks  int
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Items: make(map[string]string)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return &stubTx{conn: c}, nil
}

func normalize(query string) string {
	return strings.ToUpper(strings.Join(strings.Fields(query), " "))
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	q := normalize(query)
	switch {
	case strings.HasPrefix(q, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(q, "INSERT INTO ITEMS"):
		if len(args) != 2 {
			return nil, fmt.Errorf("insert expects 2 args, got %d", len(args))
		}
		id, _ := args[0].Value.(string)
		payload, _ := args[1].Value.(string)
		c.Items[id] = payload
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(q, "DELETE FROM ITEMS"):
		if len(args) != 1 {
			return nil, fmt.Errorf("delete expects 1 arg, got %d", len(args))
		}
		id, _ := args[0].Value.(string)
		if _, ok := c.Items[id]; !ok {
			return driver.RowsAffected(0), nil
		}
		delete(c.Items, id)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unsupported exec: %s", query)
}

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, query)
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	q := normalize(query)
	if !strings.HasPrefix(q, "SELECT PAYLOAD FROM ITEMS") {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	rows := &stubRows{cols: []string{"payload"}}
	if strings.Contains(q, "WHERE PRODUCTID") {
		if len(args) != 1 {
			return nil, fmt.Errorf("select expects 1 arg, got %d", len(args))
		}
		id, _ := args[0].Value.(string)
		if payload, ok := c.Items[id]; ok {
			rows.rows = append(rows.rows, []driver.Value{payload})
		}
		return rows, nil
	}
	keys := make([]string, 0, len(c.Items))
	for k := range c.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows.rows = append(rows.rows, []driver.Value{c.Items[k]})
	}
	return rows, nil
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	t.conn.Commits++
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.Rollbacks++
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
