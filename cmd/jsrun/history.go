package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var historyBucket = []byte("history")

// history persists REPL inputs across sessions.
type history struct {
	db *bbolt.DB
}

// historyDir returns $JSRUN_HOME, or ~/.jsrun.
func historyDir() (string, error) {
	if dir := os.Getenv("JSRUN_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".jsrun"), nil
}

func openHistory(dir string) (*history, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, "history.db"), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init history: %w", err)
	}
	return &history{db: db}, nil
}

// Append stores src after every earlier entry.
func (h *history) Append(src string) error {
	return h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(historyBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return b.Put(key[:], []byte(src))
	})
}

// Recent returns up to n entries, oldest first.
func (h *history) Recent(n int) ([]string, error) {
	var out []string
	err := h.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()
		for k, v := c.Last(); k != nil && len(out) < n; k, v = c.Prev() {
			out = append(out, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (h *history) Close() error {
	return h.db.Close()
}
